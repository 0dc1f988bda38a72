package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
)

// Handler wires the HTTP transport to the digest service.
type Handler struct {
	digestSvc digest.Service
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(digestSvc digest.Service, logger *slog.Logger) *Handler {
	return &Handler{
		digestSvc: digestSvc,
		logger:    logger.With("component", "http.handler"),
	}
}

// Summarize fetches, extracts and summarizes the article at the posted URL.
func (h *Handler) Summarize(c *gin.Context) {
	var req digest.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.digestSvc.Digest(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListArticles returns recently archived digests, newest first.
func (h *Handler) ListArticles(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}

	articles, err := h.digestSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
