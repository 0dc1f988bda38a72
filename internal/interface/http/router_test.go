package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/infra/config"
	apperrors "github.com/yanqian/gopher-digest/pkg/errors"
	"github.com/yanqian/gopher-digest/pkg/logger"
)

func TestRouter_SummarizeSuccess(t *testing.T) {
	t.Parallel()

	want := digest.Response{Title: "標題", Summary: "摘要", Tags: []string{"Go", "HTTP", "Gin"}}
	svc := &stubDigest{
		digestFn: func(_ context.Context, req digest.Request) (digest.Response, error) {
			require.Equal(t, "https://medium.com/p/abc", req.URL)
			return want, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/summaries", `{"url":"https://medium.com/p/abc"}`, newRouterUnderTest(t, svc, config.RateLimitConfig{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get(requestIDHeader))

	var got digest.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, want, got)
}

func TestRouter_SummarizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "malformed body",
			body:       `{"url":123}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:        "empty url",
			body:        `{"url":""}`,
			err:         extraction.ValidateURL(""),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "content_unreachable",
			wantMessage: "content unreachable or blocked",
		},
		{
			name:        "relative url",
			body:        `{"url":"medium.com/p/abc"}`,
			err:         extraction.ValidateURL("medium.com/p/abc"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "content_unreachable",
			wantMessage: "content unreachable or blocked",
		},
		{
			name:        "no content",
			body:        `{"url":"https://medium.com/p/blocked"}`,
			err:         apperrors.Wrap(apperrors.CodeNoContent, "no usable content at https://medium.com/p/blocked", nil),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "content_unreachable",
			wantMessage: "content unreachable or blocked",
		},
		{
			name:        "schema violation",
			body:        `{"url":"https://medium.com/p/abc"}`,
			err:         apperrors.Wrap(apperrors.CodeSchemaViolation, "model reply does not match the summary schema", errors.New(`field "tags" is missing`)),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "summarization_failed",
			wantMessage: `summarization failed: model reply does not match the summary schema: field "tags" is missing`,
		},
		{
			name:        "model unavailable",
			body:        `{"url":"https://medium.com/p/abc"}`,
			err:         apperrors.Wrap(apperrors.CodeModelUnavailable, "language model call failed", errors.New("connection refused")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "summarization_failed",
			wantMessage: "summarization failed: language model call failed: connection refused",
		},
		{
			name:        "unexpected",
			body:        `{"url":"https://medium.com/p/abc"}`,
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal_error",
			wantMessage: "something went wrong",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubDigest{
				digestFn: func(context.Context, digest.Request) (digest.Response, error) {
					return digest.Response{}, tt.err
				},
			}

			recorder := performRequest(http.MethodPost, "/api/v1/summaries", tt.body, newRouterUnderTest(t, svc, config.RateLimitConfig{}))
			require.Equal(t, tt.wantStatus, recorder.Code)

			errBody := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, tt.wantCode, errBody["error"]["code"])
			if tt.wantMessage != "" {
				require.Equal(t, tt.wantMessage, errBody["error"]["message"])
			} else {
				require.NotEmpty(t, errBody["error"]["message"])
			}
		})
	}
}

func TestRouter_ListArticles(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	var gotLimit int
	svc := &stubDigest{
		recentFn: func(_ context.Context, limit int) ([]digest.Article, error) {
			gotLimit = limit
			return []digest.Article{{ID: "a1", URL: "https://medium.com/p/abc", Title: "T", Tags: []string{"Go"}, CreatedAt: created}}, nil
		},
	}
	server := newRouterUnderTest(t, svc, config.RateLimitConfig{})

	recorder := performRequest(http.MethodGet, "/api/v1/articles?limit=5", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 5, gotLimit)

	var body struct {
		Articles []digest.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Articles, 1)
	require.Equal(t, "a1", body.Articles[0].ID)
	require.True(t, created.Equal(body.Articles[0].CreatedAt))

	recorder = performRequest(http.MethodGet, "/api/v1/articles?limit=ten", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	svc := &stubDigest{}
	server := newRouterUnderTest(t, svc, config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2})

	for i := 0; i < 2; i++ {
		recorder := performRequest(http.MethodPost, "/api/v1/summaries", `{"url":"https://medium.com/p/abc"}`, server)
		require.Equal(t, http.StatusOK, recorder.Code)
	}
	recorder := performRequest(http.MethodPost, "/api/v1/summaries", `{"url":"https://medium.com/p/abc"}`, server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_HealthMetricsAndCORS(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{HTTP: config.HTTPConfig{Address: ":0", AllowedOrigins: []string{"https://digest.example.com"}}}
	server := NewRouter(cfg, NewHandler(&stubDigest{}, logger.Discard()))

	recorder := performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())

	recorder = performRequest(http.MethodGet, "/metrics", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/summaries", nil)
	req.Header.Set("Origin", "https://digest.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://digest.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/summaries", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_PropagatesRequestID(t *testing.T) {
	t.Parallel()

	server := newRouterUnderTest(t, &stubDigest{}, config.RateLimitConfig{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestOriginPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "no list allows any", allowed: nil, origin: "https://a.com", want: "*"},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://a.com", want: "*"},
		{name: "listed origin echoed", allowed: []string{"https://a.com", "https://b.com"}, origin: "https://b.com", want: "https://b.com"},
		{name: "case insensitive", allowed: []string{"https://A.com"}, origin: "https://a.com", want: "https://a.com"},
		{name: "unlisted origin refused", allowed: []string{"https://a.com"}, origin: "https://evil.com", want: ""},
		{name: "blank entries ignored", allowed: []string{" ", "https://a.com"}, origin: "", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, newOriginPolicy(tt.allowed).resolve(tt.origin))
		})
	}
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc digest.Service, limit config.RateLimitConfig) *http.Server {
	t.Helper()
	handler := NewHandler(svc, logger.Discard())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			RateLimit:    limit,
		},
	}
	return NewRouter(cfg, handler)
}

type stubDigest struct {
	digestFn func(ctx context.Context, req digest.Request) (digest.Response, error)
	recentFn func(ctx context.Context, limit int) ([]digest.Article, error)
}

func (s *stubDigest) Digest(ctx context.Context, req digest.Request) (digest.Response, error) {
	if s.digestFn != nil {
		return s.digestFn(ctx, req)
	}
	return digest.Response{}, nil
}

func (s *stubDigest) Recent(ctx context.Context, limit int) ([]digest.Article, error) {
	if s.recentFn != nil {
		return s.recentFn(ctx, limit)
	}
	return []digest.Article{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
