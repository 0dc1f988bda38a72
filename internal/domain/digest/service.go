package digest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/domain/summarizer"
	apperrors "github.com/yanqian/gopher-digest/pkg/errors"
	"github.com/yanqian/gopher-digest/pkg/metrics"
	"github.com/yanqian/gopher-digest/pkg/util"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service runs the fetch, extract and summarize pipeline for one URL.
type Service interface {
	Digest(ctx context.Context, req Request) (Response, error)
	Recent(ctx context.Context, limit int) ([]Article, error)
}

type service struct {
	cfg        Config
	extractor  Extractor
	summarizer Summarizer
	cache      Cache
	archive    Archive
	snapshots  SnapshotStore
	logger     *slog.Logger
	group      singleflight.Group
}

// NewService wires the pipeline. cache, archive and snapshots may be nil.
func NewService(cfg Config, extractor Extractor, summarizer Summarizer, cache Cache, archive Archive, snapshots SnapshotStore, logger *slog.Logger) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaultListLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = maxListLimit
	}
	return &service{
		cfg:        cfg,
		extractor:  extractor,
		summarizer: summarizer,
		cache:      cache,
		archive:    archive,
		snapshots:  snapshots,
		logger:     logger.With("component", "digest.service"),
	}
}

func (s *service) Digest(ctx context.Context, req Request) (resp Response, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = apperrors.CodeOf(err)
			if result == "" {
				result = "internal"
			}
		}
		metrics.DigestDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	url := strings.TrimSpace(req.URL)
	if err := extraction.ValidateURL(url); err != nil {
		return Response{}, err
	}

	if cached, ok := s.lookup(ctx, url); ok {
		return cached, nil
	}

	// Concurrent requests for the same URL share one run, detached from caller
	// cancellation and bounded by the per-call fetch and model timeouts. Each caller
	// stops waiting when its own context ends.
	ch := s.group.DoChan(url, func() (any, error) {
		return s.run(context.WithoutCancel(ctx), url)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return Response{}, res.Err
	}
	if res.Shared {
		s.logger.Debug("digest shared with in-flight request", "url", url)
	}
	out := res.Val.(Response)
	out.Tags = append([]string(nil), out.Tags...)
	return out, nil
}

func (s *service) run(ctx context.Context, url string) (Response, error) {
	content, err := s.extractor.Extract(ctx, extraction.Request{URL: url})
	if err != nil {
		return Response{}, err
	}
	s.logger.Info("article extracted", "url", url, "source", content.SourceKind, "length", content.Length)

	articleID := uuid.NewString()
	snapshotKey := s.snapshot(ctx, articleID, content.Text)

	result, err := s.summarizer.Summarize(ctx, summarizer.Request{Text: content.Text, Title: content.Title})
	if err != nil {
		return Response{}, err
	}
	resp := Response{
		Title:   result.Summary.Title,
		Summary: result.Summary.Summary,
		Tags:    result.Summary.Tags,
	}
	s.logger.Info("article summarized", "url", url,
		"prompt_tokens", result.Usage.PromptTokens,
		"total_tokens", result.Usage.TotalTokens,
		"estimated", result.Usage.Estimated,
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, url, resp, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache store failed", "url", url, "error", err)
		}
	}
	if s.archive != nil {
		article := Article{
			ID:            articleID,
			URL:           url,
			Title:         resp.Title,
			Summary:       resp.Summary,
			Tags:          resp.Tags,
			SourceKind:    string(content.SourceKind),
			ContentLength: content.Length,
			SnapshotKey:   snapshotKey,
			CreatedAt:     util.NowUTC(),
		}
		if err := s.archive.Save(ctx, article); err != nil {
			s.logger.Warn("archive save failed", "url", url, "error", err)
		}
	}
	return resp, nil
}

func (s *service) lookup(ctx context.Context, url string) (Response, bool) {
	if s.cache == nil {
		return Response{}, false
	}
	cached, ok, err := s.cache.Get(ctx, url)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("cache lookup failed", "url", url, "error", err)
		return Response{}, false
	case !ok:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return Response{}, false
	default:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		s.logger.Debug("digest served from cache", "url", url)
		return cached, true
	}
}

func (s *service) snapshot(ctx context.Context, articleID, text string) string {
	if s.snapshots == nil {
		return ""
	}
	key, err := s.snapshots.Put(ctx, articleID, text)
	if err != nil {
		s.logger.Warn("snapshot upload failed", "article_id", articleID, "error", err)
		return ""
	}
	return key
}

func (s *service) Recent(ctx context.Context, limit int) ([]Article, error) {
	if limit < 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "limit cannot be negative", nil)
	}
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if s.archive == nil {
		return []Article{}, nil
	}
	articles, err := s.archive.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "list articles failed", err)
	}
	if articles == nil {
		articles = []Article{}
	}
	return articles, nil
}
