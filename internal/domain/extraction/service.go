package extraction

import (
	"context"
	"log/slog"

	apperrors "github.com/yanqian/gopher-digest/pkg/errors"
	"github.com/yanqian/gopher-digest/pkg/metrics"
)

// Service turns a URL into article text.
type Service interface {
	Extract(ctx context.Context, req Request) (ExtractedContent, error)
}

type service struct {
	tiers  []Tier
	logger *slog.Logger
}

// NewService wires the structured tier ahead of the markup tier.
func NewService(cfg Config, fetcher Fetcher, logger *slog.Logger) Service {
	return NewServiceWithTiers(logger, NewStructuredTier(cfg, fetcher), NewMarkupTier(cfg, fetcher))
}

// NewServiceWithTiers runs the given tiers strictly in order.
func NewServiceWithTiers(logger *slog.Logger, tiers ...Tier) Service {
	return &service{tiers: tiers, logger: logger.With("component", "extraction.service")}
}

func (s *service) Extract(ctx context.Context, req Request) (ExtractedContent, error) {
	if err := req.Validate(); err != nil {
		return ExtractedContent{}, err
	}

	for _, tier := range s.tiers {
		outcome := tier.Attempt(ctx, req.URL)
		metrics.ExtractionAttempts.WithLabelValues(tier.Name(), outcome.label()).Inc()

		switch outcome.Failure {
		case FailureNone:
			if outcome.Content == nil {
				continue
			}
			s.logger.Info("extraction succeeded", "url", req.URL, "tier", tier.Name(), "length", outcome.Content.Length)
			return *outcome.Content, nil
		case FailureFetch:
			s.logger.Warn("extraction tier fetch failed", "url", req.URL, "tier", tier.Name(), "error", outcome.Err)
		case FailureMalformed, FailureParse:
			s.logger.Debug("extraction tier could not parse response", "url", req.URL, "tier", tier.Name(), "reason", outcome.Failure, "error", outcome.Err)
		default:
			s.logger.Debug("extraction tier produced no content", "url", req.URL, "tier", tier.Name(), "reason", outcome.Failure, "error", outcome.Err)
		}
	}

	s.logger.Warn("no tier produced usable content", "url", req.URL)
	return ExtractedContent{}, apperrors.Wrap(apperrors.CodeNoContent, "no usable content at "+req.URL, nil)
}
