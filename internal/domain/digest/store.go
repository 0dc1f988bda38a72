package digest

import (
	"context"
	"time"

	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/domain/summarizer"
)

// Extractor produces article text for a URL.
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) (extraction.ExtractedContent, error)
}

// Summarizer turns article text into a validated summary.
type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (summarizer.Result, error)
}

// Cache keeps finished responses keyed by article URL.
type Cache interface {
	Get(ctx context.Context, url string) (Response, bool, error)
	Set(ctx context.Context, url string, resp Response, ttl time.Duration) error
}

// Archive records finished digests.
type Archive interface {
	Save(ctx context.Context, article Article) error
	ListRecent(ctx context.Context, limit int) ([]Article, error)
}

// SnapshotStore keeps a copy of the extracted text and returns its key.
type SnapshotStore interface {
	Put(ctx context.Context, articleID, text string) (string, error)
}
