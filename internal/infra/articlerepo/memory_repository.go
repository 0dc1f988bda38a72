package articlerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
)

// MemoryRepository keeps archived digests in memory. Useful for tests and local dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	articles []digest.Article
}

// NewMemoryRepository constructs an empty archive.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, article digest.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	article.Tags = append([]string(nil), article.Tags...)
	r.articles = append(r.articles, article)
	return nil
}

func (r *MemoryRepository) ListRecent(_ context.Context, limit int) ([]digest.Article, error) {
	r.mu.RLock()
	out := make([]digest.Article, len(r.articles))
	copy(out, r.articles)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ digest.Archive = (*MemoryRepository)(nil)
