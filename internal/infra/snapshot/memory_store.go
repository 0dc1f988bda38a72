package snapshot

import (
	"context"
	"sync"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
	"github.com/yanqian/gopher-digest/pkg/util"
)

// MemoryStore keeps snapshots in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]string
}

// NewMemoryStore constructs storage.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]string)}
}

func (s *MemoryStore) Put(_ context.Context, articleID, text string) (string, error) {
	key := objectKey(util.NowUTC(), articleID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = text
	return key, nil
}

// Get returns a stored snapshot.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.blobs[key]
	return text, ok
}

var _ digest.SnapshotStore = (*MemoryStore)(nil)
