package summarycache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
)

// MemoryCache is a bounded in-process cache for single instance deployments.
type MemoryCache struct {
	lru *expirable.LRU[string, digest.Response]
}

// NewMemoryCache builds an LRU whose entries expire after ttl.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 512
	}
	return &MemoryCache{lru: expirable.NewLRU[string, digest.Response](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (digest.Response, bool, error) {
	resp, ok := c.lru.Get(url)
	return resp, ok, nil
}

// Set ignores ttl; expiry is fixed when the cache is built.
func (c *MemoryCache) Set(_ context.Context, url string, resp digest.Response, _ time.Duration) error {
	c.lru.Add(url, resp)
	return nil
}

var _ digest.Cache = (*MemoryCache)(nil)
