package summarycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
)

// ValkeyCache stores digests in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "digest"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, url string) (digest.Response, bool, error) {
	cmd := c.client.B().Get().Key(c.key(url)).Build()
	payload, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return digest.Response{}, false, nil
		}
		return digest.Response{}, false, err
	}
	var resp digest.Response
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return digest.Response{}, false, fmt.Errorf("decode cached digest: %w", err)
	}
	return resp, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, url string, resp digest.Response, ttl time.Duration) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.key(url)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// key hashes the URL so arbitrary query strings stay out of the keyspace.
func (c *ValkeyCache) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s:summary:%s", c.prefix, hex.EncodeToString(sum[:]))
}

var _ digest.Cache = (*ValkeyCache)(nil)
