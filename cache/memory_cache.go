package cache

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	memoryShardCount     = 32
	memorySweepInterval  = 5 * time.Minute
	memoryDefaultExpires = gocache.NoExpiration
)

// MemoryCache is the in-memory backend. Keys are spread over a fixed
// set of go-cache shards so concurrent requests for unrelated keys do
// not contend on a single lock; each shard's janitor removes expired
// entries in the background, and reads treat expired entries as absent
// either way.
type MemoryCache struct {
	shards [memoryShardCount]*gocache.Cache
}

func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	for i := range c.shards {
		c.shards[i] = gocache.New(memoryDefaultExpires, memorySweepInterval)
	}
	return c
}

func (c *MemoryCache) shard(key string) *gocache.Cache {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%memoryShardCount]
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, found := c.shard(key).Get(key)
	if !found {
		return nil, false
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, false
	}
	return data, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if value == nil || ttl <= 0 {
		return
	}

	c.shard(key).Set(key, value, ttl)
}

func (c *MemoryCache) Delete(ctx context.Context, key string) {
	c.shard(key).Delete(key)
}

func (c *MemoryCache) ClearPrefix(ctx context.Context, prefix string) {
	if prefix == "" {
		c.Clear(ctx)
		return
	}

	for _, shard := range c.shards {
		for key := range shard.Items() {
			if strings.HasPrefix(key, prefix) {
				shard.Delete(key)
			}
		}
	}
}

func (c *MemoryCache) Clear(ctx context.Context) {
	for _, shard := range c.shards {
		shard.Flush()
	}
}
