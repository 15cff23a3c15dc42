package cache

import (
	"context"
	"log/slog"
	"time"

	"areadata.app/metrics"
)

// InstrumentedCache decorates a backend with hit/miss and latency
// metrics. The metric service sees only the Cache interface and stays
// unaware of the instrumentation.
type InstrumentedCache struct {
	inner   Cache
	metrics *metrics.CacheMetrics
}

func NewInstrumentedCache(inner Cache, cacheType string) *InstrumentedCache {
	return &InstrumentedCache{
		inner:   inner,
		metrics: metrics.NewCacheMetrics(cacheType),
	}
}

// Metrics exposes the recorded counters for the admin stats surface.
func (c *InstrumentedCache) Metrics() *metrics.CacheMetrics {
	return c.metrics
}

func (c *InstrumentedCache) measureLatency(operation string, fn func()) {
	start := time.Now()
	fn()
	c.metrics.RecordLatency(operation, time.Since(start).Seconds())
}

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	var found bool

	c.measureLatency("get", func() {
		data, found = c.inner.Get(ctx, key)
	})

	if found {
		c.metrics.RecordHit()
		slog.Debug("cache hit", "key", key)
	} else {
		c.metrics.RecordMiss()
		slog.Debug("cache miss", "key", key)
	}

	return data, found
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.measureLatency("set", func() {
		c.inner.Set(ctx, key, value, ttl)
	})
}

func (c *InstrumentedCache) Delete(ctx context.Context, key string) {
	c.inner.Delete(ctx, key)
}

func (c *InstrumentedCache) ClearPrefix(ctx context.Context, prefix string) {
	c.inner.ClearPrefix(ctx, prefix)
}

func (c *InstrumentedCache) Clear(ctx context.Context) {
	c.inner.Clear(ctx)
}
