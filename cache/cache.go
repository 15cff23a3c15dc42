// Package cache provides the TTL response cache the data access layer
// is built on. Two backends implement the same contract: a sharded
// in-memory store and redis.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Cache defines the cache operations used by the metric service.
// Get treats expired entries as absent; Set overwrites unconditionally
// with the caller-supplied TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	ClearPrefix(ctx context.Context, prefix string)
	Clear(ctx context.Context)
}

// Key builds a deterministic cache key from an upstream id and its
// query parameters. Parameters are sorted so that equal parameter sets
// always produce the same key and distinct sets never collide.
func Key(upstreamID string, params map[string]string) string {
	if len(params) == 0 {
		return fmt.Sprintf("metric:%s", upstreamID)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, params[name]))
	}

	return fmt.Sprintf("metric:%s:%s", upstreamID, strings.Join(pairs, "&"))
}

// StaleKey derives the key of the long-lived fallback copy of an entry.
func StaleKey(key string) string {
	return "stale:" + key
}
