// Package service implements the metric fetching flow: cache lookup,
// breaker-gated retry execution, normalization and cache write-back.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"areadata.app/cache"
	"areadata.app/models"
	"areadata.app/normalize"
	"areadata.app/pkg/errors"
	"areadata.app/upstream"
)

// TTLConfig chooses cache lifetimes by how fast each family's data
// moves: statistical releases are monthly at best, places churn faster.
type TTLConfig struct {
	SeriesTTL time.Duration
	PlacesTTL time.Duration
	StaleTTL  time.Duration
}

// MetricService is the resilient access layer in front of the upstream
// APIs. All state it touches (cache, breakers) is injected so tests can
// run against isolated instances.
type MetricService struct {
	registry  *upstream.Registry
	fetcher   *upstream.Fetcher
	executor  *upstream.Executor
	responses cache.Cache
	policy    upstream.Policy
	ttl       TTLConfig
	snapshots SnapshotStore
}

func NewMetricService(
	registry *upstream.Registry,
	fetcher *upstream.Fetcher,
	executor *upstream.Executor,
	responses cache.Cache,
	policy upstream.Policy,
	ttl TTLConfig,
	snapshots SnapshotStore,
) *MetricService {
	return &MetricService{
		registry:  registry,
		fetcher:   fetcher,
		executor:  executor,
		responses: responses,
		policy:    policy,
		ttl:       ttl,
		snapshots: snapshots,
	}
}

// FetchMetric returns the normalized series for one upstream metric.
// Within a request the steps are strictly sequential: cache check,
// breaker check, fetch with retries, normalize, cache write. When the
// upstream is degraded, a stale cached copy is served instead of the
// typed error if one exists.
func (s *MetricService) FetchMetric(ctx context.Context, upstreamID string, params map[string]string) (*models.NormalizedSeries, error) {
	up, ok := s.registry.Lookup(upstreamID)
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("unknown upstream %q", upstreamID))
	}

	key := cache.Key(upstreamID, params)

	if data, found := s.responses.Get(ctx, key); found {
		if series, err := decodeSeries(data); err == nil {
			return series, nil
		}
		// An undecodable entry is treated as a miss and overwritten.
		slog.Warn("dropping undecodable cache entry", "key", key)
	}

	raw, err := s.executor.Execute(ctx, upstreamID, s.policy, func(attemptCtx context.Context) ([]byte, error) {
		req, reqErr := up.NewRequest(attemptCtx, params)
		if reqErr != nil {
			return nil, errors.NewNonRetryableError("failed to build upstream request", reqErr)
		}
		return s.fetcher.Do(req)
	})
	if err != nil {
		if stale := s.staleFallback(ctx, key); stale != nil {
			slog.Warn("serving stale data for degraded upstream",
				"upstream", upstreamID, "error", err)
			return stale, nil
		}
		return nil, err
	}

	series, err := normalize.Normalize(up.Family(), raw)
	if err != nil {
		slog.Error("normalization failed, upstream schema may have drifted",
			"upstream", upstreamID, "error", err)
		return nil, err
	}

	s.store(ctx, upstreamID, key, series)
	return series, nil
}

// FetchBatch fetches several metrics concurrently. Each source succeeds
// or fails on its own; one degraded upstream never fails the batch.
func (s *MetricService) FetchBatch(ctx context.Context, requests []models.MetricRequest) []models.BatchResult {
	results := make([]models.BatchResult, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req models.MetricRequest) {
			defer wg.Done()

			result := models.BatchResult{Upstream: req.Upstream, Params: req.Params}
			series, err := s.FetchMetric(ctx, req.Upstream, req.Params)
			if err != nil {
				slog.Warn("batch source failed", "upstream", req.Upstream, "error", err)
				result.Error = err.Error()
			} else {
				result.Series = series
			}
			results[i] = result
		}(i, req)
	}
	wg.Wait()

	return results
}

func (s *MetricService) store(ctx context.Context, upstreamID, key string, series *models.NormalizedSeries) {
	data, err := json.Marshal(series)
	if err != nil {
		slog.Error("failed to encode series for cache", "key", key, "error", err)
		return
	}

	ttl := s.ttl.SeriesTTL
	if series.Places != nil {
		ttl = s.ttl.PlacesTTL
	}

	s.responses.Set(ctx, key, data, ttl)
	s.responses.Set(ctx, cache.StaleKey(key), data, s.ttl.StaleTTL)

	if s.snapshots != nil {
		snapshot := &models.SeriesSnapshot{
			Upstream:  upstreamID,
			CacheKey:  key,
			Label:     series.Label,
			Payload:   string(data),
			FetchedAt: time.Now(),
		}
		if err := s.snapshots.Create(snapshot); err != nil {
			slog.Warn("failed to record series snapshot", "key", key, "error", err)
		}
	}
}

// staleFallback returns the long-lived copy of a previously successful
// fetch, marked stale, or nil when none survives. When even the stale
// cache copy has expired, the last persisted snapshot is the fallback
// of last resort.
func (s *MetricService) staleFallback(ctx context.Context, key string) *models.NormalizedSeries {
	if data, found := s.responses.Get(ctx, cache.StaleKey(key)); found {
		if series, err := decodeSeries(data); err == nil {
			series.Stale = true
			return series
		}
	}

	if s.snapshots == nil {
		return nil
	}
	snapshot, err := s.snapshots.LatestByKey(key)
	if err != nil || snapshot == nil {
		return nil
	}
	series, err := decodeSeries([]byte(snapshot.Payload))
	if err != nil {
		return nil
	}
	series.Stale = true
	return series
}

func decodeSeries(data []byte) (*models.NormalizedSeries, error) {
	var series models.NormalizedSeries
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, err
	}
	return &series, nil
}
