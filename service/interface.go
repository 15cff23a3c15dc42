package service

import (
	"context"

	"areadata.app/models"
)

// MetricServiceInterface is the surface the HTTP handlers and the
// warm-metric refresher depend on.
type MetricServiceInterface interface {
	FetchMetric(ctx context.Context, upstreamID string, params map[string]string) (*models.NormalizedSeries, error)
	FetchBatch(ctx context.Context, requests []models.MetricRequest) []models.BatchResult
}

// SnapshotStore persists successful fetches for operational history and
// serves the last known result when even the stale cache copy is gone.
type SnapshotStore interface {
	Create(snapshot *models.SeriesSnapshot) error
	LatestByKey(cacheKey string) (*models.SeriesSnapshot, error)
}
