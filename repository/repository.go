// Package repository implements data access for series snapshots
package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"areadata.app/models"
	"areadata.app/pkg/errors"
)

// SnapshotRepository stores the history of successful fetches.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new repository for series snapshots
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create persists a new snapshot, assigning its id and timestamp when
// the caller left them empty.
func (r *SnapshotRepository) Create(snapshot *models.SeriesSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}

	if result := r.db.Create(snapshot); result.Error != nil {
		return errors.NewDatabaseError("failed to create snapshot", result.Error)
	}
	return nil
}

// ListByUpstream returns the most recent snapshots for one upstream.
func (r *SnapshotRepository) ListByUpstream(upstreamID string, limit int) ([]models.SeriesSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	var snapshots []models.SeriesSnapshot
	result := r.db.
		Where("upstream = ?", upstreamID).
		Order("fetched_at DESC").
		Limit(limit).
		Find(&snapshots)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list snapshots", result.Error)
	}
	return snapshots, nil
}

// LatestByKey returns the newest snapshot for a cache key, or nil.
func (r *SnapshotRepository) LatestByKey(cacheKey string) (*models.SeriesSnapshot, error) {
	var snapshot models.SeriesSnapshot
	result := r.db.
		Where("cache_key = ?", cacheKey).
		Order("fetched_at DESC").
		First(&snapshot)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("failed to find snapshot", result.Error)
	}
	return &snapshot, nil
}

// DeleteOlderThan removes snapshots fetched before the cutoff and
// returns how many rows went away.
func (r *SnapshotRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("fetched_at < ?", cutoff).Delete(&models.SeriesSnapshot{})
	if result.Error != nil {
		return 0, errors.NewDatabaseError("failed to prune snapshots", result.Error)
	}
	return result.RowsAffected, nil
}
