package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"areadata.app/models"
)

func newTestRepo(t *testing.T) *SnapshotRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SeriesSnapshot{}))

	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM series_snapshots").Error
	})

	return NewSnapshotRepository(db)
}

func TestSnapshotCreateAndList(t *testing.T) {
	repo := newTestRepo(t)

	for i := 0; i < 3; i++ {
		err := repo.Create(&models.SeriesSnapshot{
			Upstream:  "labor",
			CacheKey:  "metric:labor:seriesid=LAUCN0403",
			Label:     "LAUCN0403",
			Payload:   `{"label":"LAUCN0403"}`,
			FetchedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.Create(&models.SeriesSnapshot{
		Upstream: "econ",
		CacheKey: "metric:econ:TableName=CAGDP1",
		Label:    "Real GDP",
		Payload:  `{}`,
	}))

	snapshots, err := repo.ListByUpstream("labor", 2)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "labor", snapshots[0].Upstream)
	// Newest first.
	assert.True(t, snapshots[0].FetchedAt.After(snapshots[1].FetchedAt))

	t.Run("ids are assigned", func(t *testing.T) {
		assert.NotEmpty(t, snapshots[0].ID)
	})
}

func TestSnapshotLatestByKey(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(&models.SeriesSnapshot{
		Upstream:  "labor",
		CacheKey:  "metric:labor:seriesid=A",
		FetchedAt: time.Now().Add(-time.Hour),
		Payload:   `{"old":true}`,
	}))
	require.NoError(t, repo.Create(&models.SeriesSnapshot{
		Upstream:  "labor",
		CacheKey:  "metric:labor:seriesid=A",
		FetchedAt: time.Now(),
		Payload:   `{"new":true}`,
	}))

	snapshot, err := repo.LatestByKey("metric:labor:seriesid=A")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Contains(t, snapshot.Payload, "new")

	t.Run("missing key returns nil", func(t *testing.T) {
		snapshot, err := repo.LatestByKey("metric:labor:seriesid=MISSING")
		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})
}

func TestSnapshotDeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(&models.SeriesSnapshot{
		Upstream:  "labor",
		CacheKey:  "metric:labor:seriesid=A",
		FetchedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, repo.Create(&models.SeriesSnapshot{
		Upstream:  "labor",
		CacheKey:  "metric:labor:seriesid=B",
		FetchedAt: time.Now(),
	}))

	deleted, err := repo.DeleteOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.ListByUpstream("labor", 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
