// Package scheduler implements background job scheduling
package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"areadata.app/config"
	"areadata.app/models"
	"areadata.app/service"
)

// SnapshotPruner removes snapshots older than the retention cutoff.
type SnapshotPruner interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// Scheduler keeps configured warm metrics fresh and prunes old
// snapshots. Refreshing through the regular fetch path means the cache,
// the breakers and the snapshot history all see the refresh traffic.
type Scheduler struct {
	config    *config.RefreshConfig
	metrics   service.MetricServiceInterface
	snapshots SnapshotPruner
	stop      chan struct{}
}

// NewScheduler creates and configures a new task scheduler
func NewScheduler(config *config.RefreshConfig, metrics service.MetricServiceInterface, snapshots SnapshotPruner) *Scheduler {
	return &Scheduler{
		config:    config,
		metrics:   metrics,
		snapshots: snapshots,
		stop:      make(chan struct{}),
	}
}

// Start begins the scheduler's operations
func (s *Scheduler) Start() {
	if s.snapshots != nil {
		go s.scheduleInterval(24*time.Hour, s.pruneSnapshots)
	}

	if s.config.Enabled {
		go s.scheduleInterval(s.config.Interval, s.refreshWarmMetrics)
	}
}

// Stop terminates the scheduled jobs.
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) scheduleInterval(interval time.Duration, job func()) {
	job()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			job()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) refreshWarmMetrics() {
	requests := parseMetricSpecs(s.config.Metrics)
	if len(requests) == 0 {
		return
	}

	results := s.metrics.FetchBatch(context.Background(), requests)
	for _, result := range results {
		if result.Error != "" {
			slog.Warn("warm metric refresh failed",
				"upstream", result.Upstream, "error", result.Error)
		}
	}
	slog.Debug("warm metric refresh completed", "count", len(results))
}

func (s *Scheduler) pruneSnapshots() {
	cutoff := time.Now().Add(-s.config.SnapshotRetention)
	deleted, err := s.snapshots.DeleteOlderThan(cutoff)
	if err != nil {
		slog.Error("snapshot pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("pruned old snapshots", "deleted", deleted)
	}
}

// parseMetricSpecs converts "upstream|key=value;key=value" specs into
// requests. Malformed specs are skipped with a warning rather than
// aborting the run.
func parseMetricSpecs(specs []string) []models.MetricRequest {
	requests := make([]models.MetricRequest, 0, len(specs))
	for _, spec := range specs {
		upstreamID, rawParams, found := strings.Cut(spec, "|")
		upstreamID = strings.TrimSpace(upstreamID)
		if !found || upstreamID == "" {
			slog.Warn("skipping malformed refresh spec", "spec", spec)
			continue
		}

		params := make(map[string]string)
		for _, pair := range strings.Split(rawParams, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				slog.Warn("skipping malformed refresh spec", "spec", spec)
				params = nil
				break
			}
			params[key] = value
		}
		if params == nil {
			continue
		}

		requests = append(requests, models.MetricRequest{Upstream: upstreamID, Params: params})
	}
	return requests
}
