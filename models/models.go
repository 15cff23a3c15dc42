// Package models defines data structures used throughout the application
package models

import (
	"time"
)

// SeriesPoint is a single observation in a normalized time series.
// Value is nil when the upstream reported the period as unavailable
// (e.g. "(NA)"); a zero value is real data, not a gap.
type SeriesPoint struct {
	Period string   `json:"period"`
	Value  *float64 `json:"value"`
}

// DerivedMetrics holds figures computed from the points of a series.
// They are recomputed on every normalization, never stored on their own.
type DerivedMetrics struct {
	Latest         *float64 `json:"latest"`
	ChangeAbsolute *float64 `json:"changeAbsolute"`
	ChangePercent  *float64 `json:"changePercent"`
	CAGR           *float64 `json:"cagr"`
}

// PlacesSummary is the normalized form for points-of-interest data:
// a count per category plus a single weighted amenity score.
type PlacesSummary struct {
	Categories   map[string]int `json:"categories"`
	AmenityScore float64        `json:"amenityScore"`
}

// NormalizedSeries is the canonical shape every upstream payload is
// converted into. Points are sorted ascending by period with unique
// period keys. Time-series families fill Points and Derived; the
// places family fills Places instead.
type NormalizedSeries struct {
	Label   string          `json:"label"`
	Points  []SeriesPoint   `json:"points,omitempty"`
	Derived *DerivedMetrics `json:"derived,omitempty"`
	Places  *PlacesSummary  `json:"places,omitempty"`

	// Stale marks a series served from the long-lived fallback copy
	// because the upstream is currently unavailable.
	Stale bool `json:"stale,omitempty"`
}

// MetricRequest identifies one metric to fetch from one upstream.
type MetricRequest struct {
	Upstream string            `json:"upstream" binding:"required"`
	Params   map[string]string `json:"params"`
}

// BatchRequest asks for several metrics across upstreams in one call.
type BatchRequest struct {
	Requests []MetricRequest `json:"requests" binding:"required,min=1,dive"`
}

// BatchResult reports the outcome for one request of a batch. Exactly
// one of Series or Error is set; a failed source never fails the batch.
type BatchResult struct {
	Upstream string            `json:"upstream"`
	Params   map[string]string `json:"params,omitempty"`
	Series   *NormalizedSeries `json:"series,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SeriesSnapshot records a successful fetch for operational history.
type SeriesSnapshot struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Upstream  string    `json:"upstream" gorm:"index;not null"`
	CacheKey  string    `json:"cacheKey" gorm:"index;not null"`
	Label     string    `json:"label"`
	Payload   string    `json:"payload" gorm:"type:text"`
	FetchedAt time.Time `json:"fetchedAt" gorm:"index"`
}
