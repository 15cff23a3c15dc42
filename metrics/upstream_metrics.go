package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded per upstream call.
const (
	OutcomeSuccess      = "success"
	OutcomeTransient    = "transient"
	OutcomeNonRetryable = "non_retryable"
	OutcomeRejected     = "rejected"
)

type UpstreamMetricsCollector struct {
	Requests     *prometheus.CounterVec
	Latency      *prometheus.HistogramVec
	BreakerState *prometheus.GaugeVec
}

var (
	upstreamCollector     *UpstreamMetricsCollector
	upstreamCollectorOnce sync.Once
)

func getUpstreamCollector() *UpstreamMetricsCollector {
	upstreamCollectorOnce.Do(func() {
		upstreamCollector = &UpstreamMetricsCollector{
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "areadata_upstream_requests_total",
					Help: "The total number of upstream call attempts by outcome",
				},
				[]string{"upstream", "outcome"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "areadata_upstream_duration_seconds",
					Help:    "Upstream call attempt duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"upstream"},
			),
			BreakerState: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "areadata_breaker_state",
					Help: "Circuit breaker state per upstream (0=closed, 1=open, 2=half-open)",
				},
				[]string{"upstream"},
			),
		}
	})
	return upstreamCollector
}

// UpstreamMetrics records call attempt outcomes and breaker transitions
// for a single process.
type UpstreamMetrics struct {
	collector *UpstreamMetricsCollector
}

func NewUpstreamMetrics() *UpstreamMetrics {
	return &UpstreamMetrics{collector: getUpstreamCollector()}
}

func (m *UpstreamMetrics) RecordRequest(upstream, outcome string, seconds float64) {
	m.collector.Requests.WithLabelValues(upstream, outcome).Inc()
	m.collector.Latency.WithLabelValues(upstream).Observe(seconds)
}

func (m *UpstreamMetrics) RecordRejection(upstream string) {
	m.collector.Requests.WithLabelValues(upstream, OutcomeRejected).Inc()
}

func (m *UpstreamMetrics) RecordBreakerState(upstream string, state float64) {
	m.collector.BreakerState.WithLabelValues(upstream).Set(state)
}
