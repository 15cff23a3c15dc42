// Package breaker implements per-upstream circuit breaking. One breaker
// exists per upstream identifier, created lazily on first use and kept
// for the process lifetime.
package breaker

import (
	"log/slog"
	"sync"
	"time"

	"areadata.app/metrics"
	"areadata.app/pkg/errors"
)

// State captures circuit breaker states.
type State int

const (
	// StateClosed indicates normal operation.
	StateClosed State = iota
	// StateOpen indicates the breaker is rejecting calls.
	StateOpen
	// StateHalfOpen indicates a single trial call is permitted.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Config controls the thresholds for state transitions.
type Config struct {
	FailureThreshold int
	Cooldown         time.Duration
}

// DefaultConfig returns the breaker defaults: trip after 5 consecutive
// failures, recover after a 5 minute cooldown.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		Cooldown:         5 * time.Minute,
	}
}

// Status is the read-only view of one breaker, used by the admin surface.
type Status struct {
	Upstream            string     `json:"upstream"`
	State               string     `json:"state"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	OpenedAt            *time.Time `json:"openedAt,omitempty"`
}

type upstreamBreaker struct {
	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time

	// probing guards the single HalfOpen trial call: set when a probe
	// is admitted, cleared by the probe's outcome.
	probing bool
}

// Registry holds one breaker per upstream id. It is safe for concurrent
// use; unrelated upstreams never share a lock beyond the map lookup.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*upstreamBreaker
	config   Config
	metrics  *metrics.UpstreamMetrics
}

func NewRegistry(config Config, upstreamMetrics *metrics.UpstreamMetrics) *Registry {
	return &Registry{
		breakers: make(map[string]*upstreamBreaker),
		config:   config,
		metrics:  upstreamMetrics,
	}
}

func (r *Registry) breakerFor(upstreamID string) *upstreamBreaker {
	r.mu.RLock()
	b, exists := r.breakers[upstreamID]
	r.mu.RUnlock()
	if exists {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, exists = r.breakers[upstreamID]; exists {
		return b
	}
	b = &upstreamBreaker{state: StateClosed}
	r.breakers[upstreamID] = b
	return b
}

// Allow reports whether a call to the upstream may be attempted. An open
// breaker whose cooldown has elapsed moves to HalfOpen and admits exactly
// one probe; every other caller is rejected with a CircuitOpenError.
func (r *Registry) Allow(upstreamID string) error {
	b := r.breakerFor(upstreamID)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(b.openedAt) < r.config.Cooldown {
			return errors.NewCircuitOpenError(upstreamID)
		}
		b.state = StateHalfOpen
		b.probing = true
		r.recordState(upstreamID, StateHalfOpen)
		slog.Info("circuit breaker half-open, probing", "upstream", upstreamID)
		return nil

	default: // StateHalfOpen
		if b.probing {
			return errors.NewCircuitOpenError(upstreamID)
		}
		b.probing = true
		return nil
	}
}

// RecordSuccess reports a successful call. A success in HalfOpen closes
// the breaker; a success in Closed clears the failure streak.
func (r *Registry) RecordSuccess(upstreamID string) {
	b := r.breakerFor(upstreamID)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		// Late result from a call that started before the trip; the
		// cooldown and probe discipline still apply.
		return

	case StateHalfOpen:
		slog.Info("circuit breaker closed after successful probe", "upstream", upstreamID)
	}

	b.state = StateClosed
	b.failures = 0
	b.probing = false
	r.recordState(upstreamID, StateClosed)
}

// RecordFailure reports a failed call. In Closed it counts toward the
// threshold; in HalfOpen the failed probe reopens the breaker and the
// cooldown starts over.
func (r *Registry) RecordFailure(upstreamID string) {
	b := r.breakerFor(upstreamID)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = time.Now()
		b.probing = false
		r.recordState(upstreamID, StateOpen)
		slog.Warn("circuit breaker reopened after failed probe", "upstream", upstreamID)

	case StateClosed:
		b.failures++
		if b.failures >= r.config.FailureThreshold {
			b.state = StateOpen
			b.openedAt = time.Now()
			r.recordState(upstreamID, StateOpen)
			slog.Warn("circuit breaker opened",
				"upstream", upstreamID,
				"consecutive_failures", b.failures)
		}

	case StateOpen:
		// Failures reported while already open (late results from
		// in-flight calls) keep the breaker open; nothing to count.
	}
}

// State returns the current state for an upstream. Upstreams never seen
// before report Closed.
func (r *Registry) State(upstreamID string) State {
	r.mu.RLock()
	b, exists := r.breakers[upstreamID]
	r.mu.RUnlock()
	if !exists {
		return StateClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns the status of every known breaker for inspection.
func (r *Registry) Snapshot() []Status {
	r.mu.RLock()
	ids := make([]string, 0, len(r.breakers))
	for id := range r.breakers {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	statuses := make([]Status, 0, len(ids))
	for _, id := range ids {
		b := r.breakerFor(id)
		b.mu.Lock()
		status := Status{
			Upstream:            id,
			State:               b.state.String(),
			ConsecutiveFailures: b.failures,
		}
		if b.state != StateClosed {
			openedAt := b.openedAt
			status.OpenedAt = &openedAt
		}
		b.mu.Unlock()
		statuses = append(statuses, status)
	}
	return statuses
}

func (r *Registry) recordState(upstreamID string, state State) {
	if r.metrics != nil {
		r.metrics.RecordBreakerState(upstreamID, float64(state))
	}
}
