package upstream

import (
	"context"
	"log/slog"
	"time"

	"areadata.app/breaker"
	"areadata.app/metrics"
	"areadata.app/pkg/errors"
)

// Policy bounds the retry behavior for one upstream call.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

// DefaultPolicy returns the retry defaults: 3 attempts, 1s base delay
// doubling each attempt, capped at 30s, 15s per-attempt timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		MaxDelay:       30 * time.Second,
		AttemptTimeout: 15 * time.Second,
	}
}

// Backoff returns the delay to sleep before retrying after the given
// zero-based attempt: min(base * 2^attempt, max).
func Backoff(policy Policy, attempt int) time.Duration {
	delay := policy.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= policy.MaxDelay {
			return policy.MaxDelay
		}
	}
	if delay > policy.MaxDelay {
		return policy.MaxDelay
	}
	return delay
}

// Executor runs upstream calls under a retry policy, consulting the
// circuit breaker before every attempt and reporting outcomes back.
type Executor struct {
	breakers *breaker.Registry
	metrics  *metrics.UpstreamMetrics
}

func NewExecutor(breakers *breaker.Registry, upstreamMetrics *metrics.UpstreamMetrics) *Executor {
	return &Executor{
		breakers: breakers,
		metrics:  upstreamMetrics,
	}
}

// Execute attempts fn under the policy. Transient failures are retried
// with capped exponential backoff; non-retryable failures and open
// circuits return immediately. Cancelling ctx aborts the in-flight
// attempt and any pending backoff sleep.
func (e *Executor) Execute(
	ctx context.Context,
	upstreamID string,
	policy Policy,
	fn func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The breaker can trip mid-loop from this caller's own
		// failures or from concurrent requests.
		if err := e.breakers.Allow(upstreamID); err != nil {
			e.recordRejection(upstreamID)
			return nil, err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, policy.AttemptTimeout)
		started := time.Now()
		result, err := fn(attemptCtx)
		elapsed := time.Since(started)
		cancel()

		if err == nil {
			e.breakers.RecordSuccess(upstreamID)
			e.recordRequest(upstreamID, metrics.OutcomeSuccess, elapsed)
			return result, nil
		}

		e.breakers.RecordFailure(upstreamID)

		if errors.IsNonRetryableError(err) {
			e.recordRequest(upstreamID, metrics.OutcomeNonRetryable, elapsed)
			return nil, err
		}

		e.recordRequest(upstreamID, metrics.OutcomeTransient, elapsed)
		lastErr = err

		if attempt == policy.MaxAttempts-1 {
			break
		}

		delay := Backoff(policy, attempt)
		slog.Info("upstream attempt failed, backing off",
			"upstream", upstreamID,
			"attempt", attempt+1,
			"delay", delay.String(),
			"error", err)

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, errors.NewRetriesExhaustedError(policy.MaxAttempts, lastErr)
}

// sleep waits for the delay unless the context is cancelled first.
func sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Executor) recordRequest(upstreamID, outcome string, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordRequest(upstreamID, outcome, elapsed.Seconds())
	}
}

func (e *Executor) recordRejection(upstreamID string) {
	if e.metrics != nil {
		e.metrics.RecordRejection(upstreamID)
	}
}
