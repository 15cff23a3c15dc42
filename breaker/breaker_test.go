package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"areadata.app/pkg/errors"
)

func newTestRegistry(threshold int, cooldown time.Duration) *Registry {
	return NewRegistry(Config{FailureThreshold: threshold, Cooldown: cooldown}, nil)
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	r := newTestRegistry(5, time.Minute)

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Allow("labor"))
		r.RecordFailure("labor")
	}
	assert.Equal(t, StateClosed, r.State("labor"))

	require.NoError(t, r.Allow("labor"))
	r.RecordFailure("labor")
	assert.Equal(t, StateOpen, r.State("labor"))

	err := r.Allow("labor")
	require.Error(t, err)
	assert.True(t, errors.IsCircuitOpenError(err))
}

func TestBreakerSuccessResetsStreak(t *testing.T) {
	r := newTestRegistry(5, time.Minute)

	for i := 0; i < 4; i++ {
		r.RecordFailure("labor")
	}
	r.RecordSuccess("labor")

	// The streak restarted, so four more failures must not trip it.
	for i := 0; i < 4; i++ {
		r.RecordFailure("labor")
	}
	assert.Equal(t, StateClosed, r.State("labor"))
	assert.NoError(t, r.Allow("labor"))
}

func TestBreakerCooldownAndProbe(t *testing.T) {
	r := newTestRegistry(2, 50*time.Millisecond)

	r.RecordFailure("climate")
	r.RecordFailure("climate")
	assert.Equal(t, StateOpen, r.State("climate"))
	assert.True(t, errors.IsCircuitOpenError(r.Allow("climate")))

	time.Sleep(100 * time.Millisecond)

	t.Run("one probe after cooldown", func(t *testing.T) {
		require.NoError(t, r.Allow("climate"))
		assert.Equal(t, StateHalfOpen, r.State("climate"))

		// A second caller during the probe is rejected.
		assert.True(t, errors.IsCircuitOpenError(r.Allow("climate")))
	})

	t.Run("failed probe reopens", func(t *testing.T) {
		r.RecordFailure("climate")
		assert.Equal(t, StateOpen, r.State("climate"))
		assert.True(t, errors.IsCircuitOpenError(r.Allow("climate")))
	})

	t.Run("successful probe closes", func(t *testing.T) {
		time.Sleep(100 * time.Millisecond)

		require.NoError(t, r.Allow("climate"))
		r.RecordSuccess("climate")
		assert.Equal(t, StateClosed, r.State("climate"))
		assert.NoError(t, r.Allow("climate"))
	})
}

func TestBreakerIgnoresLateSuccessWhileOpen(t *testing.T) {
	r := newTestRegistry(2, time.Minute)

	r.RecordFailure("labor")
	r.RecordFailure("labor")
	assert.Equal(t, StateOpen, r.State("labor"))

	// A call that started before the trip can still report success
	// afterwards; the cooldown must not be short-circuited by it.
	r.RecordSuccess("labor")
	assert.Equal(t, StateOpen, r.State("labor"))
	assert.True(t, errors.IsCircuitOpenError(r.Allow("labor")))
}

func TestBreakersAreIndependent(t *testing.T) {
	r := newTestRegistry(1, time.Minute)

	r.RecordFailure("crime")
	assert.Equal(t, StateOpen, r.State("crime"))
	assert.Equal(t, StateClosed, r.State("econ"))
	assert.NoError(t, r.Allow("econ"))
}

func TestBreakerUnknownUpstreamIsClosed(t *testing.T) {
	r := newTestRegistry(5, time.Minute)

	assert.Equal(t, StateClosed, r.State("never-seen"))
	assert.NoError(t, r.Allow("never-seen"))
}

func TestBreakerSnapshot(t *testing.T) {
	r := newTestRegistry(2, time.Minute)

	r.RecordFailure("labor")
	r.RecordFailure("labor")
	r.RecordFailure("econ")

	statuses := r.Snapshot()
	require.Len(t, statuses, 2)

	byUpstream := make(map[string]Status)
	for _, s := range statuses {
		byUpstream[s.Upstream] = s
	}

	assert.Equal(t, "open", byUpstream["labor"].State)
	assert.NotNil(t, byUpstream["labor"].OpenedAt)
	assert.Equal(t, "closed", byUpstream["econ"].State)
	assert.Equal(t, 1, byUpstream["econ"].ConsecutiveFailures)
	assert.Nil(t, byUpstream["econ"].OpenedAt)
}

func TestBreakerConcurrentAccess(t *testing.T) {
	r := newTestRegistry(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if n%2 == 0 {
					r.RecordFailure("labor")
				} else {
					r.RecordSuccess("labor")
				}
				_ = r.Allow("labor")
				_ = r.Snapshot()
			}
		}(i)
	}
	wg.Wait()
}
