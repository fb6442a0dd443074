//go:build !integration

package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errStoreDown = errors.New("server selection timeout")
	errNotFound  = errors.New("order not found")
)

// manualClock lets a test move a breaker past its open timeout.
type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg Config) (*CircuitBreaker, *manualClock) {
	clock := &manualClock{t: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)}
	cb := New(cfg)
	cb.now = clock.now
	return cb, clock
}

func testConfig() Config {
	return Config{
		FailureThreshold: 2,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Name:             "mongodb-orders",
	}
}

func fail(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return errStoreDown })
}

func succeed(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return nil })
}

func TestCircuitBreaker_Lifecycle(t *testing.T) {
	cb, clock := newTestBreaker(testConfig())
	require.NoError(t, succeed(cb))
	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, fail(cb), errStoreDown)
	assert.Equal(t, StateClosed, cb.State(), "one failure is under the threshold")
	assert.ErrorIs(t, fail(cb), errStoreDown)
	assert.Equal(t, StateOpen, cb.State())
	assert.True(t, cb.IsOpen())

	called := false
	err := cb.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clock.advance(31 * time.Second)
	require.NoError(t, succeed(cb))
	assert.Equal(t, StateHalfOpen, cb.State(), "one probe is not enough to close")
	require.NoError(t, succeed(cb))
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.GetStats().FailureCount)
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, clock := newTestBreaker(testConfig())
	_ = fail(cb)
	_ = fail(cb)
	require.True(t, cb.IsOpen())

	clock.advance(time.Minute)
	assert.ErrorIs(t, fail(cb), errStoreDown)
	assert.Equal(t, StateOpen, cb.State())

	clock.advance(10 * time.Second)
	assert.ErrorIs(t, succeed(cb), ErrCircuitOpen, "the open timeout restarts after a failed probe")
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(testConfig())

	for range 5 {
		_ = fail(cb)
		require.NoError(t, succeed(cb))
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IgnoredErrors(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func() context.Context
		err       error
		wantCalls int
		wantErr   error
	}{
		{
			name:      "filtered error",
			ctx:       context.Background,
			err:       errNotFound,
			wantCalls: 3,
			wantErr:   errNotFound,
		},
		{
			name:      "cancelled inside the call",
			ctx:       context.Background,
			err:       context.Canceled,
			wantCalls: 3,
			wantErr:   context.Canceled,
		},
		{
			name: "cancelled before the call",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			err:     errStoreDown,
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.IsFailure = func(err error) bool { return !errors.Is(err, errNotFound) }
			cb, _ := newTestBreaker(cfg)

			calls := 0
			for range 3 {
				err := cb.Execute(tt.ctx(), func() error {
					calls++
					return tt.err
				})
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, StateClosed, cb.State())
		})
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	type transition struct{ from, to State }
	var seen []transition

	cfg := testConfig()
	cfg.SuccessThreshold = 1
	cfg.OnStateChange = func(name string, from, to State) {
		assert.Equal(t, "mongodb-orders", name)
		seen = append(seen, transition{from, to})
	}
	cb, clock := newTestBreaker(cfg)

	_ = fail(cb)
	_ = fail(cb)
	clock.advance(time.Minute)
	_ = succeed(cb)

	assert.Equal(t, []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, seen)
}

func TestCircuitBreaker_GetStats(t *testing.T) {
	cb, clock := newTestBreaker(testConfig())
	_ = fail(cb)

	stats := cb.GetStats()
	assert.Equal(t, "mongodb-orders", stats.Name)
	assert.Equal(t, "closed", stats.State)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, clock.t, stats.LastFailure)
	assert.True(t, stats.IsHealthy)

	_ = fail(cb)
	stats = cb.GetStats()
	assert.Equal(t, "open", stats.State)
	assert.False(t, stats.IsHealthy)
	assert.Equal(t, "mongodb-orders", cb.Name())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, 2, cfg.SuccessThreshold)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Nil(t, cfg.IsFailure)
}

func TestState_String(t *testing.T) {
	for state, want := range map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(9):      "unknown",
	} {
		assert.Equal(t, want, state.String())
	}
}
