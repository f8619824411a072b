package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type permanentTestError struct{ error }

func (permanentTestError) Permanent() bool { return true }

func TestBreakerOpensOnConsecutiveTransientFailures(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{Name: "t", FailureThreshold: 2, HalfOpenMax: 1, ResetTimeout: time.Minute})

	_ = b.Execute(context.Background(), func(ctx context.Context) error { return errors.New("boom") })
	assert.False(t, b.IsOpen())

	_ = b.Execute(context.Background(), func(ctx context.Context) error { return errors.New("boom") })
	assert.True(t, b.IsOpen())
}

func TestBreakerStaysClosedOnPermanentErrors(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{Name: "t", FailureThreshold: 2, HalfOpenMax: 1, ResetTimeout: time.Minute})

	for i := 0; i < 10; i++ {
		err := b.Execute(context.Background(), func(ctx context.Context) error {
			return permanentTestError{errors.New("bad request")}
		})
		assert.Error(t, err)
	}

	assert.False(t, b.IsOpen(), "permanent (4xx-shaped) errors must never trip the breaker")
	assert.Equal(t, "closed", b.State())
}

func TestBreakerRejectsCallsWhileOpen(t *testing.T) {
	b := NewCircuitBreaker(BreakerConfig{Name: "t", FailureThreshold: 1, HalfOpenMax: 1, ResetTimeout: time.Minute})

	_ = b.Execute(context.Background(), func(ctx context.Context) error { return errors.New("boom") })
	require.True(t, b.IsOpen())

	var called bool
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "the wrapped function must not run once the circuit is open")
}
