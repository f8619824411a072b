package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	var calls int
	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsImmediatelyOnPermanentError(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	var calls int
	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return Permanent(errors.New("bad request"))
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "a permanent error must not consume the retry budget")
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

	var calls int
	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return errors.New("still failing")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryHonoursContextCancellation(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 100, InitialDelay: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond, Multiplier: 1}
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Retry(ctx, cfg, func(ctx context.Context) error {
		calls++
		return errors.New("still failing")
	})

	assert.Error(t, err)
	assert.Less(t, calls, 100)
}
