package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig configures exponential-backoff retry: multiplier x
// 2^(attempt-1), capped at MaxDelay.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Retry runs fn up to cfg.MaxAttempts times, sleeping an exponentially
// growing interval between attempts. It stops early if ctx is cancelled or
// fn returns a non-retryable error via backoff.Permanent.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialDelay
	bo.MaxInterval = cfg.MaxDelay
	bo.Multiplier = cfg.Multiplier
	bo.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := fn(ctx)
		if err != nil && attempt >= cfg.MaxAttempts {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}

// Permanent marks err as non-retryable: Retry stops on the first attempt
// instead of exhausting cfg.MaxAttempts. Callers use this to surface a
// hard failure (e.g. a 4xx response) that retrying cannot fix.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
