// Package resilience provides the circuit breaker and retry policy shared by
// every outbound call the pipeline makes (scan callbacks, batch egress, dry-run
// triggers).
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned (wrapped) when the breaker is open and a call is
// rejected without attempting the underlying operation.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// permanentError is satisfied by errors that must not count as circuit
// failures — e.g. a 4xx response the caller already classified as
// non-retryable. The breaker only trips on consecutive transient failures.
type permanentError interface {
	Permanent() bool
}
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	ResetTimeout     time.Duration
	HalfOpenMax      uint32
	OnStateChange    func(name string, from, to string)
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
		HalfOpenMax:      1,
	}
}

// CircuitBreaker wraps gobreaker with the Execute(ctx, fn) surface used
// throughout the pipeline.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMax,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var pe permanentError
			if errors.As(err, &pe) {
				return pe.Permanent()
			}
			return false
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, from.String(), to.String())
		}
	}
	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// Execute runs fn through the breaker. A rejected call returns ErrCircuitOpen
// wrapped; the caller's ctx is honoured by fn itself.
func (b *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

// State reports the breaker's current state as one of "closed", "open",
// "half-open".
func (b *CircuitBreaker) State() string {
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

func (b *CircuitBreaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}
