package transmitter

import (
	"context"
	"errors"
	"time"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/metrics"
	"github.com/r3e-network/discovery-pipeline/pkg/resilience"
	"github.com/r3e-network/discovery-pipeline/pkg/tracing"
)

// Config bounds batching, size limits, and retry/breaker behaviour.
type Config struct {
	BatchSize      int
	BatchInterval  time.Duration
	HardSizeLimit  int // bytes, gzipped
	WarnSizeLimit  int // bytes, gzipped
	Encoding       Encoding
	MaxClaims      int
	DestinationURL string
	Retry          resilience.RetryConfig
	Breaker        resilience.BreakerConfig
}

func DefaultConfig(destinationURL string) Config {
	return Config{
		BatchSize:      100,
		BatchInterval:  60 * time.Second,
		HardSizeLimit:  10 * 1024 * 1024,
		WarnSizeLimit:  1 * 1024 * 1024,
		Encoding:       EncodingRaw,
		MaxClaims:      DefaultMaxClaims,
		DestinationURL: destinationURL,
		Retry:          resilience.DefaultRetryConfig(),
		Breaker:        resilience.DefaultBreakerConfig("transmitter-egress"),
	}
}

// Transmitter batches approved events and ships them to an external
// analytics destination.
type Transmitter struct {
	cfg     Config
	queue   *Queue
	ledger  *Ledger
	egress  *EgressClient
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
	tracer  *tracing.Tracer

	lastFlush time.Time
}

func New(cfg Config, queue *Queue, ledger *Ledger, egress *EgressClient, logger *logging.Logger) *Transmitter {
	return &Transmitter{
		cfg:     cfg,
		queue:   queue,
		ledger:  ledger,
		egress:  egress,
		breaker: resilience.NewCircuitBreaker(cfg.Breaker),
		logger:  logger,
		tracer:  tracing.NewGlobalTracer("transmitter"),
	}
}

// Enqueue appends one approved event to the FIFO.
func (t *Transmitter) Enqueue(env cloudevent.Envelope) {
	t.queue.Enqueue(env)
}

// Run drives the batching loop forever until ctx is cancelled: flush when
// the FIFO reaches batch size, otherwise sleep batch_interval and flush
// whatever is present.
func (t *Transmitter) Run(ctx context.Context) {
	ticker := time.NewTicker(t.checkInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.queue.Len() == 0 {
				continue
			}
			t.flushOnce(ctx)
		}
	}
}

// checkInterval polls frequently enough to react promptly once batch_size is
// reached, while still respecting batch_interval as the maximum dwell time.
func (t *Transmitter) checkInterval() time.Duration {
	if t.cfg.BatchInterval < time.Second {
		return t.cfg.BatchInterval
	}
	return time.Second
}

func (t *Transmitter) flushOnce(ctx context.Context) {
	if t.queue.Len() < t.cfg.BatchSize && time.Since(t.lastFlush) < t.cfg.BatchInterval {
		return
	}
	t.lastFlush = time.Now()

	items := t.queue.DequeueUpTo(t.cfg.BatchSize)
	metrics.TransmitterQueueDepth.Set(float64(t.queue.Len()))
	if len(items) == 0 {
		return
	}

	body, err := EncodeBatch(items, t.cfg.Encoding, t.cfg.MaxClaims)
	if err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("transmitter: encode failed, requeueing batch")
		t.queue.RequeueFront(items)
		return
	}

	gzipped, err := Gzip(body)
	if err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("transmitter: gzip failed, requeueing batch")
		t.queue.RequeueFront(items)
		return
	}

	if len(gzipped) > t.cfg.HardSizeLimit {
		t.logger.WithContext(ctx).WithField("size", len(gzipped)).Error("transmitter: batch rejected, exceeds hard size limit")
		t.queue.RequeueFront(items)
		return
	}
	if len(gzipped) > t.cfg.WarnSizeLimit {
		t.logger.WithContext(ctx).WithField("size", len(gzipped)).Warn("transmitter: batch exceeds warn size threshold")
	}

	batchID, err := t.ledger.Create(ctx, len(items), len(gzipped), t.cfg.DestinationURL)
	if err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("transmitter: failed to persist batch, requeueing")
		t.queue.RequeueFront(items)
		return
	}
	if err := t.ledger.MarkSending(ctx, batchID); err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("transmitter: failed to mark batch sending")
	}

	t.send(ctx, batchID, items, gzipped)
}

func (t *Transmitter) send(ctx context.Context, batchID string, items []cloudevent.Envelope, gzipped []byte) {
	ctx, endSpan := t.tracer.StartSpan(ctx, "transmitter.send", map[string]string{"batch_id": batchID})
	var result egressResult
	attempts := 0

	err := t.sendOnce(ctx, gzipped, &result, &attempts)
	endSpan(err)

	if errors.Is(err, resilience.ErrCircuitOpen) {
		t.logger.WithContext(ctx).WithField("batch_id", batchID).Warn("transmitter: circuit open, deferring batch")
		t.queue.RequeueFront(items)
		return
	}

	if err == nil {
		metrics.TransmitterBatches.WithLabelValues(StatusSuccess).Inc()
		_ = t.ledger.MarkSuccess(ctx, batchID, result.status)
		return
	}

	var permErr errPermanent
	if errors.As(err, &permErr) {
		// 4xx: hard fail, items are not recoverable by retry.
		metrics.TransmitterBatches.WithLabelValues(StatusFailed).Inc()
		_ = t.ledger.MarkFailed(ctx, batchID, result.status, err.Error(), attempts)
		return
	}

	// Retry attempts exhausted on a transient (5xx/network) error: the
	// destination could not accept the batch, so re-queue at the head.
	metrics.TransmitterBatches.WithLabelValues(StatusFailed).Inc()
	_ = t.ledger.MarkFailed(ctx, batchID, result.status, err.Error(), attempts)
	t.queue.RequeueFront(items)
}

func (t *Transmitter) sendOnce(ctx context.Context, gzipped []byte, result *egressResult, attempts *int) error {
	return t.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, t.cfg.Retry, func(ctx context.Context) error {
			*attempts++
			r, err := t.egress.post(ctx, t.cfg.DestinationURL, gzipped)
			*result = r
			if err != nil && r.transient {
				return err
			}
			if err != nil {
				return resilience.Permanent(errPermanent{err})
			}
			return nil
		})
	})
}

// errPermanent marks a non-retryable egress failure (4xx).
type errPermanent struct{ err error }

func (e errPermanent) Error() string   { return e.err.Error() }
func (e errPermanent) Unwrap() error   { return e.err }
func (e errPermanent) Permanent() bool { return true }

// Stats returns the live queue depth plus ledger counts for /api/v1/stats.
func (t *Transmitter) Stats(ctx context.Context) (Stats, error) {
	return t.ledger.Stats(ctx, t.queue.Len())
}

// BreakerState exposes the circuit breaker's state for /ready.
func (t *Transmitter) BreakerState() string {
	return t.breaker.State()
}
