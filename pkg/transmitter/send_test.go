package transmitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/resilience"
)

func testLogger() *logging.Logger {
	return logging.New("transmitter-test", "error", "json")
}

func newTestTransmitter(t *testing.T, destinationURL string, maxAttempts int) (*Transmitter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := DefaultConfig(destinationURL)
	cfg.Retry.MaxAttempts = maxAttempts
	cfg.Retry.InitialDelay = 0
	cfg.Retry.MaxDelay = 0

	tr := New(cfg, NewQueue(), NewLedger(db), NewEgressClient(""), testLogger())
	return tr, mock
}

func seedSendingBatch(t *testing.T, tr *Transmitter, mock sqlmock.Sqlmock, destinationURL string) string {
	t.Helper()
	mock.ExpectExec(`INSERT INTO transmitter\.batches`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE transmitter\.batches SET status = \$2, sent_at = now\(\)`).WillReturnResult(sqlmock.NewResult(0, 1))

	batchID, err := tr.ledger.Create(context.Background(), 1, 10, destinationURL)
	require.NoError(t, err)
	require.NoError(t, tr.ledger.MarkSending(context.Background(), batchID))
	return batchID
}

// TestSendPermanentErrorDoesNotRetry locks in blocking fix #1: a 4xx response
// must fail the batch on the first attempt, never consume the retry budget.
func TestSendPermanentErrorDoesNotRetry(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	tr, mock := newTestTransmitter(t, server.URL, 5)
	batchID := seedSendingBatch(t, tr, mock, server.URL)
	mock.ExpectExec(`UPDATE transmitter\.batches\s+SET status = \$2`).WillReturnResult(sqlmock.NewResult(0, 1))

	items := []cloudevent.Envelope{cloudevent.New("/test", "discovery.server.discovered", "", map[string]interface{}{"a": 1})}
	tr.send(context.Background(), batchID, items, []byte("gzipped-body"))

	assert.Equal(t, 1, attempts, "a 4xx response must not be retried")
	assert.Equal(t, 0, tr.queue.Len(), "a permanent failure must not requeue the batch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSendTransientErrorRetriesUpToMaxAttempts locks in the complementary
// behaviour: a 5xx/network error keeps retrying until MaxAttempts, then
// requeues for a later flush.
func TestSendTransientErrorRetriesUpToMaxAttempts(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tr, mock := newTestTransmitter(t, server.URL, 3)
	batchID := seedSendingBatch(t, tr, mock, server.URL)
	mock.ExpectExec(`UPDATE transmitter\.batches\s+SET status = \$2`).WillReturnResult(sqlmock.NewResult(0, 1))

	items := []cloudevent.Envelope{cloudevent.New("/test", "discovery.server.discovered", "", map[string]interface{}{"a": 1})}
	tr.send(context.Background(), batchID, items, []byte("gzipped-body"))

	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, tr.queue.Len(), "a batch exhausting retries on a transient error is requeued")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestBreaker4xxNeverTripsCircuit locks in blocking fix #2: consecutive 4xx
// responses are permanent errors and must never count toward the breaker's
// consecutive-failure count.
func TestBreaker4xxNeverTripsCircuit(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.BreakerConfig{
		Name:             "test",
		FailureThreshold: 2,
		HalfOpenMax:      1,
	})

	for i := 0; i < 5; i++ {
		err := breaker.Execute(context.Background(), func(ctx context.Context) error {
			return resilience.Permanent(errPermanent{errors.New("bad request")})
		})
		assert.Error(t, err)
	}

	assert.False(t, breaker.IsOpen(), "repeated permanent (4xx) errors must never open the circuit")
}

// TestSendCircuitOpenDefersBatch exercises the breaker's ErrCircuitOpen path:
// once tripped, send must requeue without invoking the egress client.
func TestSendCircuitOpenDefersBatch(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr, mock := newTestTransmitter(t, server.URL, 1)
	tr.breaker = resilience.NewCircuitBreaker(resilience.BreakerConfig{
		Name:             "test",
		FailureThreshold: 1,
		HalfOpenMax:      1,
	})
	// Trip the breaker with one transient failure before it ever reaches egress.
	_ = tr.breaker.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.True(t, tr.breaker.IsOpen())

	batchID := seedSendingBatch(t, tr, mock, server.URL)

	items := []cloudevent.Envelope{cloudevent.New("/test", "discovery.server.discovered", "", nil)}
	tr.send(context.Background(), batchID, items, []byte("gzipped-body"))

	assert.Equal(t, 0, calls, "egress must not be invoked while the circuit is open")
	assert.Equal(t, 1, tr.queue.Len(), "a deferred batch is requeued for later")
}
