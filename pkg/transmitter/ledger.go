package transmitter

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Batch states. Transitions are strictly pending -> sending -> {success,
// failed}; no backward transitions.
const (
	StatusPending = "pending"
	StatusSending = "sending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Batch mirrors one row of transmitter.batches.
type Batch struct {
	ID             string
	Status         string
	ItemCount      int
	PayloadSize    int
	DestinationURL string
	HTTPStatus     sql.NullInt64
	ErrorMessage   sql.NullString
	RetryCount     int
	CreatedAt      time.Time
	SentAt         sql.NullTime
	CompletedAt    sql.NullTime
}

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS transmitter;
CREATE TABLE IF NOT EXISTS transmitter.batches (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	item_count INTEGER NOT NULL,
	payload_size INTEGER NOT NULL,
	destination_url TEXT NOT NULL,
	http_status INTEGER,
	error_message TEXT,
	retry_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_batches_status ON transmitter.batches(status);
CREATE INDEX IF NOT EXISTS idx_batches_created_at ON transmitter.batches(created_at);
`

// Ledger persists the batch lifecycle to Postgres.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Bootstrap applies the ledger's schema. Called once at service startup.
func (l *Ledger) Bootstrap(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, schemaSQL)
	return err
}

// Create inserts a new batch row in the pending state.
func (l *Ledger) Create(ctx context.Context, itemCount, payloadSize int, destinationURL string) (string, error) {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO transmitter.batches (id, status, item_count, payload_size, destination_url)
		VALUES ($1, $2, $3, $4, $5)`,
		id, StatusPending, itemCount, payloadSize, destinationURL)
	if err != nil {
		return "", fmt.Errorf("create batch: %w", err)
	}
	return id, nil
}

// MarkSending transitions pending -> sending.
func (l *Ledger) MarkSending(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE transmitter.batches SET status = $2, sent_at = now() WHERE id = $1`,
		id, StatusSending)
	return err
}

// MarkSuccess transitions sending -> success.
func (l *Ledger) MarkSuccess(ctx context.Context, id string, httpStatus int) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE transmitter.batches SET status = $2, http_status = $3, completed_at = now() WHERE id = $1`,
		id, StatusSuccess, httpStatus)
	return err
}

// MarkFailed transitions sending -> failed.
func (l *Ledger) MarkFailed(ctx context.Context, id string, httpStatus int, errMessage string, retryCount int) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE transmitter.batches
		SET status = $2, http_status = $3, error_message = $4, retry_count = $5, completed_at = now()
		WHERE id = $1`,
		id, StatusFailed, nullableInt(httpStatus), errMessage, retryCount)
	return err
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// Stats is the body returned by GET /api/v1/stats.
type Stats struct {
	PendingItems  int `json:"pending_items"`
	BatchesSent   int `json:"batches_sent"`
	BatchesFailed int `json:"batches_failed"`
}

func (l *Ledger) Stats(ctx context.Context, pendingItems int) (Stats, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0)
		FROM transmitter.batches`, StatusSuccess, StatusFailed)

	var sent, failed int
	if err := row.Scan(&sent, &failed); err != nil {
		return Stats{}, fmt.Errorf("query batch stats: %w", err)
	}
	return Stats{PendingItems: pendingItems, BatchesSent: sent, BatchesFailed: failed}, nil
}
