package transmitter

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCreateInsertsPendingBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO transmitter\.batches`).
		WithArgs(sqlmock.AnyArg(), StatusPending, 3, 1024, "https://sink.example.com/ingest").
		WillReturnResult(sqlmock.NewResult(1, 1))

	ledger := NewLedger(db)
	id, err := ledger.Create(context.Background(), 3, 1024, "https://sink.example.com/ingest")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerMarkSuccessTransitionsState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE transmitter\.batches SET status = \$2, http_status = \$3, completed_at = now\(\) WHERE id = \$1`).
		WithArgs("batch-1", StatusSuccess, 200).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ledger := NewLedger(db)
	err = ledger.MarkSuccess(context.Background(), "batch-1", 200)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerMarkFailedRecordsRetryCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE transmitter\.batches`).
		WithArgs("batch-2", StatusFailed, 503, "destination returned 503", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ledger := NewLedger(db)
	err = ledger.MarkFailed(context.Background(), "batch-2", 503, "destination returned 503", 3)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerStatsAggregatesCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"sent", "failed"}).AddRow(4, 1)
	mock.ExpectQuery(`SELECT`).WithArgs(StatusSuccess, StatusFailed).WillReturnRows(rows)

	ledger := NewLedger(db)
	stats, err := ledger.Stats(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, Stats{PendingItems: 7, BatchesSent: 4, BatchesFailed: 1}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
