package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
)

// TransactionLogRepository is the sagalog.Repository backed by the
// transaction_logs table. Rows are only ever inserted.
type TransactionLogRepository struct {
	db *sql.DB
}

var _ sagalog.Repository = (*TransactionLogRepository)(nil)

// Append inserts entry and sets its ID. It is safe to call concurrently.
func (r *TransactionLogRepository) Append(ctx context.Context, entry *sagalog.TransactionLogEntry) error {
	const q = `
		INSERT INTO transaction_logs (order_id, action, details, trace_id, span_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, q,
		entry.OrderID,
		string(entry.Action),
		entry.Details,
		entry.TraceID,
		entry.SpanID,
		formatTimestamp(entry.CreatedAt),
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: append transaction log for %q: %w", entry.OrderID, err)
	}
	return nil
}

// ListByOrderID returns the entries of one order in insertion order.
func (r *TransactionLogRepository) ListByOrderID(ctx context.Context, orderID string) ([]sagalog.TransactionLogEntry, error) {
	const q = `
		SELECT id, order_id, action, details, trace_id, span_id, created_at
		FROM   transaction_logs
		WHERE  order_id = $1
		ORDER  BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list transaction logs for %q: %w", orderID, err)
	}
	defer rows.Close()

	var entries []sagalog.TransactionLogEntry
	for rows.Next() {
		var (
			e       sagalog.TransactionLogEntry
			created string
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Action, &e.Details, &e.TraceID, &e.SpanID, &created); err != nil {
			return nil, fmt.Errorf("sqlstore: scan transaction log: %w", err)
		}
		if e.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: list transaction logs for %q: %w", orderID, err)
	}
	return entries, nil
}
