package sagalog

import "context"

// Repository persists and reads back audit entries.
// Append must commit on its own, independently of any order or payment write.
type Repository interface {
	Append(ctx context.Context, entry *TransactionLogEntry) error
	ListByOrderID(ctx context.Context, orderID string) ([]TransactionLogEntry, error)
}
