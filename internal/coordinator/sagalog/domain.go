// Package sagalog defines the audit trail written around every remote call a
// fulfillment saga makes.
//
// Entries are append-only. One entry is written per attempted gateway submit,
// per gateway cancel issued as compensation, and per notification dispatch.
// The trace_id lets you jump from an audit row straight to the distributed
// trace of the request that produced it.
package sagalog

import "time"

// Action labels which remote call an entry records.
type Action string

const (
	ActionGatewaySubmit Action = "Payment gateway submit"
	ActionGatewayCancel Action = "Compensation - payment gateway cancel"
	ActionNotify        Action = "Notification dispatch"
)

// TransactionLogEntry is a single row in the transaction_logs table.
type TransactionLogEntry struct {
	// ID is the store's surrogate key, zero until appended.
	ID int64

	// OrderID is the business identifier of the order the call was made for.
	OrderID string

	Action Action

	// Details is a short free-text description of the call arguments.
	Details string

	// TraceID and SpanID identify the OTel span active at write time. Both
	// are empty when no span is recording.
	TraceID string
	SpanID  string

	// CreatedAt is assigned when the entry is built, not when it is stored.
	CreatedAt time.Time
}
