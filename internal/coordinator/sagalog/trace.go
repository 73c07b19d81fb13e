package sagalog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars).
	TraceID string

	// SpanID is the W3C span ID (16 lowercase hex chars).
	SpanID string
}

// ExtractTraceInfo reads the active span from ctx. It returns the zero
// TraceInfo when ctx carries no valid span context, e.g. in unit tests.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an audit entry for orderID stamped with the trace of ctx.
//
//	entry := sagalog.NewEntry(ctx, req.OrderID, sagalog.ActionGatewaySubmit, "amount=100.00")
//	_ = repo.Append(ctx, entry)
func NewEntry(ctx context.Context, orderID string, action Action, details string) *TransactionLogEntry {
	ti := ExtractTraceInfo(ctx)
	return &TransactionLogEntry{
		OrderID:   orderID,
		Action:    action,
		Details:   details,
		TraceID:   ti.TraceID,
		SpanID:    ti.SpanID,
		CreatedAt: time.Now().UTC(),
	}
}
