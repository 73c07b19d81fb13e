package coordinator

import (
	"context"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

// OrderStore owns the lifecycle of Order rows.
type OrderStore interface {
	Save(ctx context.Context, order domain.Order) (domain.Order, error)
	// Invalidate marks a previously saved order as no longer live.
	Invalidate(ctx context.Context, orderID string) error
}

// PaymentStore owns the lifecycle of Payment rows.
type PaymentStore interface {
	Save(ctx context.Context, payment domain.Payment) (domain.Payment, error)
}

// AuditLog is the write side of the transaction log.
type AuditLog interface {
	Append(ctx context.Context, entry *sagalog.TransactionLogEntry) error
}

// PaymentGateway is the remote payment service. Submit may block for as
// long as the gateway takes; callers bound it themselves.
type PaymentGateway interface {
	Submit(ctx context.Context, req domain.OrderRequest) (domain.APIResponse, error)
	Cancel(ctx context.Context, req domain.OrderRequest) error
}

type Notifier interface {
	Notify(ctx context.Context, req domain.OrderRequest) error
}
