package coordinator

import (
	"context"
	"fmt"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

const (
	VariantFacade            = "facade"
	VariantTransactionScript = "transaction-script"
)

// Dependencies are the collaborators of a transaction-script orchestrator.
// Audit may be nil.
type Dependencies struct {
	Orders   OrderStore
	Payments PaymentStore
	Audit    AuditLog
	Gateway  PaymentGateway
	Notifier Notifier
}

// transactionScript talks to every store and remote client itself.
type transactionScript struct {
	deps  Dependencies
	audit auditor
}

// NewTransactionScript builds an orchestrator in which one unit owns all
// stores and remote clients directly.
func NewTransactionScript(deps Dependencies, opts ...Option) *Orchestrator {
	o := newOrchestrator(VariantTransactionScript, opts...)
	o.p = &transactionScript{
		deps:  deps,
		audit: auditor{log: deps.Audit, logger: o.logger},
	}
	return o
}

func (s *transactionScript) persistOrder(ctx context.Context, order domain.Order) error {
	if _, err := s.deps.Orders.Save(ctx, order); err != nil {
		return fmt.Errorf("save order %s: %w", order.OrderID, err)
	}
	return nil
}

func (s *transactionScript) rollbackOrder(ctx context.Context, orderID string) error {
	if err := s.deps.Orders.Invalidate(ctx, orderID); err != nil {
		return fmt.Errorf("invalidate order %s: %w", orderID, err)
	}
	return nil
}

func (s *transactionScript) submit(ctx context.Context, req domain.OrderRequest) (domain.APIResponse, error) {
	s.audit.record(ctx, req, sagalog.ActionGatewaySubmit)
	resp, err := s.deps.Gateway.Submit(ctx, req)
	if err != nil {
		return domain.APIResponse{}, fmt.Errorf("gateway submit: %w", err)
	}
	return resp, nil
}

func (s *transactionScript) cancel(ctx context.Context, req domain.OrderRequest) error {
	s.audit.record(ctx, req, sagalog.ActionGatewayCancel)
	if err := s.deps.Gateway.Cancel(ctx, req); err != nil {
		return fmt.Errorf("gateway cancel: %w", err)
	}
	return nil
}

func (s *transactionScript) persistPayment(ctx context.Context, payment domain.Payment) error {
	if _, err := s.deps.Payments.Save(ctx, payment); err != nil {
		return fmt.Errorf("save payment for order %s: %w", payment.OrderID, err)
	}
	return nil
}

func (s *transactionScript) notify(ctx context.Context, req domain.OrderRequest) error {
	s.audit.record(ctx, req, sagalog.ActionNotify)
	if err := s.deps.Notifier.Notify(ctx, req); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
