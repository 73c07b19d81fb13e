package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

// --- OrderStep ---

type OrderStep struct {
	store OrderStore
}

func NewOrderStep(store OrderStore) *OrderStep {
	return &OrderStep{store: store}
}

func (s *OrderStep) Name() string { return "Persist_Order_Step" }

func (s *OrderStep) Execute(ctx context.Context, order domain.Order) error {
	if _, err := s.store.Save(ctx, order); err != nil {
		return fmt.Errorf("failed to persist order %s: %w", order.OrderID, err)
	}
	return nil
}

func (s *OrderStep) Compensate(ctx context.Context, orderID string) error {
	if err := s.store.Invalidate(ctx, orderID); err != nil {
		return fmt.Errorf("failed to invalidate order %s: %w", orderID, err)
	}
	return nil
}

// --- GatewayStep ---

type GatewayStep struct {
	gateway PaymentGateway
	audit   auditor
}

// NewGatewayStep is the constructor for GatewayStep. audit may be nil, in
// which case calls are not recorded.
func NewGatewayStep(gateway PaymentGateway, audit AuditLog) *GatewayStep {
	return &GatewayStep{
		gateway: gateway,
		audit:   auditor{log: audit, logger: slog.Default()},
	}
}

func (s *GatewayStep) Name() string { return "Gateway_Submit_Step" }

func (s *GatewayStep) Execute(ctx context.Context, req domain.OrderRequest) (domain.APIResponse, error) {
	s.audit.record(ctx, req, sagalog.ActionGatewaySubmit)
	resp, err := s.gateway.Submit(ctx, req)
	if err != nil {
		return domain.APIResponse{}, fmt.Errorf("payment gateway error: %w", err)
	}
	return resp, nil
}

func (s *GatewayStep) Compensate(ctx context.Context, req domain.OrderRequest) error {
	s.audit.record(ctx, req, sagalog.ActionGatewayCancel)
	if err := s.gateway.Cancel(ctx, req); err != nil {
		return fmt.Errorf("payment gateway cancel error: %w", err)
	}
	return nil
}

// --- PaymentStep ---

type PaymentStep struct {
	store PaymentStore
}

func NewPaymentStep(store PaymentStore) *PaymentStep {
	return &PaymentStep{store: store}
}

func (s *PaymentStep) Name() string { return "Persist_Payment_Step" }

func (s *PaymentStep) Execute(ctx context.Context, payment domain.Payment) error {
	if _, err := s.store.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to persist payment for order %s: %w", payment.OrderID, err)
	}
	return nil
}

// --- NotifyStep ---

type NotifyStep struct {
	notifier Notifier
	audit    auditor
}

func NewNotifyStep(notifier Notifier, audit AuditLog) *NotifyStep {
	return &NotifyStep{
		notifier: notifier,
		audit:    auditor{log: audit, logger: slog.Default()},
	}
}

func (s *NotifyStep) Name() string { return "Notify_Step" }

func (s *NotifyStep) Execute(ctx context.Context, req domain.OrderRequest) error {
	s.audit.record(ctx, req, sagalog.ActionNotify)
	if err := s.notifier.Notify(ctx, req); err != nil {
		return fmt.Errorf("notifier error: %w", err)
	}
	return nil
}

// facade delegates each saga action to its step collaborator.
type facade struct {
	order    *OrderStep
	gateway  *GatewayStep
	payment  *PaymentStep
	notifier *NotifyStep
}

// NewFacade builds an orchestrator that coordinates four independent step
// collaborators. The audited steps are copied, so the caller's values can be
// shared between facades.
func NewFacade(order *OrderStep, gateway *GatewayStep, payment *PaymentStep, notify *NotifyStep, opts ...Option) *Orchestrator {
	o := newOrchestrator(VariantFacade, opts...)

	gw := *gateway
	gw.audit.logger = o.logger
	n := *notify
	n.audit.logger = o.logger

	o.p = &facade{order: order, gateway: &gw, payment: payment, notifier: &n}
	return o
}

func (f *facade) persistOrder(ctx context.Context, order domain.Order) error {
	return f.order.Execute(ctx, order)
}

func (f *facade) rollbackOrder(ctx context.Context, orderID string) error {
	return f.order.Compensate(ctx, orderID)
}

func (f *facade) submit(ctx context.Context, req domain.OrderRequest) (domain.APIResponse, error) {
	return f.gateway.Execute(ctx, req)
}

func (f *facade) cancel(ctx context.Context, req domain.OrderRequest) error {
	return f.gateway.Compensate(ctx, req)
}

func (f *facade) persistPayment(ctx context.Context, payment domain.Payment) error {
	return f.payment.Execute(ctx, payment)
}

func (f *facade) notify(ctx context.Context, req domain.OrderRequest) error {
	return f.notifier.Execute(ctx, req)
}
