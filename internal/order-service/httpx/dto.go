package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

type OrderRequestDTO struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	CustomerEmail string          `json:"customerEmail"`
}

func (d OrderRequestDTO) toDomain() domain.OrderRequest {
	return domain.OrderRequest{
		OrderID:       d.OrderID,
		Amount:        d.Amount,
		CustomerEmail: d.CustomerEmail,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type OrderResponse struct {
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

type PaymentResponse struct {
	ExternalReference string          `json:"externalReference"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	ProcessedAt       time.Time       `json:"processedAt"`
}

type AuditEntryResponse struct {
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderDetailsResponse is the body of GET /orders/{orderId}. Payment is
// absent when the run never got that far or was rolled back.
type OrderDetailsResponse struct {
	Order      OrderResponse        `json:"order"`
	Payment    *PaymentResponse     `json:"payment,omitempty"`
	AuditTrail []AuditEntryResponse `json:"auditTrail"`
}

func mapOrderDetails(o domain.Order, p *domain.Payment, entries []sagalog.TransactionLogEntry) OrderDetailsResponse {
	out := OrderDetailsResponse{
		Order: OrderResponse{
			OrderID:   o.OrderID,
			Amount:    o.Amount,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt,
		},
		AuditTrail: make([]AuditEntryResponse, len(entries)),
	}
	if p != nil {
		out.Payment = &PaymentResponse{
			ExternalReference: p.ExternalReference,
			Amount:            p.Amount,
			Status:            string(p.Status),
			ProcessedAt:       p.ProcessedAt,
		}
	}
	for i, e := range entries {
		out.AuditTrail[i] = AuditEntryResponse{
			Action:    string(e.Action),
			Details:   e.Details,
			TraceID:   e.TraceID,
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}
