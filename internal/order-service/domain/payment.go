package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentRejected PaymentStatus = "REJECTED"
	PaymentPending  PaymentStatus = "PENDING"
)

// ParsePaymentStatus maps a gateway status onto the payment vocabulary.
// Matching is case-insensitive; anything unrecognised is PENDING.
func ParsePaymentStatus(s string) PaymentStatus {
	switch PaymentStatus(strings.ToUpper(s)) {
	case PaymentApproved:
		return PaymentApproved
	case PaymentRejected:
		return PaymentRejected
	default:
		return PaymentPending
	}
}

// APIResponse is what the payment gateway returns for an accepted submit.
type APIResponse struct {
	ReferenceID string
	Status      string
	Timestamp   time.Time
}

type Payment struct {
	ID                int64
	OrderID           string
	Amount            decimal.Decimal
	ExternalReference string
	Status            PaymentStatus
	ProcessedAt       time.Time
}

func NewPayment(req OrderRequest, resp APIResponse, now time.Time) Payment {
	return Payment{
		OrderID:           req.OrderID,
		Amount:            req.Amount,
		ExternalReference: resp.ReferenceID,
		Status:            ParsePaymentStatus(resp.Status),
		ProcessedAt:       now.UTC(),
	}
}
