package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRequest is returned when an OrderRequest fails validation.
var ErrInvalidRequest = errors.New("invalid order request")

// OrderRequest is the immutable input of a fulfillment run.
type OrderRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	CustomerEmail string
}

// Validate checks the preconditions that must hold before anything is persisted.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return fmt.Errorf("%w: order id is required", ErrInvalidRequest)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidRequest, r.Amount)
	}
	return nil
}

type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Order is the durable record of an accepted request. ID is the store's
// surrogate key and is zero until the order has been saved.
type Order struct {
	ID        int64
	OrderID   string
	Amount    decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
}

func NewOrder(req OrderRequest, now time.Time) Order {
	return Order{
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Status:    StatusCreated,
		CreatedAt: now.UTC(),
	}
}
