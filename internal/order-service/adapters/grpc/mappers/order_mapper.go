package mappers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

func OrderRequestToWire(req domain.OrderRequest) *wire.OrderMessage {
	return &wire.OrderMessage{
		OrderID:       req.OrderID,
		Amount:        req.Amount.String(),
		CustomerEmail: req.CustomerEmail,
	}
}

func OrderRequestFromWire(msg *wire.OrderMessage) (domain.OrderRequest, error) {
	if msg == nil {
		return domain.OrderRequest{}, fmt.Errorf("mappers: nil order message")
	}
	amount := decimal.Zero
	if msg.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(msg.Amount); err != nil {
			return domain.OrderRequest{}, fmt.Errorf("mappers: amount %q: %w", msg.Amount, err)
		}
	}
	return domain.OrderRequest{
		OrderID:       msg.OrderID,
		Amount:        amount,
		CustomerEmail: msg.CustomerEmail,
	}, nil
}

func APIResponseFromWire(resp *wire.PaymentResponse) domain.APIResponse {
	if resp == nil {
		return domain.APIResponse{}
	}
	return domain.APIResponse{
		ReferenceID: resp.ReferenceID,
		Status:      resp.Status,
		Timestamp:   resp.Timestamp,
	}
}
