// Package client adapts the gRPC stubs in wire to the ports the
// orchestrator depends on.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/adapters/grpc/mappers"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

// PaymentGateway calls the remote payment gateway over gRPC.
type PaymentGateway struct {
	client *wire.PaymentGatewayClient
}

func NewPaymentGateway(cc grpc.ClientConnInterface) *PaymentGateway {
	return &PaymentGateway{client: wire.NewPaymentGatewayClient(cc)}
}

func (g *PaymentGateway) Submit(ctx context.Context, req domain.OrderRequest) (domain.APIResponse, error) {
	resp, err := g.client.Submit(ctx, mappers.OrderRequestToWire(req))
	if err != nil {
		return domain.APIResponse{}, fmt.Errorf("remote: submit order %s: %w", req.OrderID, err)
	}
	return mappers.APIResponseFromWire(resp), nil
}

func (g *PaymentGateway) Cancel(ctx context.Context, req domain.OrderRequest) error {
	if err := g.client.Cancel(ctx, mappers.OrderRequestToWire(req)); err != nil {
		return fmt.Errorf("remote: cancel order %s: %w", req.OrderID, err)
	}
	return nil
}
