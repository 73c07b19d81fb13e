package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/adapters/grpc/mappers"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

type Notifier struct {
	client *wire.NotifierClient
}

func NewNotifier(cc grpc.ClientConnInterface) *Notifier {
	return &Notifier{client: wire.NewNotifierClient(cc)}
}

func (n *Notifier) Notify(ctx context.Context, req domain.OrderRequest) error {
	if err := n.client.Notify(ctx, mappers.OrderRequestToWire(req)); err != nil {
		return fmt.Errorf("remote: notify order %s: %w", req.OrderID, err)
	}
	return nil
}
