package client

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

var (
	_ coordinator.PaymentGateway = (*PaymentGateway)(nil)
	_ coordinator.Notifier       = (*Notifier)(nil)
)

type gatewayStub struct {
	mu        sync.Mutex
	requestID string
	submitErr error
	cancelled []string
}

func (s *gatewayStub) Submit(ctx context.Context, req *wire.OrderMessage) (*wire.PaymentResponse, error) {
	s.mu.Lock()
	s.requestID = interceptors.RequestIDFromContext(ctx)
	s.mu.Unlock()
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &wire.PaymentResponse{ReferenceID: "ref-" + req.OrderID, Status: "APPROVED", Timestamp: time.Unix(1700000000, 0).UTC()}, nil
}

func (s *gatewayStub) Cancel(_ context.Context, req *wire.OrderMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, req.OrderID)
	return nil
}

type notifierStub struct {
	err error
}

func (s *notifierStub) Notify(context.Context, *wire.OrderMessage) error { return s.err }

func startServer(t *testing.T, gw wire.PaymentGatewayServer, n wire.NotifierServer) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.UnaryInterceptor(interceptors.TraceServerInterceptor(nil)))
	wire.RegisterPaymentGatewayServer(srv, gw)
	wire.RegisterNotifierServer(srv, n)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(interceptors.PropagateMetadataClientInterceptor()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func request() domain.OrderRequest {
	return domain.OrderRequest{OrderID: "ORD-001", Amount: decimal.RequireFromString("100.00"), CustomerEmail: "a@b.c"}
}

func TestPaymentGatewaySubmit(t *testing.T) {
	stub := &gatewayStub{}
	gw := NewPaymentGateway(startServer(t, stub, &notifierStub{}))

	ctx := interceptors.WithRequestMetadata(context.Background(), "req-42", "")
	resp, err := gw.Submit(ctx, request())
	require.NoError(t, err)
	assert.Equal(t, "ref-ORD-001", resp.ReferenceID)
	assert.Equal(t, "APPROVED", resp.Status)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), resp.Timestamp)
	assert.Equal(t, "req-42", stub.requestID)

	require.NoError(t, gw.Cancel(ctx, request()))
	assert.Equal(t, []string{"ORD-001"}, stub.cancelled)
}

func TestPaymentGatewaySubmitKeepsStatusCode(t *testing.T) {
	stub := &gatewayStub{submitErr: status.Error(codes.Unavailable, "External API processing failed")}
	gw := NewPaymentGateway(startServer(t, stub, &notifierStub{}))

	_, err := gw.Submit(context.Background(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote: submit order ORD-001")
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestPaymentGatewayHonoursDeadline(t *testing.T) {
	gw := NewPaymentGateway(startServer(t, &slowGateway{}, &notifierStub{}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := gw.Submit(ctx, request())
	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}

func TestNotifier(t *testing.T) {
	stub := &notifierStub{}
	n := NewNotifier(startServer(t, &gatewayStub{}, stub))
	require.NoError(t, n.Notify(context.Background(), request()))

	stub.err = status.Error(codes.Unavailable, "Notification sending failed")
	err := n.Notify(context.Background(), request())
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

type slowGateway struct{ gatewayStub }

func (s *slowGateway) Submit(ctx context.Context, _ *wire.OrderMessage) (*wire.PaymentResponse, error) {
	<-ctx.Done()
	return nil, status.FromContextError(ctx.Err()).Err()
}
