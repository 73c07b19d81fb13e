package paymentservice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/cache"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/simulate"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

func sequentialRefs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ref-%d", n)
	}
}

func newServer(t *testing.T, failureRate float64, withCache bool) *Server {
	t.Helper()
	opts := []Option{
		WithReferenceGenerator(sequentialRefs()),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }),
	}
	if withCache {
		mr := miniredis.RunT(t)
		c := cache.NewRedisCache(mr.Addr(), "payment")
		t.Cleanup(func() { _ = c.Close() })
		opts = append(opts, WithCache(c, time.Hour))
	}
	return NewServer(simulate.New(simulate.Behavior{FailureRate: failureRate}, nil), opts...)
}

func order(id string) *wire.OrderMessage {
	return &wire.OrderMessage{OrderID: id, Amount: "100.00", CustomerEmail: "a@b.c"}
}

func TestSubmitApproves(t *testing.T) {
	s := newServer(t, 0, false)

	resp, err := s.Submit(context.Background(), order("ORD-001"))
	require.NoError(t, err)
	assert.Equal(t, "ref-1", resp.ReferenceID)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), resp.Timestamp)
}

func TestSubmitFailsAtFailureRate(t *testing.T) {
	s := newServer(t, 1, false)

	_, err := s.Submit(context.Background(), order("ORD-001"))
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, "External API processing failed", status.Convert(err).Message())
}

func TestSubmitRejectsBadInput(t *testing.T) {
	s := newServer(t, 0, false)

	_, err := s.Submit(context.Background(), &wire.OrderMessage{OrderID: "ORD-001", Amount: "-1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Submit(context.Background(), &wire.OrderMessage{OrderID: "ORD-001", Amount: "abc"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSubmitIsIdempotentPerOrder(t *testing.T) {
	s := newServer(t, 0, true)
	ctx := context.Background()

	first, err := s.Submit(ctx, order("ORD-001"))
	require.NoError(t, err)
	again, err := s.Submit(ctx, order("ORD-001"))
	require.NoError(t, err)
	other, err := s.Submit(ctx, order("ORD-002"))
	require.NoError(t, err)

	assert.Equal(t, first.ReferenceID, again.ReferenceID)
	assert.Equal(t, first.Timestamp, again.Timestamp)
	assert.NotEqual(t, first.ReferenceID, other.ReferenceID)
}

func TestCancelBlocksLaterSubmit(t *testing.T) {
	s := newServer(t, 0, true)
	ctx := context.Background()

	require.NoError(t, s.Cancel(ctx, order("ORD-001")))
	require.NoError(t, s.Cancel(ctx, order("ORD-001")))

	_, err := s.Submit(ctx, order("ORD-001"))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestSubmitHonoursDeadline(t *testing.T) {
	s := NewServer(simulate.New(simulate.Behavior{MinDelay: time.Hour, MaxDelay: time.Hour}, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Submit(ctx, order("ORD-001"))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
}
