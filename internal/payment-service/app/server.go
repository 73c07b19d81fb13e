package paymentservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/adapters/grpc/mappers"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/cache"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/simulate"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

const (
	StatusApproved = "APPROVED"

	DefaultIdempotencyTTL = 24 * time.Hour
)

// Server is a dummy payment gateway. It approves submits after a random
// delay, or fails them at the simulator's failure rate.
//
// With a cache configured, Submit is idempotent per order: a repeated submit
// returns the first approval, and a submit after Cancel is refused.
type Server struct {
	sim    *simulate.Simulator
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
	newRef func() string
}

var _ wire.PaymentGatewayServer = (*Server)(nil)

type Option func(*Server)

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithReferenceGenerator(gen func() string) Option {
	return func(s *Server) { s.newRef = gen }
}

func NewServer(sim *simulate.Simulator, opts ...Option) *Server {
	s := &Server{
		sim:    sim,
		ttl:    DefaultIdempotencyTTL,
		logger: slog.Default(),
		now:    time.Now,
		newRef: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type cachedPayment struct {
	ReferenceID string    `json:"reference_id"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *Server) Submit(ctx context.Context, req *wire.OrderMessage) (*wire.PaymentResponse, error) {
	order, err := mappers.OrderRequestFromWire(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := order.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	log := s.logger.With("order_id", order.OrderID, "request_id", interceptors.RequestIDFromContext(ctx))

	if s.wasCancelled(ctx, order.OrderID) {
		log.WarnContext(ctx, "[Payment] submit refused, order was cancelled")
		return nil, status.Errorf(codes.FailedPrecondition, "payment for order %s was cancelled", order.OrderID)
	}
	if resp, ok := s.cached(ctx, order.OrderID); ok {
		log.InfoContext(ctx, "[Payment] replaying approved payment", "reference_id", resp.ReferenceID)
		return resp, nil
	}

	log.InfoContext(ctx, "[Payment] processing payment", "amount", order.Amount.String())
	if err := s.sim.Wait(ctx); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if s.sim.ShouldFail() {
		log.WarnContext(ctx, "[Payment] processing failed")
		return nil, status.Error(codes.Unavailable, "External API processing failed")
	}

	resp := &wire.PaymentResponse{
		ReferenceID: s.newRef(),
		Status:      StatusApproved,
		Timestamp:   s.now().UTC(),
	}
	s.remember(ctx, order.OrderID, resp)

	log.InfoContext(ctx, "[Payment] payment approved", "reference_id", resp.ReferenceID)
	return resp, nil
}

func (s *Server) Cancel(ctx context.Context, req *wire.OrderMessage) error {
	log := s.logger.With("order_id", req.OrderID, "request_id", interceptors.RequestIDFromContext(ctx))

	if err := s.sim.Wait(ctx); err != nil {
		return status.FromContextError(err).Err()
	}

	if s.cache != nil {
		first, err := s.cache.SetNX(ctx, s.cache.GenerateKey("cancel", req.OrderID), s.now().UTC().Format(time.RFC3339Nano), s.ttl)
		if err != nil {
			log.ErrorContext(ctx, "[Payment] failed to record cancellation", "error", err)
		} else if !first {
			log.InfoContext(ctx, "[Payment] cancellation already recorded")
			return nil
		}
	}

	log.InfoContext(ctx, "[Payment] payment cancelled")
	return nil
}

func (s *Server) wasCancelled(ctx context.Context, orderID string) bool {
	if s.cache == nil {
		return false
	}
	v, err := s.cache.Get(ctx, s.cache.GenerateKey("cancel", orderID))
	if err != nil {
		s.logger.ErrorContext(ctx, "[Payment] cancel lookup failed", "order_id", orderID, "error", err)
		return false
	}
	return v != ""
}

func (s *Server) cached(ctx context.Context, orderID string) (*wire.PaymentResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.GenerateKey("submit", orderID))
	if err != nil {
		s.logger.ErrorContext(ctx, "[Payment] idempotency lookup failed", "order_id", orderID, "error", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var p cachedPayment
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.ErrorContext(ctx, "[Payment] corrupt idempotency entry", "order_id", orderID, "error", err)
		return nil, false
	}
	return &wire.PaymentResponse{ReferenceID: p.ReferenceID, Status: p.Status, Timestamp: p.Timestamp}, true
}

func (s *Server) remember(ctx context.Context, orderID string, resp *wire.PaymentResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedPayment{ReferenceID: resp.ReferenceID, Status: resp.Status, Timestamp: resp.Timestamp})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey("submit", orderID), raw, s.ttl); err != nil {
		s.logger.ErrorContext(ctx, "[Payment] failed to store idempotency entry", "order_id", orderID, "error", err)
	}
}
