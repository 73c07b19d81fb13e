package notificationservice

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/simulate"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

// Server is a dummy notifier that fails at the simulator's failure rate.
type Server struct {
	sim    *simulate.Simulator
	logger *slog.Logger
}

var _ wire.NotifierServer = (*Server)(nil)

func NewServer(sim *simulate.Simulator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sim: sim, logger: logger}
}

func (s *Server) Notify(ctx context.Context, req *wire.OrderMessage) error {
	log := s.logger.With("order_id", req.OrderID, "request_id", interceptors.RequestIDFromContext(ctx))

	if err := s.sim.Wait(ctx); err != nil {
		return status.FromContextError(err).Err()
	}
	if s.sim.ShouldFail() {
		log.WarnContext(ctx, "[Notification] sending failed")
		return status.Error(codes.Unavailable, "Notification sending failed")
	}

	log.InfoContext(ctx, "[Notification] notification sent", "customer_email", req.CustomerEmail)
	return nil
}
