package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	paymentservice "github.com/jcmexdev/order-fulfillment-saga/internal/payment-service/app"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/cache"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/config"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/simulate"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/telemetry"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

func main() {
	cfg, err := config.LoadSimulator(config.Simulator{
		ServiceName:    "payment-service",
		Port:           "9091",
		RedisAddr:      "redis-cache:6379",
		MinDelay:       500 * time.Millisecond,
		MaxDelay:       1500 * time.Millisecond,
		FailureRate:    0.5,
		IdempotencyTTL: paymentservice.DefaultIdempotencyTTL,
	})
	if err != nil {
		telemetry.InitLogger("payment-service").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("payment service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Simulator, logger *slog.Logger) error {
	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	opts := []paymentservice.Option{paymentservice.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, "payment")
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, idempotency lookups will fail open", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		opts = append(opts, paymentservice.WithCache(redisCache, cfg.IdempotencyTTL))
	}

	sim := simulate.New(simulate.Behavior{
		MinDelay:    cfg.MinDelay,
		MaxDelay:    cfg.MaxDelay,
		FailureRate: cfg.FailureRate,
	}, nil)

	addr := ":" + cfg.Port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor(logger)),
	)
	wire.RegisterPaymentGatewayServer(grpcServer, paymentservice.NewServer(sim, opts...))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("payment gateway gRPC running", "addr", addr, "failure_rate", cfg.FailureRate)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		grpcServer.GracefulStop()
		return nil
	})
	return g.Wait()
}
