package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	notificationservice "github.com/jcmexdev/order-fulfillment-saga/internal/notification-service/app"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/config"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/simulate"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/telemetry"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/wire"
)

func main() {
	cfg, err := config.LoadSimulator(config.Simulator{
		ServiceName: "notification-service",
		Port:        "9093",
		FailureRate: 0.5,
	})
	logger := telemetry.InitLogger(cfg.ServiceName)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen", "addr", addr, "error", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor(logger)),
	)
	sim := simulate.New(simulate.Behavior{MinDelay: cfg.MinDelay, MaxDelay: cfg.MaxDelay, FailureRate: cfg.FailureRate}, nil)
	wire.RegisterNotifierServer(grpcServer, notificationservice.NewServer(sim, logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("notification service gRPC running", "addr", addr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		grpcServer.GracefulStop()
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("failed to serve", "error", err)
		os.Exit(1)
	}
}
