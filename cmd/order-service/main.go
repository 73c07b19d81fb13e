package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/adapters/grpc/client"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/adapters/sqlstore"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/httpx"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/config"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/interceptors"
	"github.com/jcmexdev/order-fulfillment-saga/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.LoadOrderService()
	if err != nil {
		telemetry.InitLogger("order-service").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("order service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.OrderService, logger *slog.Logger) error {
	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlstore.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	gatewayConn, err := dial(cfg.GatewayAddr)
	if err != nil {
		return err
	}
	defer gatewayConn.Close()

	notifierConn, err := dial(cfg.NotifierAddr)
	if err != nil {
		return err
	}
	defer notifierConn.Close()

	gateway := client.NewPaymentGateway(gatewayConn)
	notifier := client.NewNotifier(notifierConn)

	opts := []coordinator.Option{
		coordinator.WithLogger(logger),
		coordinator.WithGatewayTimeout(cfg.GatewayTimeout),
		coordinator.WithNotifyTimeout(cfg.NotifyTimeout),
	}
	facade := coordinator.NewFacade(
		coordinator.NewOrderStep(store.Orders()),
		coordinator.NewGatewayStep(gateway, store.TransactionLogs()),
		coordinator.NewPaymentStep(store.Payments()),
		coordinator.NewNotifyStep(notifier, store.TransactionLogs()),
		opts...,
	)
	script := coordinator.NewTransactionScript(coordinator.Dependencies{
		Orders:   store.Orders(),
		Payments: store.Payments(),
		Audit:    store.TransactionLogs(),
		Gateway:  gateway,
		Notifier: notifier,
	}, opts...)

	handler := httpx.NewHandler(facade, script, httpx.Readers{
		Orders:   store.Orders(),
		Payments: store.Payments(),
		Audit:    store.TransactionLogs(),
	}, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("order service HTTP running", "addr", cfg.HTTPAddr, "driver", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		for _, o := range []*coordinator.Orchestrator{facade, script} {
			if drainErr := o.Drain(shutdownCtx); drainErr != nil {
				logger.Warn("notifications still in flight", "variant", o.Variant(), "error", drainErr)
			}
		}
		return err
	})
	return g.Wait()
}

func dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(interceptors.PropagateMetadataClientInterceptor()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}
