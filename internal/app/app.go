package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/storefront-order/internal/dal/postgres"
	"github.com/corray333/storefront-order/internal/dal/rabbitmq"
	"github.com/corray333/storefront-order/internal/dal/redis"
	auditrepo "github.com/corray333/storefront-order/internal/dal/repositories/audit"
	outboxrepo "github.com/corray333/storefront-order/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/storefront-order/internal/dal/uploads"
	"github.com/corray333/storefront-order/internal/otel"
	"github.com/corray333/storefront-order/internal/service/services/ordersvc"
	grpctransport "github.com/corray333/storefront-order/internal/transport/grpc"
	httptransport "github.com/corray333/storefront-order/internal/transport/http"
	outboxworker "github.com/corray333/storefront-order/internal/worker/outbox"
	"github.com/corray333/storefront-order/pkg/http/middleware/auth"
	"github.com/spf13/viper"
)

// App represents the order service application.
type App struct {
	orderSvc       *ordersvc.OrderService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	outboxWorker   *outboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	redisClient    *redis.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("order-svc")
	postgresClient := postgres.MustNewClient()
	redisClient := redis.NewClientFromConfig()
	rabbitMqClient := rabbitmq.MustNewClient()

	outboxRepository := outboxrepo.NewOutboxRepository(postgresClient.Pool())
	auditor := auditrepo.NewAuditRabbitMQRepository(rabbitMqClient, outboxRepository)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithRedisClient(redisClient),
		ordersvc.WithAuditor(auditor),
		ordersvc.WithIdempotencyTTL(viper.GetDuration("orders.idempotency_ttl")),
		ordersvc.WithAtomicCreate(viper.GetBool("orders.atomic_create")),
		ordersvc.WithStrictTransitions(viper.GetBool("orders.strict_transitions")),
	)

	verifier := auth.MustNewVerifierFromEnv()

	httpTransport := httptransport.NewHTTPTransport(orderSvc, verifier, uploads.NewDiskStoreFromConfig())
	httpTransport.RegisterRoutes()

	grpcTransport := grpctransport.NewGRPCTransport(orderSvc, verifier)

	return &App{
		orderSvc:       orderSvc,
		httpTransport:  httpTransport,
		grpcTransport:  grpcTransport,
		outboxWorker:   outboxworker.NewWorker(outboxRepository, rabbitMqClient),
		rabbitMqClient: rabbitMqClient,
		redisClient:    redisClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")

	a.gracefulShutdown()
	cancel()
}

// gracefulShutdown stops the transports first, then the worker, then closes
// the broker, cache and database connections and flushes traces.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped gracefully")

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Error("Redis connection close error", "error", err)
		} else {
			slog.Info("Redis connection closed gracefully")
		}
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	slog.Info("Application shutdown complete")
}
