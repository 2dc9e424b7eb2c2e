package auditapp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/storefront-order/internal/dal/auditdb"
	"github.com/corray333/storefront-order/internal/dal/rabbitmq"
	auditlogrepo "github.com/corray333/storefront-order/internal/dal/repositories/auditlog/postgres"
	inboxrepo "github.com/corray333/storefront-order/internal/dal/repositories/inbox/postgres"
	"github.com/corray333/storefront-order/internal/otel"
	"github.com/corray333/storefront-order/internal/service/services/auditsvc"
	"github.com/corray333/storefront-order/internal/transport/consumer"
	inboxworker "github.com/corray333/storefront-order/internal/worker/inbox"
)

// App represents the audit consumer application.
type App struct {
	consumerTransp *consumer.Consumer
	inboxWorker    *inboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	auditDBClient  *auditdb.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel("order-audit-consumer")
	rabbitMqClient := rabbitmq.MustNewClient()
	auditDBClient := auditdb.MustNewClient()

	auditLogRepository := auditlogrepo.NewAuditLogRepository(auditDBClient.DB())
	inboxRepository := inboxrepo.NewInboxRepository(auditDBClient.DB())

	auditSvc := auditsvc.MustNewAuditService(
		auditsvc.WithAuditLogRepository(auditLogRepository),
	)

	return &App{
		consumerTransp: consumer.NewConsumer(rabbitMqClient, auditSvc, inboxRepository),
		inboxWorker:    inboxworker.NewWorker(inboxRepository, auditSvc),
		rabbitMqClient: rabbitMqClient,
		auditDBClient:  auditDBClient,
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
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting inbox worker")
		a.inboxWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")

	a.gracefulShutdown()
	cancel()
}

// gracefulShutdown stops the inbox worker and the consumer, then closes
// RabbitMQ, PostgreSQL and OpenTelemetry.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a.inboxWorker.Stop()
	slog.Info("Inbox worker stopped gracefully")

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if err := a.auditDBClient.Close(); err != nil {
		slog.Error("Database connection close error", "error", err)
	} else {
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
