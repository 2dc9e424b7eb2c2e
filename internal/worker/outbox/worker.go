package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/ioutboxrepo"
	outboxmodel "github.com/corray333/storefront-order/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// publisher is satisfied by *rabbitmq.Client.
type publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Worker republishes order events parked in the outbox table.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	publisher    publisher
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
	stopCh       chan struct{}
}

// NewWorker creates a new outbox worker configured from rabbitmq.outbox.*.
func NewWorker(outboxRepo ioutboxrepo.IOutboxRepository, publisher publisher) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		publisher:    publisher,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		now:          func() time.Time { return time.Now().UTC() },
		stopCh:       make(chan struct{}),
	}
}

// Start polls the outbox until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPending(ctx, w.now(), w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		err := w.publisher.Publish(msg.ExchangeName, msg.RoutingKey, amqp.Publishing{
			MessageId:    msg.MessageID,
			Type:         msg.EventType,
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.CreatedAt,
			Body:         msg.Payload,
		})
		if err != nil {
			w.reschedule(ctx, msg, err)

			continue
		}

		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"error", err,
			)

			continue
		}

		slog.Info("Message successfully published and removed from outbox",
			"outbox_id", msg.ID,
			"message_id", msg.MessageID,
		)
	}
}

func (w *Worker) reschedule(ctx context.Context, msg outboxmodel.OutboxMessage, cause error) {
	msg.RetryCount++
	msg.LastError = cause.Error()
	msg.NextRetryAt = outboxmodel.NextRetryAt(w.now(), msg.RetryCount)

	if msg.RetryCount >= msg.MaxRetries {
		slog.Error("Outbox message exhausted its retries",
			"outbox_id", msg.ID,
			"message_id", msg.MessageID,
			"error", cause,
		)
	} else {
		slog.Warn("Failed to publish message from outbox, will retry",
			"outbox_id", msg.ID,
			"retry_count", msg.RetryCount,
			"next_retry", msg.NextRetryAt,
			"error", cause,
		)
	}

	if err := w.outboxRepo.Reschedule(ctx, msg); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
