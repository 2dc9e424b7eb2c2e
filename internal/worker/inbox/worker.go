package inbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/iinboxrepo"
	inboxmodel "github.com/corray333/storefront-order/internal/service/models/inbox"
	"github.com/corray333/storefront-order/internal/service/models/outbox"
	"github.com/corray333/storefront-order/internal/service/services/auditsvc"
	"github.com/spf13/viper"
)

// service represents the service layer interface.
type service interface {
	ProcessMessage(ctx context.Context, payload []byte) error
}

// Worker retries order events parked in the inbox table.
type Worker struct {
	inboxRepo    iinboxrepo.IInboxRepository
	service      service
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
	stopCh       chan struct{}
}

// NewWorker creates a new inbox worker configured from inbox.*.
func NewWorker(inboxRepo iinboxrepo.IInboxRepository, service service) *Worker {
	pollIntervalSeconds := viper.GetInt("inbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("inbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		inboxRepo:    inboxRepo,
		service:      service,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		now:          func() time.Time { return time.Now().UTC() },
		stopCh:       make(chan struct{}),
	}
}

// Start polls the inbox until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Inbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Inbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Inbox worker stopped")

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
	messages, err := w.inboxRepo.GetPending(ctx, w.now(), w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from inbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing inbox messages", "count", len(messages))

	for _, msg := range messages {
		err := w.service.ProcessMessage(ctx, msg.Payload)
		if err != nil {
			w.retryOrDrop(ctx, msg, err)

			continue
		}

		if err := w.inboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from inbox after successful processing",
				"inbox_id", msg.ID,
				"error", err,
			)

			continue
		}

		slog.Info("Message successfully processed and removed from inbox",
			"inbox_id", msg.ID,
			"message_id", msg.MessageID,
		)
	}
}

// retryOrDrop reschedules a failed message. Malformed payloads are deleted
// once their retries are used up.
func (w *Worker) retryOrDrop(ctx context.Context, msg inboxmodel.InboxMessage, cause error) {
	msg.RetryCount++

	if errors.Is(cause, auditsvc.ErrMalformedEvent) && msg.RetryCount >= msg.MaxRetries {
		slog.Warn("Max retries reached for malformed message, deleting",
			"inbox_id", msg.ID,
			"message_id", msg.MessageID,
		)
		if err := w.inboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete message from inbox", "inbox_id", msg.ID, "error", err)
		}

		return
	}

	msg.LastError = cause.Error()
	msg.NextRetryAt = outbox.NextRetryAt(w.now(), msg.RetryCount)

	slog.Warn("Failed to process message from inbox, will retry",
		"inbox_id", msg.ID,
		"retry_count", msg.RetryCount,
		"next_retry", msg.NextRetryAt,
		"error", cause,
	)

	if err := w.inboxRepo.Reschedule(ctx, msg); err != nil {
		slog.Error("Failed to update retry information", "inbox_id", msg.ID, "error", err)
	}
}
