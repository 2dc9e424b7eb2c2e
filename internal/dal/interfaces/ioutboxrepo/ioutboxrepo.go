package ioutboxrepo

import (
	"context"
	"time"

	"github.com/corray333/storefront-order/internal/service/models/outbox"
)

// IOutboxRepository keeps order events that still have to reach the broker.
type IOutboxRepository interface {
	Insert(ctx context.Context, msg outbox.OutboxMessage) error

	// GetPending returns messages due at now that have retries left, oldest due first.
	GetPending(ctx context.Context, now time.Time, limit int) ([]outbox.OutboxMessage, error)

	Delete(ctx context.Context, id int64) error

	// Reschedule stores RetryCount, LastError and NextRetryAt of msg.
	Reschedule(ctx context.Context, msg outbox.OutboxMessage) error
}
