package iinboxrepo

import (
	"context"
	"time"

	"github.com/corray333/storefront-order/internal/service/models/inbox"
)

// IInboxRepository parks consumed events whose processing failed.
type IInboxRepository interface {
	Insert(ctx context.Context, msg inbox.InboxMessage) error

	// GetPending returns messages due at now that have retries left, oldest due first.
	GetPending(ctx context.Context, now time.Time, limit int) ([]inbox.InboxMessage, error)

	Delete(ctx context.Context, id int64) error

	// Reschedule stores RetryCount, LastError and NextRetryAt of msg.
	Reschedule(ctx context.Context, msg inbox.InboxMessage) error
}
