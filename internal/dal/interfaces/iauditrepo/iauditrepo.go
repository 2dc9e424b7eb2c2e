package iauditrepo

import (
	"context"

	"github.com/corray333/storefront-order/internal/service/models/event"
)

// IAuditorRepository publishes order events for the audit trail.
type IAuditorRepository interface {
	Publish(ctx context.Context, evt event.OrderEvent) error
}
