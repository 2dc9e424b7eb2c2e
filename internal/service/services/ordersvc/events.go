package ordersvc

import (
	"context"
	"log/slog"

	"github.com/corray333/storefront-order/internal/service/models/event"
	"github.com/corray333/storefront-order/internal/service/models/order"
)

// publish emits the event for a completed mutation. Failures are logged only,
// the mutation itself has already succeeded.
func (s *OrderService) publish(ctx context.Context, typ event.Type, o order.Order, by string) {
	if s.auditor == nil {
		return
	}

	evt := event.OrderEvent{
		MessageID:     s.newMessageID(),
		Type:          typ,
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Actor:         by,
		OccurredAt:    s.now().UTC(),
	}

	if err := s.auditor.Publish(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish order event",
			"type", typ,
			"order_id", o.ID,
			"error", err,
		)
	}
}
