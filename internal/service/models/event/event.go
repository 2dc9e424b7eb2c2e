package event

import "time"

// Type names an order lifecycle event.
type Type string

const (
	TypeOrderCreated   Type = "order.created"
	TypeOrderConfirmed Type = "order.confirmed"
	TypeOrderCancelled Type = "order.cancelled"
	TypeOrderPaid      Type = "order.paid"
	TypeOrderCompleted Type = "order.completed"
)

// OrderEvent is published to RabbitMQ after every successful order mutation.
// MessageID is the deduplication key on the consumer side.
type OrderEvent struct {
	MessageID     string    `json:"message_id"`
	Type          Type      `json:"type"`
	OrderID       string    `json:"order_id"`
	CustomerID    string    `json:"customer_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}
