package auditlog

import "time"

// AuditLogOrder represents an audit log entry for order operations.
type AuditLogOrder struct {
	ID            int64     `json:"id"             db:"id"`
	MessageID     string    `json:"message_id"     db:"message_id"`
	EventType     string    `json:"event_type"     db:"event_type"`
	OrderID       string    `json:"order_id"       db:"order_id"`
	CustomerID    string    `json:"customer_id"    db:"customer_id"`
	OrderStatus   string    `json:"order_status"   db:"order_status"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	Actor         string    `json:"actor"          db:"actor"`
	OccurredAt    time.Time `json:"occurred_at"    db:"occurred_at"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}
