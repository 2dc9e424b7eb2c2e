package inbox

import "time"

// InboxMessage represents a consumed message whose processing failed and awaits retry.
type InboxMessage struct {
	ID          int64     `db:"id"`
	MessageID   string    `db:"message_id"`
	QueueName   string    `db:"queue_name"`
	RoutingKey  string    `db:"routing_key"`
	Payload     []byte    `db:"payload"`
	ContentType string    `db:"content_type"`
	RetryCount  int       `db:"retry_count"`
	MaxRetries  int       `db:"max_retries"`
	LastError   string    `db:"last_error"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	NextRetryAt time.Time `db:"next_retry_at"`
	DeliveryTag uint64    `db:"delivery_tag"`
}
