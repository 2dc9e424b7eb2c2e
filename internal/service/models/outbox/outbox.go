package outbox

import (
	"time"
)

// OutboxMessage is an order event that could not be published to RabbitMQ
// and is kept for the outbox worker to retry.
type OutboxMessage struct {
	ID           int64
	MessageID    string
	EventType    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// DefaultMaxRetries bounds redelivery attempts of a single message.
const DefaultMaxRetries = 5

// NextRetryAt returns the retry schedule shared by the outbox and inbox workers:
// 30s * 2^retryCount after now.
func NextRetryAt(now time.Time, retryCount int) time.Time {
	backoff := time.Duration(30*(1<<retryCount)) * time.Second

	return now.Add(backoff)
}
