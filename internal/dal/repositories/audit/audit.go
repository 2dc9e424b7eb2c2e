package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/storefront-order/internal/dal/rabbitmq"
	"github.com/corray333/storefront-order/internal/service/models/event"
	"github.com/corray333/storefront-order/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
)

const contentType = "application/json"

type publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// AuditRabbitMQRepository publishes order events and falls back to the outbox
// when the broker refuses them.
type AuditRabbitMQRepository struct {
	publisher  publisher
	queueName  string
	outboxRepo ioutboxrepo.IOutboxRepository
	now        func() time.Time
}

// NewAuditRabbitMQRepository declares the configured queue and returns the publisher.
func NewAuditRabbitMQRepository(
	client *rabbitmq.Client,
	outboxRepo ioutboxrepo.IOutboxRepository,
) *AuditRabbitMQRepository {
	queue := client.MustDeclareConfiguredQueue()

	return newAuditRepository(client, queue.Name, outboxRepo)
}

func newAuditRepository(
	pub publisher,
	queueName string,
	outboxRepo ioutboxrepo.IOutboxRepository,
) *AuditRabbitMQRepository {
	return &AuditRabbitMQRepository{
		publisher:  pub,
		queueName:  queueName,
		outboxRepo: outboxRepo,
		now:        time.Now,
	}
}

// Publish sends evt to the queue. A failed publish is stored in the outbox and
// is not an error; only a failed outbox insert is.
func (r *AuditRabbitMQRepository) Publish(ctx context.Context, evt event.OrderEvent) error {
	ctx, span := otel.Tracer("audit").Start(ctx, "Audit.Publish")
	defer span.End()

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = r.publisher.Publish("", r.queueName, amqp.Publishing{
		ContentType:  contentType,
		MessageId:    evt.MessageID,
		Type:         string(evt.Type),
		Timestamp:    evt.OccurredAt,
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err == nil {
		return nil
	}

	slog.WarnContext(ctx, "Failed to publish order event, storing in outbox",
		"message_id", evt.MessageID,
		"order_id", evt.OrderID,
		"error", err,
	)

	now := r.now().UTC()
	msg := outbox.OutboxMessage{
		MessageID:   evt.MessageID,
		EventType:   string(evt.Type),
		RoutingKey:  r.queueName,
		Payload:     payload,
		ContentType: contentType,
		MaxRetries:  outbox.DefaultMaxRetries,
		LastError:   err.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: outbox.NextRetryAt(now, 0),
	}

	if err := r.outboxRepo.Insert(ctx, msg); err != nil {
		return fmt.Errorf("failed to store order event in outbox: %w", err)
	}

	return nil
}
