package consumer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/iinboxrepo"
	"github.com/corray333/storefront-order/internal/dal/rabbitmq"
	"github.com/corray333/storefront-order/internal/service/models/inbox"
	"github.com/corray333/storefront-order/internal/service/models/outbox"
	"github.com/corray333/storefront-order/internal/service/services/auditsvc"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// service represents the service layer interface.
type service interface {
	ProcessMessage(ctx context.Context, payload []byte) error
}

// Consumer reads order events from RabbitMQ with bounded concurrency.
type Consumer struct {
	client      *rabbitmq.Client
	service     service
	inboxRepo   iinboxrepo.IInboxRepository
	queue       amqp.Queue
	concurrency int
	now         func() time.Time
	stop        chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
}

// NewConsumer creates a new Consumer on the queue named by rabbitmq.queue.
func NewConsumer(client *rabbitmq.Client, service service, inboxRepo iinboxrepo.IInboxRepository) *Consumer {
	concurrency := viper.GetInt("rabbitmq.concurrency")
	if concurrency <= 0 {
		concurrency = 50
	}

	return &Consumer{
		client:      client,
		service:     service,
		inboxRepo:   inboxRepo,
		queue:       client.MustDeclareConfiguredQueue(),
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run starts consuming messages from RabbitMQ and blocks until Shutdown,
// ctx cancellation or a closed delivery channel.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "order-audit-consumer"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    c.queue.Name,
		Consumer: consumerTag,
	})
	if err != nil {
		close(c.done)

		return err
	}

	slog.Info("Consumer started", "queue", c.queue.Name, "consumer_tag", consumerTag)

	c.loop(ctx, msgs)

	return nil
}

func (c *Consumer) loop(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer close(c.done)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	defer func() {
		if err := g.Wait(); err != nil {
			slog.Error("Error processing messages", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Consumer context done")

			return
		case <-c.stop:
			slog.Info("Stopping consumer")

			return
		case msg, ok := <-msgs:
			if !ok {
				slog.Info("Message channel closed")

				return
			}

			g.Go(func() error {
				c.processMessage(gctx, msg)

				return nil
			})
		}
	}
}

// processMessage handles a single delivery. Malformed events are dropped,
// other failures are parked in the inbox so the delivery can be acked.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	err := c.service.ProcessMessage(ctx, msg.Body)
	switch {
	case err == nil:
	case errors.Is(err, auditsvc.ErrMalformedEvent):
		slog.ErrorContext(ctx, "Dropping malformed message", "message_id", msg.MessageId, "error", err)
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	default:
		slog.WarnContext(ctx, "Failed to process message, parking in inbox", "message_id", msg.MessageId, "error", err)
		if err := c.park(ctx, msg, err); err != nil {
			slog.ErrorContext(ctx, "Failed to park message in inbox, requeueing", "error", err)
			if err := msg.Nack(false, true); err != nil {
				slog.Error("Failed to nack message", "error", err)
			}

			return
		}
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)
	}
}

func (c *Consumer) park(ctx context.Context, msg amqp.Delivery, cause error) error {
	now := c.now()
	contentType := msg.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	return c.inboxRepo.Insert(ctx, inbox.InboxMessage{
		MessageID:   msg.MessageId,
		QueueName:   c.queue.Name,
		RoutingKey:  msg.RoutingKey,
		Payload:     msg.Body,
		ContentType: contentType,
		MaxRetries:  outbox.DefaultMaxRetries,
		LastError:   cause.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: outbox.NextRetryAt(now, 0),
		DeliveryTag: msg.DeliveryTag,
	})
}

// Shutdown stops the consumer and waits for in-flight messages.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	c.stopOnce.Do(func() { close(c.stop) })

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
