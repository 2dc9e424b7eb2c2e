package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/corray333/storefront-order/internal/service/models/event"
	"github.com/corray333/storefront-order/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	err       error
	published []amqp.Publishing
	keys      []string
}

func (p *fakePublisher) Publish(_, routingKey string, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.published = append(p.published, msg)

	return nil
}

type fakeOutbox struct {
	err      error
	messages []outbox.OutboxMessage
}

func (o *fakeOutbox) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	if o.err != nil {
		return o.err
	}
	o.messages = append(o.messages, msg)

	return nil
}

func (o *fakeOutbox) GetPending(context.Context, time.Time, int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (o *fakeOutbox) Delete(context.Context, int64) error { return nil }

func (o *fakeOutbox) Reschedule(context.Context, outbox.OutboxMessage) error { return nil }

func testEvent() event.OrderEvent {
	return event.OrderEvent{
		MessageID:     "6b0f6a4e-2a63-4a39-9f0e-0f7f3c7f3e11",
		Type:          event.TypeOrderPaid,
		OrderID:       "01HZX3V9K6Q4Y8W2N5T7R1M0AB",
		CustomerID:    "c-1",
		Status:        "pending",
		PaymentStatus: "paid",
		Actor:         "customer:alice",
		OccurredAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublishSendsEventToQueue(t *testing.T) {
	pub := &fakePublisher{}
	box := &fakeOutbox{}
	repo := newAuditRepository(pub, "storefront.order.events", box)

	require.NoError(t, repo.Publish(context.Background(), testEvent()))

	require.Len(t, pub.published, 1)
	assert.Equal(t, "storefront.order.events", pub.keys[0])
	assert.Equal(t, "order.paid", pub.published[0].Type)
	assert.Equal(t, testEvent().MessageID, pub.published[0].MessageId)

	var got event.OrderEvent
	require.NoError(t, json.Unmarshal(pub.published[0].Body, &got))
	assert.Equal(t, testEvent(), got)
	assert.Empty(t, box.messages)
}

func TestPublishFailureGoesToOutbox(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pub := &fakePublisher{err: errors.New("channel closed")}
	box := &fakeOutbox{}
	repo := newAuditRepository(pub, "storefront.order.events", box)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Publish(context.Background(), testEvent()))

	require.Len(t, box.messages, 1)
	msg := box.messages[0]
	assert.Equal(t, testEvent().MessageID, msg.MessageID)
	assert.Equal(t, "order.paid", msg.EventType)
	assert.Equal(t, "storefront.order.events", msg.RoutingKey)
	assert.Equal(t, "channel closed", msg.LastError)
	assert.Equal(t, outbox.DefaultMaxRetries, msg.MaxRetries)
	assert.Equal(t, now.Add(30*time.Second), msg.NextRetryAt)
}

func TestPublishFailsWhenOutboxFails(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	box := &fakeOutbox{err: errors.New("db down")}
	repo := newAuditRepository(pub, "q", box)

	err := repo.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
