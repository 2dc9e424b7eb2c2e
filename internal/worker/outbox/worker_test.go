package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	outboxmodel "github.com/corray333/storefront-order/internal/service/models/outbox"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOutbox struct {
	mu          sync.Mutex
	pending     []outboxmodel.OutboxMessage
	deleted     []int64
	rescheduled []outboxmodel.OutboxMessage
}

func (m *memOutbox) Insert(_ context.Context, msg outboxmodel.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, msg)

	return nil
}

func (m *memOutbox) GetPending(_ context.Context, now time.Time, limit int) ([]outboxmodel.OutboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []outboxmodel.OutboxMessage
	for _, msg := range m.pending {
		if !msg.NextRetryAt.After(now) && msg.RetryCount < msg.MaxRetries && len(due) < limit {
			due = append(due, msg)
		}
	}

	return due, nil
}

func (m *memOutbox) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)

	return nil
}

func (m *memOutbox) Reschedule(_ context.Context, msg outboxmodel.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rescheduled = append(m.rescheduled, msg)

	return nil
}

type fakePublisher struct {
	fail      map[string]bool
	published []amqp.Publishing
}

func (p *fakePublisher) Publish(_, _ string, msg amqp.Publishing) error {
	if p.fail[msg.MessageId] {
		return errors.New("channel closed")
	}
	p.published = append(p.published, msg)

	return nil
}

func TestProcessMessages(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &memOutbox{pending: []outboxmodel.OutboxMessage{
		{ID: 1, MessageID: "m-1", RoutingKey: "order-events", Payload: []byte(`{}`), MaxRetries: 5, NextRetryAt: now},
		{ID: 2, MessageID: "m-2", RoutingKey: "order-events", Payload: []byte(`{}`), MaxRetries: 5, RetryCount: 1, NextRetryAt: now},
		{ID: 3, MessageID: "m-3", RoutingKey: "order-events", MaxRetries: 5, NextRetryAt: now.Add(time.Minute)},
	}}
	pub := &fakePublisher{fail: map[string]bool{"m-2": true}}

	w := NewWorker(repo, pub)
	w.now = func() time.Time { return now }
	w.processMessages(context.Background())

	require.Len(t, pub.published, 1)
	assert.Equal(t, "m-1", pub.published[0].MessageId)
	assert.Equal(t, uint8(amqp.Persistent), pub.published[0].DeliveryMode)
	assert.Equal(t, []int64{1}, repo.deleted)

	require.Len(t, repo.rescheduled, 1)
	got := repo.rescheduled[0]
	assert.Equal(t, int64(2), got.ID)
	assert.Equal(t, 2, got.RetryCount)
	assert.Equal(t, "channel closed", got.LastError)
	assert.Equal(t, now.Add(120*time.Second), got.NextRetryAt)
}

func TestStartStops(t *testing.T) {
	w := NewWorker(&memOutbox{}, &fakePublisher{})
	w.pollInterval = time.Millisecond

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
