package auditsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/storefront-order/internal/dal/interfaces/iauditlogrepo"
	"github.com/corray333/storefront-order/internal/service/models/auditlog"
	"github.com/corray333/storefront-order/internal/service/models/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrMalformedEvent marks payloads that will never process successfully.
var ErrMalformedEvent = errors.New("malformed order event")

// AuditService turns order events into audit rows.
type AuditService struct {
	auditLogRepo iauditlogrepo.IAuditLogRepository
	now          func() time.Time
}

// option is a function that configures the AuditService.
type option func(*AuditService)

// MustNewAuditService creates a new AuditService. It panics without a repository.
func MustNewAuditService(opts ...option) *AuditService {
	s := &AuditService{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.auditLogRepo == nil {
		panic("audit log repository is required")
	}

	return s
}

// WithAuditLogRepository sets the audit log repository for the AuditService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditLogRepository(repo iauditlogrepo.IAuditLogRepository) option {
	return func(s *AuditService) {
		s.auditLogRepo = repo
	}
}

// WithClock overrides the clock used for created_at.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *AuditService) {
		s.now = now
	}
}

// ProcessMessage decodes an event payload and records it.
// Redelivered events are recognised by message id and skipped.
func (s *AuditService) ProcessMessage(ctx context.Context, payload []byte) error {
	ctx, span := otel.Tracer("auditsvc").Start(ctx, "AuditService.ProcessMessage")
	defer span.End()

	evt, err := decode(payload)
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.String("order.id", evt.OrderID),
		attribute.String("event.type", string(evt.Type)),
	)

	inserted, err := s.auditLogRepo.Save(ctx, s.toAuditLog(evt))
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to save audit log: %w", err)
	}

	if !inserted {
		slog.InfoContext(ctx, "Duplicate order event skipped", "message_id", evt.MessageID)

		return nil
	}

	slog.InfoContext(ctx, "Order event recorded",
		"message_id", evt.MessageID,
		"type", evt.Type,
		"order_id", evt.OrderID,
	)

	return nil
}

func decode(payload []byte) (event.OrderEvent, error) {
	var evt event.OrderEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return event.OrderEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if evt.MessageID == "" || evt.OrderID == "" || evt.Type == "" {
		return event.OrderEvent{}, fmt.Errorf("%w: message_id, order_id and type are required", ErrMalformedEvent)
	}

	return evt, nil
}

func (s *AuditService) toAuditLog(evt event.OrderEvent) auditlog.AuditLogOrder {
	occurredAt := evt.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	return auditlog.AuditLogOrder{
		MessageID:     evt.MessageID,
		EventType:     string(evt.Type),
		OrderID:       evt.OrderID,
		CustomerID:    evt.CustomerID,
		OrderStatus:   evt.Status,
		PaymentStatus: evt.PaymentStatus,
		Actor:         evt.Actor,
		OccurredAt:    occurredAt,
		CreatedAt:     s.now(),
	}
}
