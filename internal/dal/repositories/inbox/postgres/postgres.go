package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/storefront-order/internal/service/models/inbox"
	"github.com/jmoiron/sqlx"
)

var inboxColumns = []string{
	"id",
	"message_id",
	"queue_name",
	"routing_key",
	"payload",
	"content_type",
	"retry_count",
	"max_retries",
	"last_error",
	"created_at",
	"updated_at",
	"next_retry_at",
	"delivery_tag",
}

// InboxRepository implements the inbox repository for PostgreSQL.
type InboxRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewInboxRepository creates a new inbox repository.
func NewInboxRepository(db *sqlx.DB) *InboxRepository {
	return &InboxRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert adds a new message to the inbox.
func (r *InboxRepository) Insert(ctx context.Context, msg inbox.InboxMessage) error {
	query, args, err := r.sb.Insert("inbox").
		Columns(inboxColumns[1:]...).
		Values(
			msg.MessageID,
			msg.QueueName,
			msg.RoutingKey,
			msg.Payload,
			msg.ContentType,
			msg.RetryCount,
			msg.MaxRetries,
			msg.LastError,
			msg.CreatedAt,
			msg.UpdatedAt,
			msg.NextRetryAt,
			int64(msg.DeliveryTag),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert inbox message: %w", err)
	}

	return nil
}

// GetPending retrieves messages that are due at now and have retries left.
func (r *InboxRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]inbox.InboxMessage, error) {
	query, args, err := r.sb.Select(inboxColumns...).
		From("inbox").
		Where(sq.LtOrEq{"next_retry_at": now}).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("next_retry_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var messages []inbox.InboxMessage
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query inbox messages: %w", err)
	}

	return messages, nil
}

// Delete removes a message from the inbox after successful processing.
func (r *InboxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("inbox").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete inbox message: %w", err)
	}

	return nil
}

// Reschedule stores the retry bookkeeping of msg.
func (r *InboxRepository) Reschedule(ctx context.Context, msg inbox.InboxMessage) error {
	query, args, err := r.sb.Update("inbox").
		Set("retry_count", msg.RetryCount).
		Set("last_error", msg.LastError).
		Set("next_retry_at", msg.NextRetryAt).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": msg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update inbox message: %w", err)
	}

	return nil
}
