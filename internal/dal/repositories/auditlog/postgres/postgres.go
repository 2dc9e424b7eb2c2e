package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/storefront-order/internal/service/models/auditlog"
	"github.com/jmoiron/sqlx"
)

// AuditLogRepository writes order audit rows.
type AuditLogRepository struct {
	db sqlx.ExecerContext
	sb sq.StatementBuilderType
}

// NewAuditLogRepository creates a new audit log repository.
func NewAuditLogRepository(db sqlx.ExecerContext) *AuditLogRepository {
	return &AuditLogRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Save inserts the entry unless one with the same message id exists.
// The bool result reports whether a row was written.
func (r *AuditLogRepository) Save(ctx context.Context, entry auditlog.AuditLogOrder) (bool, error) {
	query, args, err := buildInsert(r.sb, entry)
	if err != nil {
		return false, fmt.Errorf("failed to build audit log insert query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert audit log: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}

func buildInsert(sb sq.StatementBuilderType, entry auditlog.AuditLogOrder) (string, []any, error) {
	return sb.Insert("order_audit").
		Columns(
			"message_id",
			"event_type",
			"order_id",
			"customer_id",
			"order_status",
			"payment_status",
			"actor",
			"occurred_at",
			"created_at",
		).
		Values(
			entry.MessageID,
			entry.EventType,
			entry.OrderID,
			entry.CustomerID,
			entry.OrderStatus,
			entry.PaymentStatus,
			entry.Actor,
			entry.OccurredAt,
			entry.CreatedAt,
		).
		Suffix("ON CONFLICT (message_id) DO NOTHING").
		ToSql()
}
