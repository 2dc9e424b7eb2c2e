package iauditlogrepo

import (
	"context"

	"github.com/corray333/storefront-order/internal/service/models/auditlog"
)

// IAuditLogRepository stores audit log rows on the consumer side.
type IAuditLogRepository interface {
	// Save stores the entry. It reports false when an entry with the same
	// message id already exists.
	Save(ctx context.Context, entry auditlog.AuditLogOrder) (bool, error)
}
