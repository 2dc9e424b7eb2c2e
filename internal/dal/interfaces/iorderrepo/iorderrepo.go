package iorderrepo

import (
	"context"
	"errors"

	"github.com/corray333/storefront-order/internal/service/models/order"
)

// ErrOrderNotFound is returned when no order matches the scope (and guard, for updates).
var ErrOrderNotFound = errors.New("order not found")

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	SetItems(ctx context.Context, orderID string, itemIDs []string) (order.Order, error)
	FindOne(ctx context.Context, scope order.Scope) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	// Update applies the patch in a single conditional statement and returns the
	// updated row, or ErrOrderNotFound when scope or guard did not match.
	Update(ctx context.Context, model order.UpdateModel) (order.Order, error)
}
