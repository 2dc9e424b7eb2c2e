package ordersvc

import (
	"context"
	"errors"

	"github.com/corray333/storefront-order/internal/dal/interfaces/icustomerrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/models/orderitem"
	"go.opentelemetry.io/otel"
)

// Page bounds a list query. Zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) check() error {
	if p.Limit < 0 || p.Offset < 0 {
		return validationError("limit and offset must not be negative")
	}

	return nil
}

// ListOrders returns the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, a actor.Actor, page Page) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ListOrders")
	defer span.End()

	if a.CustomerID == "" {
		return nil, ErrForbidden
	}

	return s.list(ctx, &order.QueryOrdersModel{
		CustomerIds: []string{a.CustomerID},
		Limit:       page.Limit,
		Offset:      page.Offset,
	}, page)
}

// ListAllOrders returns every order, newest first.
func (s *OrderService) ListAllOrders(ctx context.Context, a actor.Actor, page Page) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ListAllOrders")
	defer span.End()

	if !a.Admin {
		return nil, ErrForbidden
	}

	return s.list(ctx, &order.QueryOrdersModel{
		Limit:  page.Limit,
		Offset: page.Offset,
	}, page)
}

func (s *OrderService) list(ctx context.Context, query *order.QueryOrdersModel, page Page) ([]order.Order, error) {
	if err := page.check(); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.Query(ctx, query)
	if err != nil {
		return nil, internalError("query orders", err)
	}

	return orders, nil
}

// GetOrder returns an owned order with its line items. Orders of other
// customers are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, a actor.Actor, id string) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.GetOrder")
	defer span.End()

	if a.CustomerID == "" {
		return order.Order{}, ErrForbidden
	}
	if err := checkOrderID(id); err != nil {
		return order.Order{}, err
	}

	return s.loadWithItems(ctx, order.Scope{ID: id, CustomerID: a.CustomerID})
}

// GetOrderDetails returns any order with its line items and the customer email.
func (s *OrderService) GetOrderDetails(ctx context.Context, a actor.Actor, id string) (order.Details, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.GetOrderDetails")
	defer span.End()

	if !a.Admin {
		return order.Details{}, ErrForbidden
	}
	if err := checkOrderID(id); err != nil {
		return order.Details{}, err
	}

	o, err := s.loadWithItems(ctx, order.Scope{ID: id})
	if err != nil {
		return order.Details{}, err
	}

	details := order.Details{Order: o}
	if s.customerRepo == nil {
		return details, nil
	}

	c, err := s.customerRepo.FindByID(ctx, o.CustomerID)
	switch {
	case errors.Is(err, icustomerrepo.ErrCustomerNotFound):
	case err != nil:
		return order.Details{}, internalError("load customer", err)
	case c.Email != "":
		details.CustomerEmail = &c.Email
	}

	return details, nil
}

// GetLastOrder returns the caller's most recent order with its line items.
func (s *OrderService) GetLastOrder(ctx context.Context, a actor.Actor) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.GetLastOrder")
	defer span.End()

	if a.CustomerID == "" {
		return order.Order{}, ErrForbidden
	}

	orders, err := s.orderRepo.Query(ctx, &order.QueryOrdersModel{
		CustomerIds: []string{a.CustomerID},
		Limit:       1,
	})
	if err != nil {
		return order.Order{}, internalError("query orders", err)
	}
	if len(orders) == 0 {
		return order.Order{}, ErrNoOrders
	}

	last := orders[0]
	if last.Items, err = s.resolveItems(ctx, last); err != nil {
		return order.Order{}, err
	}

	return last, nil
}

func (s *OrderService) loadWithItems(ctx context.Context, scope order.Scope) (order.Order, error) {
	o, err := s.orderRepo.FindOne(ctx, scope)
	if errors.Is(err, iorderrepo.ErrOrderNotFound) {
		return order.Order{}, ErrNotFound
	}
	if err != nil {
		return order.Order{}, internalError("load order", err)
	}

	if o.Items, err = s.resolveItems(ctx, o); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

// resolveItems fetches the referenced line items in the order they are listed.
// Dangling references are skipped.
func (s *OrderService) resolveItems(ctx context.Context, o order.Order) ([]orderitem.OrderItem, error) {
	if len(o.ItemIDs) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	items, err := s.orderItemRepo.Query(ctx, &orderitem.QueryOrderItemsModel{Ids: o.ItemIDs})
	if err != nil {
		return nil, internalError("query order items", err)
	}

	byID := make(map[string]orderitem.OrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	resolved := make([]orderitem.OrderItem, 0, len(o.ItemIDs))
	for _, id := range o.ItemIDs {
		if item, ok := byID[id]; ok {
			resolved = append(resolved, item)
		}
	}

	return resolved, nil
}
