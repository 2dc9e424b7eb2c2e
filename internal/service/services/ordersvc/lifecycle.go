package ordersvc

import (
	"context"
	"errors"

	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/event"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// transition is one guarded update. onGuard decides what a guard hit means
// for the order that is still there.
type transition struct {
	name    string
	event   event.Type
	actor   string
	update  order.UpdateModel
	onGuard func(current order.Order) (order.Order, error)
}

func rejectWith(err error) func(order.Order) (order.Order, error) {
	return func(order.Order) (order.Order, error) {
		return order.Order{}, err
	}
}

func unchanged(current order.Order) (order.Order, error) {
	return current, nil
}

// apply runs the update as a single conditional statement. When nothing matched,
// a scoped read tells a missing (or foreign) order apart from a guard hit.
func (s *OrderService) apply(ctx context.Context, t transition) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service."+t.name)
	defer span.End()
	span.SetAttributes(attribute.String("order_id", t.update.Scope.ID))

	if err := checkOrderID(t.update.Scope.ID); err != nil {
		return order.Order{}, err
	}

	updated, err := s.orderRepo.Update(ctx, t.update)
	if err == nil {
		s.publish(ctx, t.event, updated, t.actor)

		return updated, nil
	}
	if !errors.Is(err, iorderrepo.ErrOrderNotFound) {
		return order.Order{}, internalError("update order", err)
	}

	current, err := s.orderRepo.FindOne(ctx, t.update.Scope)
	if errors.Is(err, iorderrepo.ErrOrderNotFound) {
		return order.Order{}, ErrNotFound
	}
	if err != nil {
		return order.Order{}, internalError("load order", err)
	}

	return t.onGuard(current)
}

// Confirm marks the order confirmed by an admin and starts delivery.
func (s *OrderService) Confirm(ctx context.Context, a actor.Actor, id string) (order.Order, error) {
	if !a.Admin {
		return order.Order{}, ErrForbidden
	}

	now := s.now().UTC()
	status := order.StatusConfirmed

	onGuard := unchanged
	if s.strictTransitions {
		onGuard = rejectWith(ErrAlreadyConfirmed)
	}

	return s.apply(ctx, transition{
		name:  "Confirm",
		event: event.TypeOrderConfirmed,
		actor: a.AdminTag(),
		update: order.UpdateModel{
			Scope: order.Scope{ID: id},
			Guard: order.Guard{Status: order.StatusConfirmed},
			Patch: order.Patch{
				Status:            &status,
				ConfirmedBy:       &a.Username,
				DeliveryStartTime: &now,
				UpdatedAt:         now,
			},
		},
		onGuard: onGuard,
	})
}

// Cancel marks the order cancelled by an admin. Payment state is left as is.
func (s *OrderService) Cancel(ctx context.Context, a actor.Actor, id string) (order.Order, error) {
	if !a.Admin {
		return order.Order{}, ErrForbidden
	}

	now := s.now().UTC()
	status := order.StatusCancelled

	onGuard := unchanged
	if s.strictTransitions {
		onGuard = rejectWith(ErrAlreadyCancelled)
	}

	return s.apply(ctx, transition{
		name:  "Cancel",
		event: event.TypeOrderCancelled,
		actor: a.AdminTag(),
		update: order.UpdateModel{
			Scope: order.Scope{ID: id},
			Guard: order.Guard{Status: order.StatusCancelled},
			Patch: order.Patch{
				Status:      &status,
				CancelledBy: &a.Username,
				UpdatedAt:   now,
			},
		},
		onGuard: onGuard,
	})
}

// Pay records a payment by the owning customer.
func (s *OrderService) Pay(ctx context.Context, a actor.Actor, id string) (order.Order, error) {
	if a.CustomerID == "" {
		return order.Order{}, ErrForbidden
	}

	return s.pay(ctx, order.Scope{ID: id, CustomerID: a.CustomerID}, a.CustomerTag())
}

// PayAsAdmin records a payment on any order.
func (s *OrderService) PayAsAdmin(ctx context.Context, a actor.Actor, id string) (order.Order, error) {
	if !a.Admin {
		return order.Order{}, ErrForbidden
	}

	return s.pay(ctx, order.Scope{ID: id}, a.AdminTag())
}

func (s *OrderService) pay(ctx context.Context, scope order.Scope, payBy string) (order.Order, error) {
	now := s.now().UTC()
	paid := order.PaymentStatusPaid

	return s.apply(ctx, transition{
		name:  "Pay",
		event: event.TypeOrderPaid,
		actor: payBy,
		update: order.UpdateModel{
			Scope: scope,
			Guard: order.Guard{PaymentStatus: order.PaymentStatusPaid},
			Patch: order.Patch{
				PaymentStatus: &paid,
				PaymentDate:   &now,
				PayBy:         &payBy,
				UpdatedAt:     now,
			},
		},
		onGuard: rejectWith(ErrAlreadyPaid),
	})
}

// Complete marks an owned order completed.
func (s *OrderService) Complete(ctx context.Context, a actor.Actor, id string) (order.Order, error) {
	if a.CustomerID == "" {
		return order.Order{}, ErrForbidden
	}

	now := s.now().UTC()
	status := order.StatusCompleted
	completed := true

	return s.apply(ctx, transition{
		name:  "Complete",
		event: event.TypeOrderCompleted,
		actor: a.CustomerTag(),
		update: order.UpdateModel{
			Scope: order.Scope{ID: id, CustomerID: a.CustomerID},
			Guard: order.Guard{Completed: true},
			Patch: order.Patch{
				Status:    &status,
				Completed: &completed,
				UpdatedAt: now,
			},
		},
		onGuard: rejectWith(ErrAlreadyCompleted),
	})
}
