package orderstatus

import (
	"context"
	"net/http"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/transport/http/apierror"
	"github.com/corray333/storefront-order/pkg/http/middleware/auth"
	"github.com/corray333/storefront-order/pkg/http/response"
	"github.com/go-chi/chi/v5"
)

// transitionFunc is one of the service lifecycle operations.
type transitionFunc func(ctx context.Context, a actor.Actor, id string) (order.Order, error)

type service interface {
	Confirm(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	Cancel(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	Pay(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	PayAsAdmin(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	Complete(ctx context.Context, a actor.Actor, id string) (order.Order, error)
}

type transitionResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   order.Order `json:"order"`
}

func handle(w http.ResponseWriter, r *http.Request, fn transitionFunc, message string) {
	a, ok := auth.ActorFromContext(r.Context())
	if !ok {
		apierror.Unauthorized(w, r)

		return
	}

	o, err := fn(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	response.WriteJSON(w, http.StatusOK, transitionResponse{
		Success: true,
		Message: message,
		Order:   o,
	})
}

// Pay handles POST /api/order/pay/{id}.
func Pay(w http.ResponseWriter, r *http.Request, service service) {
	handle(w, r, service.Pay, "Payment successful")
}

// Complete handles PUT /api/order/complete/{id}.
func Complete(w http.ResponseWriter, r *http.Request, service service) {
	handle(w, r, service.Complete, "Order marked as completed")
}

// Confirm handles PUT /api/order/admin/confirm/{id}.
func Confirm(w http.ResponseWriter, r *http.Request, service service) {
	handle(w, r, service.Confirm, "Order confirmed")
}

// Cancel handles PUT /api/order/admin/cancel/{id}.
func Cancel(w http.ResponseWriter, r *http.Request, service service) {
	handle(w, r, service.Cancel, "Order cancelled")
}

// PayAsAdmin handles POST /api/order/admin/pay/{id}.
func PayAsAdmin(w http.ResponseWriter, r *http.Request, service service) {
	handle(w, r, service.PayAsAdmin, "Payment successful")
}
