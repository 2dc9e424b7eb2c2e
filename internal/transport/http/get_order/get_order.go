package getorder

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

type service interface {
	GetOrder(ctx context.Context, a actor.Actor, id string) (order.Order, error)
	GetLastOrder(ctx context.Context, a actor.Actor) (order.Order, error)
	GetOrderDetails(ctx context.Context, a actor.Actor, id string) (order.Details, error)
}

type orderResponse struct {
	Success bool        `json:"success"`
	Order   order.Order `json:"order"`
}

type detailsResponse struct {
	Success       bool        `json:"success"`
	Order         order.Order `json:"order"`
	CustomerEmail *string     `json:"customer_email"`
}

// GetOrder handles GET /api/order/{id}.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	a, ok := auth.ActorFromContext(r.Context())
	if !ok {
		apierror.Unauthorized(w, r)

		return
	}

	o, err := service.GetOrder(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	response.WriteJSON(w, http.StatusOK, orderResponse{Success: true, Order: o})
}

// GetLastOrder handles GET /api/order/last.
func GetLastOrder(w http.ResponseWriter, r *http.Request, service service) {
	a, ok := auth.ActorFromContext(r.Context())
	if !ok {
		apierror.Unauthorized(w, r)

		return
	}

	o, err := service.GetLastOrder(r.Context(), a)
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	response.WriteJSON(w, http.StatusOK, orderResponse{Success: true, Order: o})
}

// GetOrderDetails handles GET /api/order/admin/{id}.
func GetOrderDetails(w http.ResponseWriter, r *http.Request, service service) {
	a, ok := auth.ActorFromContext(r.Context())
	if !ok {
		apierror.Unauthorized(w, r)

		return
	}

	details, err := service.GetOrderDetails(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	response.WriteJSON(w, http.StatusOK, detailsResponse{
		Success:       true,
		Order:         details.Order,
		CustomerEmail: details.CustomerEmail,
	})
}
