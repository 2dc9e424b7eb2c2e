package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/services/ordersvc"
	"github.com/corray333/storefront-order/internal/transport/http/apierror"
	"github.com/corray333/storefront-order/pkg/http/middleware/auth"
	"github.com/corray333/storefront-order/pkg/http/response"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type service interface {
	ListOrders(ctx context.Context, a actor.Actor, page ordersvc.Page) ([]order.Order, error)
	ListAllOrders(ctx context.Context, a actor.Actor, page ordersvc.Page) ([]order.Order, error)
}

var (
	decoder  = newDecoder()
	validate = validator.New()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

type queryOrdersRequest struct {
	Limit  int `schema:"limit"  validate:"gte=0,lte=1000"`
	Offset int `schema:"offset" validate:"gte=0"`
}

func (q *queryOrdersRequest) Validate() error {
	return validate.Struct(q)
}

func (q *queryOrdersRequest) ToModel() ordersvc.Page {
	return ordersvc.Page{
		Limit:  q.Limit,
		Offset: q.Offset,
	}
}

type customerOrdersResponse struct {
	Success bool          `json:"success"`
	Orders  []order.Order `json:"orders"`
}

type adminOrdersResponse struct {
	Success bool          `json:"success"`
	List    []order.Order `json:"list"`
}

func parse(w http.ResponseWriter, r *http.Request) (actor.Actor, ordersvc.Page, bool) {
	a, ok := auth.ActorFromContext(r.Context())
	if !ok {
		apierror.Unauthorized(w, r)

		return actor.Actor{}, ordersvc.Page{}, false
	}

	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		slog.WarnContext(r.Context(), "Error decoding request", "error", err)
		apierror.BadRequest(w, r, "invalid query parameters")

		return actor.Actor{}, ordersvc.Page{}, false
	}

	if err := query.Validate(); err != nil {
		apierror.BadRequest(w, r, "limit must be within 0..1000 and offset must not be negative")

		return actor.Actor{}, ordersvc.Page{}, false
	}

	return a, query.ToModel(), true
}

// ListOrders handles GET /api/order for the calling customer.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	a, page, ok := parse(w, r)
	if !ok {
		return
	}

	orders, err := service.ListOrders(r.Context(), a, page)
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	response.WriteJSON(w, http.StatusOK, customerOrdersResponse{Success: true, Orders: orders})
}

// ListAllOrders handles GET /api/order/admin.
func ListAllOrders(w http.ResponseWriter, r *http.Request, service service) {
	a, page, ok := parse(w, r)
	if !ok {
		return
	}

	orders, err := service.ListAllOrders(r.Context(), a, page)
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	response.WriteJSON(w, http.StatusOK, adminOrdersResponse{Success: true, List: orders})
}
