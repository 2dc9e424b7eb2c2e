package createorder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/services/ordersvc"
	"github.com/corray333/storefront-order/internal/transport/http/apierror"
	"github.com/corray333/storefront-order/pkg/http/middleware/auth"
	"github.com/corray333/storefront-order/pkg/http/response"
	"github.com/shopspring/decimal"
)

const (
	// IdempotencyKeyHeader lets a client retry a create without duplicating the order.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayHeader marks a response served from an earlier request with the same key.
	ReplayHeader = "X-Idempotent-Replay"

	maxMultipartMemory = 10 << 20
	maxJSONBodyBytes   = 1 << 20
	imageField         = "image"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, a actor.Actor, cmd ordersvc.CreateOrderCommand) (order.Order, bool, error)
}

// uploader stores the optional payment proof image.
type uploader interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID string           `json:"product_id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Items           []itemInCreateOrderRequest `json:"items"`
	ShippingAddress string                     `json:"shipping_address"`
	PaymentMethod   string                     `json:"payment_method"`

	image *multipart.FileHeader
}

func (r *createOrderRequest) toCommand(idempotencyKey string) ordersvc.CreateOrderCommand {
	items := make([]ordersvc.CreateOrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, ordersvc.CreateOrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return ordersvc.CreateOrderCommand{
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		PaymentMethod:   r.PaymentMethod,
		IdempotencyKey:  idempotencyKey,
	}
}

type createOrderResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   order.Order `json:"order"`
}

// CreateOrder handles POST /api/order with a JSON body or a multipart form
// whose "items" field holds the JSON array and "image" the optional proof.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service, uploader uploader) {
	a, ok := auth.ActorFromContext(r.Context())
	if !ok {
		apierror.Unauthorized(w, r)

		return
	}

	req, err := decode(w, r)
	if err != nil {
		slog.WarnContext(r.Context(), "Error decoding create order request", "error", err)
		apierror.BadRequest(w, r, err.Error())

		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	created, replayed, err := service.CreateOrder(r.Context(), a, req.toCommand(key))
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	status := http.StatusCreated
	message := "Order created successfully"
	if replayed {
		w.Header().Set(ReplayHeader, "true")
		status = http.StatusOK
		message = "Order already created"
	} else {
		storeImage(r.Context(), uploader, req.image)
	}

	response.WriteJSON(w, status, createOrderResponse{
		Success: true,
		Message: message,
		Order:   created,
	})
}

func decode(w http.ResponseWriter, r *http.Request) (*createOrderRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

		req := &createOrderRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, errors.New("invalid request body")
		}

		return req, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	req := &createOrderRequest{
		ShippingAddress: r.FormValue("shipping_address"),
		PaymentMethod:   r.FormValue("payment_method"),
	}
	if raw := r.FormValue("items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Items); err != nil {
			return nil, errors.New("items must be a JSON array")
		}
	}

	file, header, err := r.FormFile(imageField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return nil, errors.New("invalid image upload")
	default:
		file.Close()
		req.image = header
	}

	return req, nil
}

// storeImage keeps the payment proof of a created order. The stored image is
// not linked to the order.
func storeImage(ctx context.Context, uploader uploader, header *multipart.FileHeader) {
	if header == nil || uploader == nil {
		return
	}

	file, err := header.Open()
	if err != nil {
		slog.ErrorContext(ctx, "Error opening payment proof", "error", err)

		return
	}
	defer file.Close()

	stored, err := uploader.Save(ctx, header.Filename, file)
	if err != nil {
		slog.ErrorContext(ctx, "Error storing payment proof", "error", err)

		return
	}

	slog.InfoContext(ctx, "Payment proof stored", "file", stored)
}
