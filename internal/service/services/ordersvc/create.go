package ordersvc

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/corray333/storefront-order/internal/dal/interfaces/iidempotencyrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/storefront-order/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/storefront-order/internal/service/models/actor"
	"github.com/corray333/storefront-order/internal/service/models/event"
	"github.com/corray333/storefront-order/internal/service/models/order"
	"github.com/corray333/storefront-order/internal/service/models/orderitem"
	"github.com/corray333/storefront-order/internal/service/models/paymentmethod"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// CreateOrderItem is one cart entry.
type CreateOrderItem struct {
	ProductID string           `json:"product_id" validate:"required"`
	Name      string           `json:"name"       validate:"required"`
	Category  string           `json:"category"   validate:"required"`
	Quantity  int              `json:"quantity"   validate:"gt=0,lte=2147483647"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"required"`
}

func (i CreateOrderItem) price() decimal.Decimal {
	if i.UnitPrice == nil {
		return decimal.Zero
	}

	return *i.UnitPrice
}

// CreateOrderCommand is a cart submission. IdempotencyKey is optional.
type CreateOrderCommand struct {
	Items           []CreateOrderItem `json:"items"            validate:"required,min=1,dive"`
	ShippingAddress string            `json:"shipping_address" validate:"required"`
	PaymentMethod   string            `json:"payment_method"   validate:"required,oneof=delivery pickup"`
	IdempotencyKey  string            `json:"-"                validate:"omitempty,max=255"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func (s *OrderService) validateCreate(cmd CreateOrderCommand) error {
	if err := s.validate.Struct(cmd); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationError(describeFieldError(verrs[0]))
		}

		return validationError(err.Error())
	}

	if strings.TrimSpace(cmd.ShippingAddress) == "" {
		return validationError("shipping address required")
	}

	for _, item := range cmd.Items {
		if item.UnitPrice == nil {
			return validationError("unit price required")
		}

		price := *item.UnitPrice
		if price.IsNegative() {
			return validationError("unit price must not be negative")
		}
		if !price.Equal(price.Round(2)) {
			return validationError("unit price must have at most two decimal places")
		}
	}

	// Every stored amount is bounded by the order total.
	if computeTotals(cmd.Items).TotalPrice.GreaterThanOrEqual(MaxAmount) {
		return validationError("order total is too large")
	}

	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Items":
		return "items are required"
	case "ShippingAddress":
		return "shipping address required"
	case "PaymentMethod":
		return "invalid payment method"
	case "Quantity":
		if fe.Tag() == "lte" {
			return "quantity is too large"
		}

		return "quantity must be positive"
	case "UnitPrice":
		return "unit price required"
	case "IdempotencyKey":
		return "idempotency key is too long"
	default:
		return fe.Field() + " is required"
	}
}

// CreateOrder validates the cart, prices it and persists the order with its
// line items. The second result reports a replay of an earlier request with
// the same idempotency key.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	a actor.Actor,
	cmd CreateOrderCommand,
) (order.Order, bool, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.CreateOrder")
	defer span.End()

	if a.CustomerID == "" {
		return order.Order{}, false, ErrForbidden
	}

	if err := s.validateCreate(cmd); err != nil {
		return order.Order{}, false, err
	}

	key := ""
	if cmd.IdempotencyKey != "" && s.idempotencyRepo != nil {
		key = a.CustomerID + ":" + cmd.IdempotencyKey

		storedID, err := s.idempotencyRepo.Reserve(ctx, key, s.idempotencyTTL)
		switch {
		case errors.Is(err, iidempotencyrepo.ErrInProgress):
			return order.Order{}, false, ErrRequestInFlight
		case err != nil:
			return order.Order{}, false, internalError("reserve idempotency key", err)
		case storedID != "":
			span.SetAttributes(attribute.Bool("idempotent_replay", true))
			replayed, err := s.loadWithItems(ctx, order.Scope{ID: storedID, CustomerID: a.CustomerID})
			if err != nil {
				return order.Order{}, false, err
			}

			return replayed, true, nil
		}
	}

	created, err := s.create(ctx, a, cmd)
	if err != nil {
		if key != "" {
			if relErr := s.idempotencyRepo.Release(ctx, key); relErr != nil {
				slog.ErrorContext(ctx, "Failed to release idempotency key", "error", relErr)
			}
		}

		return order.Order{}, false, err
	}

	if key != "" {
		if err := s.idempotencyRepo.Complete(ctx, key, created.ID, s.idempotencyTTL); err != nil {
			slog.ErrorContext(ctx, "Failed to complete idempotency key", "order_id", created.ID, "error", err)
		}
	}

	span.SetAttributes(attribute.String("order_id", created.ID))
	s.publish(ctx, event.TypeOrderCreated, created, a.CustomerTag())

	return created, false, nil
}

func (s *OrderService) create(ctx context.Context, a actor.Actor, cmd CreateOrderCommand) (order.Order, error) {
	now := s.now().UTC()
	t := computeTotals(cmd.Items)

	header := order.Order{
		ID:              s.newID(),
		CustomerID:      a.CustomerID,
		ItemIDs:         []string{},
		UnitPrice:       t.UnitPrice,
		TotalPrice:      t.TotalPrice,
		Delivery:        t.Delivery,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   paymentmethod.PaymentMethod(cmd.PaymentMethod),
		Status:          order.StatusPending,
		PaymentStatus:   order.PaymentStatusPending,
		PaymentDate:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items := make([]orderitem.OrderItem, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		items = append(items, orderitem.OrderItem{
			ID:         s.newID(),
			OrderID:    header.ID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			Category:   item.Category,
			Quantity:   item.Quantity,
			UnitPrice:  item.price(),
			TotalPrice: lineTotal(item),
			CreatedAt:  now,
		})
	}

	if !s.atomicCreate {
		return persistOrder(ctx, s.orderRepo, s.orderItemRepo, header, items)
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, internalError("begin transaction", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		}
	}()

	created, err := persistOrder(ctx, work.OrderRepository(), work.OrderItemRepository(), header, items)
	if err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, internalError("commit transaction", err)
	}

	return created, nil
}

// persistOrder writes the header with no items, then the items, then links them.
// Outside a transaction a failure in between leaves the earlier phases in place.
func persistOrder(
	ctx context.Context,
	orderRepo iorderrepo.IOrderRepository,
	itemRepo iorderitemrepo.IOrderItemRepository,
	header order.Order,
	items []orderitem.OrderItem,
) (order.Order, error) {
	if _, err := orderRepo.Insert(ctx, header); err != nil {
		return order.Order{}, internalError("insert order", err)
	}

	inserted, err := itemRepo.BulkInsert(ctx, items)
	if err != nil {
		return order.Order{}, internalError("insert order items", err)
	}

	itemIDs := make([]string, 0, len(inserted))
	for _, item := range inserted {
		itemIDs = append(itemIDs, item.ID)
	}

	created, err := orderRepo.SetItems(ctx, header.ID, itemIDs)
	if err != nil {
		return order.Order{}, internalError("link order items", err)
	}
	created.Items = inserted

	return created, nil
}
