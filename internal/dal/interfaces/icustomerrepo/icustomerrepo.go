package icustomerrepo

import (
	"context"
	"errors"

	"github.com/corray333/storefront-order/internal/service/models/customer"
)

var ErrCustomerNotFound = errors.New("customer not found")

// ICustomerRepository resolves the customer referenced by an order.
type ICustomerRepository interface {
	FindByID(ctx context.Context, id string) (customer.Customer, error)
}
