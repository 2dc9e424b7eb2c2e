package ordersvc

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("order not found")
	ErrForbidden  = errors.New("access denied")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")

	ErrNoOrders = fmt.Errorf("%w: no orders found", ErrNotFound)

	ErrAlreadyPaid      = fmt.Errorf("%w: order already paid", ErrConflict)
	ErrAlreadyCompleted = fmt.Errorf("%w: order already completed", ErrConflict)
	ErrAlreadyConfirmed = fmt.Errorf("%w: order already confirmed", ErrConflict)
	ErrAlreadyCancelled = fmt.Errorf("%w: order already cancelled", ErrConflict)
	ErrRequestInFlight  = fmt.Errorf("%w: request with this idempotency key is in progress", ErrConflict)
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func internalError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrInternal, op, err)
}

func checkOrderID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return validationError("invalid order id")
	}

	return nil
}
