package paymentmethod

import (
	"database/sql/driver"
	"errors"
)

type PaymentMethod string

const (
	PaymentMethodDelivery PaymentMethod = "delivery"
	PaymentMethodPickup   PaymentMethod = "pickup"
)

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) Value() (driver.Value, error) {
	return p.String(), nil
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch s {
	case PaymentMethodDelivery.String():
		return PaymentMethodDelivery, nil
	case PaymentMethodPickup.String():
		return PaymentMethodPickup, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
