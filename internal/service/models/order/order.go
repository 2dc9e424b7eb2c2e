package order

import (
	"time"

	"github.com/corray333/storefront-order/internal/service/models/orderitem"
	"github.com/corray333/storefront-order/internal/service/models/paymentmethod"
	"github.com/shopspring/decimal"
)

// Status is the customer/admin visible lifecycle of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// PaymentStatus is tracked independently of Status.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Order represents a customer purchase.
type Order struct {
	ID                string                      `json:"id"`
	CustomerID        string                      `json:"customer_id"`
	ItemIDs           []string                    `json:"item_ids"`
	Items             []orderitem.OrderItem       `json:"items,omitempty"`
	UnitPrice         decimal.Decimal             `json:"unit_price"`
	TotalPrice        decimal.Decimal             `json:"total_price"`
	Delivery          decimal.Decimal             `json:"delivery"`
	ShippingAddress   string                      `json:"shipping_address"`
	PaymentMethod     paymentmethod.PaymentMethod `json:"payment_method"`
	Status            Status                      `json:"status"`
	PaymentStatus     PaymentStatus               `json:"payment_status"`
	PaymentDate       time.Time                   `json:"payment_date"`
	PayBy             string                      `json:"pay_by,omitempty"`
	ConfirmedBy       string                      `json:"confirmed_by,omitempty"`
	CancelledBy       string                      `json:"cancelled_by,omitempty"`
	DeliveryStartTime *time.Time                  `json:"delivery_start_time,omitempty"`
	Completed         bool                        `json:"completed"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// Details is an order resolved with its line items and, for admins, the customer email.
type Details struct {
	Order         Order   `json:"order"`
	CustomerEmail *string `json:"customer_email"`
}
