package order

import "time"

// QueryOrdersModel represents filter parameters for querying orders.
// Results are always ordered newest first.
type QueryOrdersModel struct {
	Ids         []string `json:"ids,omitempty"`
	CustomerIds []string `json:"customerIds,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Offset      int      `json:"offset,omitempty"`
}

// Scope addresses a single order. A non-empty CustomerID turns the lookup into
// an ownership check: orders of other customers do not match.
type Scope struct {
	ID         string
	CustomerID string
}

// Guard lists the conditions that must NOT hold at write time for an update to apply.
type Guard struct {
	Status        Status
	PaymentStatus PaymentStatus
	Completed     bool
}

// Patch holds the columns written by a lifecycle transition. Nil fields are left untouched.
type Patch struct {
	Status            *Status
	PaymentStatus     *PaymentStatus
	PaymentDate       *time.Time
	PayBy             *string
	ConfirmedBy       *string
	CancelledBy       *string
	DeliveryStartTime *time.Time
	Completed         *bool
	UpdatedAt         time.Time
}

// UpdateModel is a single conditional update: apply Patch to the order in Scope
// unless any Guard condition holds.
type UpdateModel struct {
	Scope Scope
	Guard Guard
	Patch Patch
}
