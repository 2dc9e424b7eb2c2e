package customer

// Customer is the read-only view of the customer record an order references.
type Customer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
