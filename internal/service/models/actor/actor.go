package actor

// Actor is the authenticated identity performing an operation.
// It is produced by the auth middleware and trusted by the service layer.
type Actor struct {
	CustomerID string `json:"customer_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Admin      bool   `json:"is_admin"`
}

// CustomerTag renders the actor as recorded in pay_by for customer payments.
func (a Actor) CustomerTag() string {
	return "customer:" + a.Username
}

// AdminTag renders the actor as recorded in pay_by for admin payments.
func (a Actor) AdminTag() string {
	return "admin:" + a.Username
}
