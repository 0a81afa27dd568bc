package dto

// CheckoutRequest describes a checkout submission to validate.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	BillingEmail  string `json:"billing_email"`
}

// CheckoutResponse is returned when checkout may continue.
type CheckoutResponse struct {
	Decision  string `json:"decision"`
	RequestID string `json:"request_id"`
}

// CheckoutRejection is returned when cash on delivery is refused.
type CheckoutRejection struct {
	Decision string   `json:"decision"`
	Errors   []string `json:"errors"`
}
