package dto

import (
	"strconv"

	"github.com/polkiloo/codguard/internal/domain/model"
)

// OrderPayload is the commerce order snapshot sent on status transitions.
type OrderPayload struct {
	ID              int64  `json:"id" binding:"required"`
	Number          string `json:"order_number"`
	Status          string `json:"status"`
	BillingEmail    string `json:"billing_email"`
	BillingPhone    string `json:"billing_phone"`
	BillingCountry  string `json:"billing_country"`
	BillingPostcode string `json:"billing_postcode"`
	BillingAddress1 string `json:"billing_address_1"`
	BillingAddress2 string `json:"billing_address_2"`
	BillingCity     string `json:"billing_city"`
	BillingState    string `json:"billing_state"`
}

// OrderStatusRequest describes an order status transition.
type OrderStatusRequest struct {
	Order     OrderPayload `json:"order"`
	OldStatus string       `json:"old_status"`
	NewStatus string       `json:"new_status" binding:"required"`
}

// ToModel maps the payload onto the domain order.
func (p OrderPayload) ToModel() model.Order {
	number := p.Number
	if number == "" {
		number = strconv.FormatInt(p.ID, 10)
	}
	return model.Order{
		ID:              p.ID,
		Number:          number,
		Status:          p.Status,
		BillingEmail:    p.BillingEmail,
		BillingPhone:    p.BillingPhone,
		BillingCountry:  p.BillingCountry,
		BillingPostcode: p.BillingPostcode,
		AddressLines:    []string{p.BillingAddress1, p.BillingAddress2, p.BillingCity, p.BillingState},
	}
}
