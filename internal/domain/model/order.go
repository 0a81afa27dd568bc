package model

import "strings"

// Order is the read-only projection of a commerce order used by order sync.
type Order struct {
	ID              int64
	Number          string
	Status          string
	BillingEmail    string
	BillingPhone    string
	BillingCountry  string
	BillingPostcode string
	// AddressLines holds address_1, address_2, city and state in that order.
	AddressLines []string
}

// FormattedAddress joins non-empty address lines with ", ".
func (o Order) FormattedAddress() string {
	parts := make([]string, 0, len(o.AddressLines))
	for _, line := range o.AddressLines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, ", ")
}

// Outcome is the order result signal reported to CodGuard.
type Outcome string

const (
	OutcomeSuccessful Outcome = "1"
	OutcomeRefused    Outcome = "-1"
)

// OrderRecord is a queued order in the shape expected by the import endpoint.
type OrderRecord struct {
	EshopID     int     `json:"eshop_id"`
	Email       string  `json:"email"`
	Code        string  `json:"code"`
	Status      string  `json:"status"`
	Outcome     Outcome `json:"outcome"`
	Phone       string  `json:"phone"`
	CountryCode string  `json:"country_code"`
	PostalCode  string  `json:"postal_code"`
	Address     string  `json:"address"`
}
