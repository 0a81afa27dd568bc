package model

// Decision is the checkout gate verdict for a payment method.
type Decision string

const (
	DecisionNotApplicable Decision = "not_applicable"
	DecisionAllowed       Decision = "allowed"
	DecisionBlocked       Decision = "blocked"
	DecisionIndeterminate Decision = "indeterminate"
)

// Permits reports whether checkout may continue with the payment method.
func (d Decision) Permits() bool {
	return d != DecisionBlocked
}
