package model

import "time"

// FeedbackAction describes what the gate did with a rated customer.
type FeedbackAction string

const (
	FeedbackBlocked FeedbackAction = "blocked"
	FeedbackAllowed FeedbackAction = "allowed"
)

// Feedback is reported to CodGuard after a rating decision.
type Feedback struct {
	EshopID    int            `json:"eshop_id"`
	Email      string         `json:"email"`
	Reputation float64        `json:"reputation"`
	Threshold  float64        `json:"threshold"`
	Action     FeedbackAction `json:"action"`
}

// BlockEvent records a blocked cash on delivery attempt.
type BlockEvent struct {
	Timestamp time.Time
	Email     string
	Rating    float64
}

// BlockStats aggregates block events over reporting periods.
type BlockStats struct {
	Today  int
	Week   int
	Month  int
	All    int
	Recent []BlockEvent
}
