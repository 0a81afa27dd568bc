package model

import "time"

// ScheduledTask is a one-shot deferred task registration.
type ScheduledTask struct {
	Name  string
	RunAt time.Time
}

// QueueStatus summarises pending bundled sync state.
type QueueStatus struct {
	Pending     int
	NextFlushAt *time.Time
}

// ImportResult is the accepted response of an order import.
type ImportResult struct {
	StatusCode int
	Body       []byte
}
