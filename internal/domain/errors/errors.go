package errors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrQueuePersistence = errors.New("order queue persistence failed")
	ErrMissingEmail     = errors.New("order has no billing email")
	ErrInvalidOrder     = errors.New("invalid order")
)
