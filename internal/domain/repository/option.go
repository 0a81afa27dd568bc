package repository

import "context"

// OptionRepository is a named blob store holding shop settings.
type OptionRepository interface {
	// Get returns stored value or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) error
	// Add stores value only when name is absent and reports whether it was stored.
	Add(ctx context.Context, name string, value []byte) (bool, error)
}
