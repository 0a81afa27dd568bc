package repository

import (
	"context"
	"time"
)

// TransientRepository stores expiring blobs.
type TransientRepository interface {
	// Get returns live value or ErrNotFound when missing or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Update performs an atomic read-modify-write. fn receives nil when no live
	// value exists; returning a nil value deletes the key.
	Update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error
}
