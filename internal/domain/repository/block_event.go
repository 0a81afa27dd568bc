package repository

import (
	"context"
	"time"

	"github.com/polkiloo/codguard/internal/domain/model"
)

// BlockEventRepository is the append-only log of blocked checkouts.
type BlockEventRepository interface {
	// Append stores event, drops events older than cutoff and returns retained count.
	Append(ctx context.Context, event model.BlockEvent, cutoff time.Time) (int, error)
	// List returns events newer than since, newest first.
	List(ctx context.Context, since time.Time) ([]model.BlockEvent, error)
}
