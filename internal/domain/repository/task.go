package repository

import (
	"context"
	"time"

	"github.com/polkiloo/codguard/internal/domain/model"
)

// TaskScheduler keeps one-shot deferred task registrations.
type TaskScheduler interface {
	IsScheduled(ctx context.Context, name string) (bool, error)
	// Next returns pending registration or ErrNotFound.
	Next(ctx context.Context, name string) (*model.ScheduledTask, error)
	// ScheduleOnce registers task unless one with the same name is pending.
	ScheduleOnce(ctx context.Context, name string, at time.Time) (bool, error)
	// ClaimDue removes and returns tasks whose run time has passed.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledTask, error)
	Clear(ctx context.Context, name string) error
}
