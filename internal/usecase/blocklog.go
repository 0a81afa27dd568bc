package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/domain/repository"
)

const recentBlocksLimit = 10

// BlockLogUseCase keeps the time-windowed log of blocked checkouts.
type BlockLogUseCase struct {
	events    repository.BlockEventRepository
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewBlockLogUseCase constructs BlockLogUseCase.
func NewBlockLogUseCase(events repository.BlockEventRepository, opts Options, logger *slog.Logger) *BlockLogUseCase {
	opts = opts.withDefaults()
	return &BlockLogUseCase{events: events, retention: opts.BlockRetention, now: opts.clock(), logger: logger}
}

// Record appends a block event and drops events past retention.
func (u *BlockLogUseCase) Record(ctx context.Context, email string, rating float64) error {
	now := u.now()
	event := model.BlockEvent{Timestamp: now, Email: email, Rating: rating}

	retained, err := u.events.Append(ctx, event, now.Add(-u.retention))
	if err != nil {
		return fmt.Errorf("record block event: %w", err)
	}
	u.logger.Debug("block event recorded", slog.String("email", email), slog.Int("retained", retained))
	return nil
}

// Stats aggregates retained block events.
func (u *BlockLogUseCase) Stats(ctx context.Context) (*model.BlockStats, error) {
	events, err := u.events.List(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("list block events: %w", err)
	}

	now := u.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	stats := &model.BlockStats{All: len(events), Recent: []model.BlockEvent{}}
	for _, e := range events {
		if !e.Timestamp.Before(midnight) {
			stats.Today++
		}
		if !e.Timestamp.Before(weekAgo) {
			stats.Week++
		}
		if !e.Timestamp.Before(monthAgo) {
			stats.Month++
		}
	}

	recent := events
	if len(recent) > recentBlocksLimit {
		recent = recent[:recentBlocksLimit]
	}
	stats.Recent = append(stats.Recent, recent...)
	return stats, nil
}
