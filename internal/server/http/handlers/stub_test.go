package handlers

import (
	"context"
	"time"

	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/usecase"
)

// facadeStub provides controllable behaviour for HTTP handlers.
type facadeStub struct {
	EvaluateFn       func(context.Context, *usecase.CheckoutScope, string, string) model.Decision
	StatusChangedFn  func(context.Context, model.Order, string, string) error
	SettingsFn       func(context.Context) (model.Settings, error)
	UpdateSettingsFn func(context.Context, model.SettingsUpdate) (model.Settings, error)
	BlockStatsFn     func(context.Context) (*model.BlockStats, error)
	QueueStatusFn    func(context.Context) (*model.QueueStatus, error)
	FlushFn          func(context.Context) error
	DeactivateFn     func(context.Context) error
	HealthFn         func(context.Context) error
}

// EvaluateCheckout delegates to provided function or allows checkout.
func (s facadeStub) EvaluateCheckout(ctx context.Context, scope *usecase.CheckoutScope, paymentMethod, billingEmail string) model.Decision {
	if s.EvaluateFn != nil {
		return s.EvaluateFn(ctx, scope, paymentMethod, billingEmail)
	}
	return model.DecisionAllowed
}

// OrderStatusChanged delegates to provided function or accepts the change.
func (s facadeStub) OrderStatusChanged(ctx context.Context, order model.Order, oldStatus, newStatus string) error {
	if s.StatusChangedFn != nil {
		return s.StatusChangedFn(ctx, order, oldStatus, newStatus)
	}
	return nil
}

// Settings returns configured settings or defaults.
func (s facadeStub) Settings(ctx context.Context) (model.Settings, error) {
	if s.SettingsFn != nil {
		return s.SettingsFn(ctx)
	}
	return model.DefaultSettings(), nil
}

// UpdateSettings delegates to provided function or applies update onto defaults.
func (s facadeStub) UpdateSettings(ctx context.Context, update model.SettingsUpdate) (model.Settings, error) {
	if s.UpdateSettingsFn != nil {
		return s.UpdateSettingsFn(ctx, update)
	}
	return update.Apply(model.DefaultSettings()), nil
}

// BlockStats returns configured statistics or a single recent block.
func (s facadeStub) BlockStats(ctx context.Context) (*model.BlockStats, error) {
	if s.BlockStatsFn != nil {
		return s.BlockStatsFn(ctx)
	}
	return &model.BlockStats{
		Today:  1,
		Week:   1,
		Month:  1,
		All:    1,
		Recent: []model.BlockEvent{{Timestamp: time.Unix(0, 0).UTC(), Email: "a@b.com", Rating: 0.1}},
	}, nil
}

// QueueStatus returns configured status or an idle queue.
func (s facadeStub) QueueStatus(ctx context.Context) (*model.QueueStatus, error) {
	if s.QueueStatusFn != nil {
		return s.QueueStatusFn(ctx)
	}
	return &model.QueueStatus{}, nil
}

// FlushQueue delegates to provided function.
func (s facadeStub) FlushQueue(ctx context.Context) error {
	if s.FlushFn != nil {
		return s.FlushFn(ctx)
	}
	return nil
}

// DeactivateSync delegates to provided function.
func (s facadeStub) DeactivateSync(ctx context.Context) error {
	if s.DeactivateFn != nil {
		return s.DeactivateFn(ctx)
	}
	return nil
}

// Health delegates to provided function.
func (s facadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
