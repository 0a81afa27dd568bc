package app

import (
	"context"

	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/usecase"
)

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CodGuardFacade exposes use cases to transports and background workers.
type CodGuardFacade struct {
	settings *usecase.SettingsUseCase
	gate     *usecase.CheckoutGate
	blocks   *usecase.BlockLogUseCase
	sync     *usecase.OrderSyncUseCase
	health   HealthChecker
}

func NewCodGuardFacade(
	settings *usecase.SettingsUseCase,
	gate *usecase.CheckoutGate,
	blocks *usecase.BlockLogUseCase,
	sync *usecase.OrderSyncUseCase,
	health HealthChecker,
) *CodGuardFacade {
	return &CodGuardFacade{settings: settings, gate: gate, blocks: blocks, sync: sync, health: health}
}

func (f *CodGuardFacade) EvaluateCheckout(ctx context.Context, scope *usecase.CheckoutScope, paymentMethod, billingEmail string) model.Decision {
	return f.gate.Evaluate(ctx, scope, paymentMethod, billingEmail)
}

func (f *CodGuardFacade) OrderStatusChanged(ctx context.Context, order model.Order, oldStatus, newStatus string) error {
	return f.sync.OnOrderStatusChanged(ctx, order, oldStatus, newStatus)
}

func (f *CodGuardFacade) Settings(ctx context.Context) (model.Settings, error) {
	return f.settings.Get(ctx)
}

func (f *CodGuardFacade) UpdateSettings(ctx context.Context, update model.SettingsUpdate) (model.Settings, error) {
	return f.settings.Update(ctx, update)
}

func (f *CodGuardFacade) SeedSettings(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	return f.settings.Seed(ctx, path)
}

func (f *CodGuardFacade) BlockStats(ctx context.Context) (*model.BlockStats, error) {
	return f.blocks.Stats(ctx)
}

func (f *CodGuardFacade) QueueStatus(ctx context.Context) (*model.QueueStatus, error) {
	return f.sync.Status(ctx)
}

func (f *CodGuardFacade) FlushQueue(ctx context.Context) error {
	return f.sync.Flush(ctx)
}

func (f *CodGuardFacade) DeactivateSync(ctx context.Context) error {
	return f.sync.Deactivate(ctx)
}

func (f *CodGuardFacade) Health(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
