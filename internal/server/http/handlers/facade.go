package handlers

import (
	"context"

	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/usecase"
)

// CheckoutFacade evaluates checkout submissions.
type CheckoutFacade interface {
	EvaluateCheckout(ctx context.Context, scope *usecase.CheckoutScope, paymentMethod, billingEmail string) model.Decision
}

// OrderFacade receives order status transitions.
type OrderFacade interface {
	OrderStatusChanged(ctx context.Context, order model.Order, oldStatus, newStatus string) error
}

// SettingsFacade reads and edits shop settings.
type SettingsFacade interface {
	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, update model.SettingsUpdate) (model.Settings, error)
}

// SyncFacade exposes the bundled sync queue and block statistics.
type SyncFacade interface {
	BlockStats(ctx context.Context) (*model.BlockStats, error)
	QueueStatus(ctx context.Context) (*model.QueueStatus, error)
	FlushQueue(ctx context.Context) error
	DeactivateSync(ctx context.Context) error
}

// HealthFacade reports service readiness.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// Facade aggregates the full set of operations used across handlers.
type Facade interface {
	CheckoutFacade
	OrderFacade
	SettingsFacade
	SyncFacade
	HealthFacade
}
