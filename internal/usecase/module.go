package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/codguard/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config) Options { return OptionsFromConfig(cfg) },
		NewSettingsUseCase,
		func(u *SettingsUseCase) SettingsProvider { return u },
		NewBlockLogUseCase,
		NewFeedbackReporter,
		NewCheckoutGate,
		NewOrderSyncUseCase,
	),
)
