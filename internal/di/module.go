package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/codguard/internal/adapter/codguard"
	"github.com/polkiloo/codguard/internal/app"
	"github.com/polkiloo/codguard/internal/config"
	"github.com/polkiloo/codguard/internal/logger"
	"github.com/polkiloo/codguard/internal/metrics"
	"github.com/polkiloo/codguard/internal/server/http/router"
	"github.com/polkiloo/codguard/internal/storage/postgres"
	"github.com/polkiloo/codguard/internal/telemetry"
	"github.com/polkiloo/codguard/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		telemetry.Module,
		postgres.Module,
		codguard.Module,
		fx.Provide(
			func(client codguard.Client) usecase.RatingProvider { return client },
			func(client codguard.Client) usecase.FeedbackSender { return client },
			func(client codguard.Client) usecase.OrderImporter { return client },
			func(s *postgres.Storage) app.HealthChecker { return s },
		),
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
