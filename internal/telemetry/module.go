package telemetry

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/codguard/internal/config"
)

// Module initialises tracing and stops it with the application.
var Module = fx.Invoke(register)

type params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func register(p params) error {
	shutdown, err := Init(context.Background(), p.Config.ServiceName, p.Config.TracingURL)
	if err != nil {
		return err
	}
	if p.Config.TracingURL != "" {
		p.Logger.Info("tracing enabled", slog.String("endpoint", p.Config.TracingURL))
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return nil
}
