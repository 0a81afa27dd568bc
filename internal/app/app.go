package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/codguard/internal/config"
	"github.com/polkiloo/codguard/internal/domain/repository"
	"github.com/polkiloo/codguard/internal/server/http/handlers"
	"github.com/polkiloo/codguard/internal/usecase"
	"github.com/polkiloo/codguard/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewCodGuardFacade,
		func(f *CodGuardFacade) handlers.Facade { return f },
		newHTTPServer,
		newTaskRunner,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type runnerParams struct {
	fx.In

	Tasks  repository.TaskScheduler
	Facade *CodGuardFacade
	Config *config.Config
	Logger *slog.Logger
}

func newTaskRunner(p runnerParams) *worker.TaskRunner {
	runner := worker.NewTaskRunner(p.Tasks, p.Config.TaskPollInterval, p.Config.TaskWorkers, p.Logger)
	runner.Register(usecase.FlushTaskName, p.Facade.FlushQueue)
	return runner
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Runner     *worker.TaskRunner
	Facade     *CodGuardFacade
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			seeded, err := p.Facade.SeedSettings(ctx, p.Config.SettingsSeedFile)
			if err != nil {
				return err
			}
			if seeded {
				p.Logger.Info("settings seeded", slog.String("file", p.Config.SettingsSeedFile))
			}

			p.Logger.Info("starting codguard", slog.String("addr", p.Server.Addr))
			p.Runner.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Runner.Stop()
			p.Logger.Info("codguard stopped")
			return nil
		},
	})
}
