package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/codguard/internal/config"
	"github.com/polkiloo/codguard/internal/server/http/handlers"
	"github.com/polkiloo/codguard/internal/server/http/middleware"
)

const metricsPath = "/metrics"

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.Facade, cfg *config.Config, gatherer prometheus.Gatherer, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithDecompressFn(gzip.DefaultDecompressHandle),
		gzip.WithExcludedPaths([]string{metricsPath}),
	))

	checkoutHandler := handlers.NewCheckoutHandler(facade, logger)
	orderHandler := handlers.NewOrderHandler(facade, logger)
	settingsHandler := handlers.NewSettingsHandler(facade)
	syncHandler := handlers.NewSyncHandler(facade, logger)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET(metricsPath, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	api.Use(middleware.ServiceToken(cfg.ServiceToken))
	api.POST("/checkout/validate", checkoutHandler.Validate)
	api.POST("/orders/status", orderHandler.StatusChanged)
	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", settingsHandler.Update)
	api.GET("/blocks", syncHandler.Blocks)
	api.GET("/sync/queue", syncHandler.Queue)
	api.POST("/sync/flush", syncHandler.Flush)
	api.DELETE("/sync/queue", syncHandler.Deactivate)

	return engine
}
