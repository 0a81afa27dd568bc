package router

import "go.uber.org/fx"

// Module provides the gin engine serving the service API, health and metrics.
var Module = fx.Provide(Setup)
