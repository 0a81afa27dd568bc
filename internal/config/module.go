package config

import "go.uber.org/fx"

// Module provides process configuration read from flags and environment.
var Module = fx.Provide(Load)
