package logger

import "go.uber.org/fx"

// Module provides the JSON slog logger configured from LOG_LEVEL.
var Module = fx.Provide(New)
