package codguard

import (
	"log/slog"

	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/polkiloo/codguard/internal/config"
)

// Module exposes CodGuard client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	timeouts := Timeouts{
		Rating:   p.Config.RatingTimeout,
		Feedback: p.Config.FeedbackTimeout,
		Import:   p.Config.ImportTimeout,
	}
	return NewHTTPClient(p.Config.CodGuardAPIURL, timeouts, newLimiter(p.Config.RatingRPS), p.Logger)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
