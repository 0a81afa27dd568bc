package usecase

import (
	"context"
	"log/slog"

	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/metrics"
)

// FeedbackSender posts gate feedback to CodGuard.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, publicKey string, feedback model.Feedback) error
}

// FeedbackReporter reports gate actions. Failures are logged and never returned.
type FeedbackReporter struct {
	sender  FeedbackSender
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewFeedbackReporter constructs FeedbackReporter.
func NewFeedbackReporter(sender FeedbackSender, m *metrics.Metrics, logger *slog.Logger) *FeedbackReporter {
	return &FeedbackReporter{sender: sender, metrics: m, logger: logger}
}

// Report sends feedback for a rated customer.
func (r *FeedbackReporter) Report(ctx context.Context, settings model.Settings, email string, rating, threshold float64, action model.FeedbackAction) {
	if settings.ShopID == "" || settings.PublicKey == "" {
		r.logger.Warn("cannot send feedback, shop id or public key missing")
		r.metrics.ObserveFeedback(string(action), "skipped")
		return
	}

	feedback := model.Feedback{
		EshopID:    settings.EshopID(),
		Email:      email,
		Reputation: rating,
		Threshold:  threshold,
		Action:     action,
	}

	if err := r.sender.SendFeedback(ctx, settings.PublicKey, feedback); err != nil {
		r.logger.Warn("feedback failed", slog.String("action", string(action)), slog.String("error", err.Error()))
		r.metrics.ObserveFeedback(string(action), "error")
		return
	}

	r.logger.Debug("feedback sent", slog.String("action", string(action)), slog.String("email", email))
	r.metrics.ObserveFeedback(string(action), "success")
}
