package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
	"github.com/polkiloo/codguard/internal/metrics"
)

// RatingProvider looks up a customer's trust score.
type RatingProvider interface {
	FetchRating(ctx context.Context, shopID, email, publicKey string) (float64, error)
}

// CheckoutScope is the memo of one checkout submission. It must not be shared
// between submissions.
type CheckoutScope struct {
	mu      sync.Mutex
	id      string
	checked bool
	result  model.Decision
	notices []string
}

// NewCheckoutScope opens a scope for a single checkout submission.
func NewCheckoutScope() *CheckoutScope {
	return &CheckoutScope{id: uuid.NewString()}
}

// ID identifies the submission.
func (s *CheckoutScope) ID() string {
	return s.id
}

// Notices returns checkout errors collected so far.
func (s *CheckoutScope) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

// Result returns memoized decision and whether evaluation happened.
func (s *CheckoutScope) Result() (model.Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.checked
}

// CheckoutGate decides whether cash on delivery is offered to a customer.
type CheckoutGate struct {
	settings SettingsProvider
	ratings  RatingProvider
	blocks   *BlockLogUseCase
	feedback *FeedbackReporter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewCheckoutGate constructs CheckoutGate.
func NewCheckoutGate(settings SettingsProvider, ratings RatingProvider, blocks *BlockLogUseCase, feedback *FeedbackReporter, m *metrics.Metrics, logger *slog.Logger) *CheckoutGate {
	return &CheckoutGate{settings: settings, ratings: ratings, blocks: blocks, feedback: feedback, metrics: m, logger: logger}
}

// Evaluate returns the decision for the submission. Only the first call per
// scope does any work; later calls return the memoized decision.
func (g *CheckoutGate) Evaluate(ctx context.Context, scope *CheckoutScope, paymentMethod, billingEmail string) model.Decision {
	scope.mu.Lock()
	defer scope.mu.Unlock()

	if scope.checked {
		g.logger.Debug("rating already checked for this checkout", slog.String("checkout_id", scope.id))
		return scope.result
	}

	decision, notice := g.decide(ctx, paymentMethod, billingEmail)
	scope.checked = true
	scope.result = decision
	if notice != "" {
		scope.notices = append(scope.notices, notice)
	}

	g.metrics.ObserveDecision(string(decision))
	return decision
}

func (g *CheckoutGate) decide(ctx context.Context, paymentMethod, billingEmail string) (model.Decision, string) {
	settings, err := g.settings.Get(ctx)
	if err != nil {
		g.logger.Warn("settings unavailable, skipping rating check", slog.String("error", err.Error()))
		return model.DecisionNotApplicable, ""
	}
	if !settings.Enabled {
		return model.DecisionNotApplicable, ""
	}
	if !settings.IsCODMethod(paymentMethod) {
		return model.DecisionNotApplicable, ""
	}
	if !IsValidEmail(billingEmail) {
		g.logger.Warn("no valid billing email, skipping rating check", slog.String("payment_method", paymentMethod))
		return model.DecisionNotApplicable, ""
	}

	rating, ok := g.fetchRating(ctx, settings, billingEmail)
	if !ok {
		return model.DecisionIndeterminate, ""
	}

	threshold := settings.Threshold()
	g.logger.Info("customer rating checked",
		slog.String("email", billingEmail),
		slog.Float64("rating", rating),
		slog.Float64("threshold", threshold),
	)

	if rating < threshold {
		if err := g.blocks.Record(ctx, billingEmail, rating); err != nil {
			g.logger.Warn("block event not recorded", slog.String("error", err.Error()))
		}
		g.feedback.Report(ctx, settings, billingEmail, rating, threshold, model.FeedbackBlocked)
		g.logger.Info("cash on delivery blocked", slog.String("email", billingEmail), slog.Float64("rating", rating))
		return model.DecisionBlocked, settings.RejectionMessage
	}

	g.feedback.Report(ctx, settings, billingEmail, rating, threshold, model.FeedbackAllowed)
	return model.DecisionAllowed, ""
}

func (g *CheckoutGate) fetchRating(ctx context.Context, settings model.Settings, email string) (float64, bool) {
	start := time.Now()
	rating, err := g.ratings.FetchRating(ctx, settings.ShopID, email, settings.PublicKey)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		g.metrics.ObserveRating("success", elapsed)
		return rating, true
	case errors.Is(err, domainErrors.ErrNotFound):
		g.metrics.ObserveRating("not_found", elapsed)
		g.logger.Info("customer not found, treating as new customer", slog.String("email", email))
		return 1.0, true
	default:
		g.metrics.ObserveRating("error", elapsed)
		g.logger.Warn("rating lookup failed, allowing checkout", slog.String("email", email), slog.String("error", err.Error()))
		return 0, false
	}
}
