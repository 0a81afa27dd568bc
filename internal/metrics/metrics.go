package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups collectors for the checkout gate and bundled sync.
type Metrics struct {
	decisions      *prometheus.CounterVec
	ratingDuration *prometheus.HistogramVec
	feedback       *prometheus.CounterVec
	queued         *prometheus.CounterVec
	flushes        *prometheus.CounterVec
	batchSize      prometheus.Gauge
}

// New registers collectors on reg, falling back to the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codguard",
				Subsystem: "checkout",
				Name:      "decisions_total",
				Help:      "Checkout gate decisions by result.",
			},
			[]string{"decision"},
		),
		ratingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "codguard",
				Subsystem: "checkout",
				Name:      "rating_request_seconds",
				Help:      "Duration of customer rating lookups.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		feedback: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codguard",
				Subsystem: "checkout",
				Name:      "feedback_total",
				Help:      "Feedback reports by action and delivery result.",
			},
			[]string{"action", "result"},
		),
		queued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codguard",
				Subsystem: "sync",
				Name:      "queued_orders_total",
				Help:      "Orders added to the bundled sync queue by outcome.",
			},
			[]string{"outcome"},
		),
		flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codguard",
				Subsystem: "sync",
				Name:      "flushes_total",
				Help:      "Bundled sync flush attempts by result.",
			},
			[]string{"result"},
		),
		batchSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "codguard",
				Subsystem: "sync",
				Name:      "last_batch_size",
				Help:      "Number of orders in the last successful batch.",
			},
		),
	}
	reg.MustRegister(m.decisions, m.ratingDuration, m.feedback, m.queued, m.flushes, m.batchSize)
	return m
}

// ObserveDecision counts a checkout gate decision.
func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision).Inc()
}

// ObserveRating records rating lookup latency.
func (m *Metrics) ObserveRating(result string, d time.Duration) {
	if m == nil || d < 0 {
		return
	}
	m.ratingDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveFeedback counts a feedback delivery attempt.
func (m *Metrics) ObserveFeedback(action, result string) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues(action, result).Inc()
}

// ObserveQueued counts an order written to the sync queue.
func (m *Metrics) ObserveQueued(outcome string) {
	if m == nil {
		return
	}
	m.queued.WithLabelValues(outcome).Inc()
}

// ObserveFlush counts a flush attempt; batch size is kept for successful sends.
func (m *Metrics) ObserveFlush(result string, size int) {
	if m == nil {
		return
	}
	m.flushes.WithLabelValues(result).Inc()
	if result == "success" {
		m.batchSize.Set(float64(size))
	}
}

// DecisionsCounter exposes the decision counter for testing and diagnostics.
func (m *Metrics) DecisionsCounter(decision string) prometheus.Counter {
	return m.decisions.WithLabelValues(decision)
}

// FlushCounter exposes the flush counter for testing and diagnostics.
func (m *Metrics) FlushCounter(result string) prometheus.Counter {
	return m.flushes.WithLabelValues(result)
}

// QueuedCounter exposes the queued counter for testing and diagnostics.
func (m *Metrics) QueuedCounter(outcome string) prometheus.Counter {
	return m.queued.WithLabelValues(outcome)
}

// BatchSizeGauge exposes the batch size gauge for testing and diagnostics.
func (m *Metrics) BatchSizeGauge() prometheus.Gauge {
	return m.batchSize
}
