package usecase

import (
	"time"

	"github.com/polkiloo/codguard/internal/config"
)

const (
	defaultBundleDelay    = time.Hour
	defaultQueueTTL       = 24 * time.Hour
	defaultBlockRetention = 90 * 24 * time.Hour
)

// Options carries timing parameters shared by use cases.
type Options struct {
	BundleDelay    time.Duration
	QueueTTL       time.Duration
	BlockRetention time.Duration
	Now            func() time.Time
}

// OptionsFromConfig maps process configuration onto use case options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BundleDelay:    cfg.BundleDelay,
		QueueTTL:       cfg.QueueTTL,
		BlockRetention: cfg.BlockRetention,
	}
}

func (o Options) withDefaults() Options {
	if o.BundleDelay <= 0 {
		o.BundleDelay = defaultBundleDelay
	}
	if o.QueueTTL <= 0 {
		o.QueueTTL = defaultQueueTTL
	}
	if o.BlockRetention <= 0 {
		o.BlockRetention = defaultBlockRetention
	}
	return o
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}
