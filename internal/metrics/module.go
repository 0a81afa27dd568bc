package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Module provides a dedicated registry and application metrics.
var Module = fx.Provide(
	newRegistry,
	func(r *prometheus.Registry) prometheus.Registerer { return r },
	func(r *prometheus.Registry) prometheus.Gatherer { return r },
	New,
)

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
