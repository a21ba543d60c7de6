// Package metrics provides Prometheus instrumentation for handle lifecycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the library.
type Metrics struct {
	// Descriptor metrics
	FDsLive   prometheus.Gauge
	FDsDuped  prometheus.Counter
	FDsClosed prometheus.Counter

	// Pipe metrics
	PipesLive prometheus.Gauge

	// Process metrics
	ChildrenLive   prometheus.Gauge
	ForksTotal     prometheus.Counter
	ForkErrors     prometheus.Counter
	StopsTotal     prometheus.Counter
	ReapedTotal    prometheus.Counter
	DetachedTotal  prometheus.Counter
	JoinWaitsTotal prometheus.Counter

	// Dynamic loader metrics
	ModulesOpen prometheus.Gauge
}

// New creates a metrics collector registered on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FDsLive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poskit_fds_live",
			Help: "Number of descriptors currently owned by FD handles",
		}),
		FDsDuped: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_fds_duped_total",
			Help: "Total descriptor duplications performed by handle clones",
		}),
		FDsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_fds_closed_total",
			Help: "Total descriptors closed by handles",
		}),
		PipesLive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poskit_pipes_live",
			Help: "Number of pipe pairs with at least one open end",
		}),
		ChildrenLive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poskit_children_live",
			Help: "Number of child processes currently owned by handles",
		}),
		ForksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_forks_total",
			Help: "Total child processes started",
		}),
		ForkErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_fork_errors_total",
			Help: "Total failed attempts to start a child process",
		}),
		StopsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_stops_total",
			Help: "Total SIGTERM deliveries to owned children",
		}),
		ReapedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_reaped_total",
			Help: "Total terminated children observed and reaped",
		}),
		DetachedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_detached_total",
			Help: "Total children released to the process-wide zombie policy",
		}),
		JoinWaitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "poskit_join_waits_total",
			Help: "Total backoff sleeps performed inside Join",
		}),
		ModulesOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "poskit_modules_open",
			Help: "Number of shared objects currently held open by symbol handles",
		}),
	}
}

// Default is the collector used by the library's own handles. It registers
// on a private registry so importing the library never pollutes the global
// Prometheus registry; call Registry to expose it.
var (
	defaultRegistry = prometheus.NewRegistry()
	Default         = New(defaultRegistry)
)

// Registry returns the registry backing the Default collector.
func Registry() *prometheus.Registry {
	return defaultRegistry
}
