// Package metrics provides Prometheus metrics collection for formgate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for formgate.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Engine metrics
	ValidationFailures *prometheus.CounterVec
	SubmissionsTotal   *prometheus.CounterVec
	SyncPlacements     *prometheus.CounterVec
	Reorders           *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector registered on a custom registry
// (used by tests to avoid duplicate registration).
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formgate",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "formgate",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path", "status"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formgate",
				Name:      "validation_failures_total",
				Help:      "Total number of payload validations that produced issues",
			},
			[]string{"container"},
		),
		SubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formgate",
				Name:      "submissions_total",
				Help:      "Total number of form submissions handled",
			},
			[]string{"slug", "kind"}, // kind: authenticated | anonymous
		),
		SyncPlacements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formgate",
				Name:      "sync_placements_total",
				Help:      "Placements created and removed by sync operations",
			},
			[]string{"op"}, // op: added | removed
		),
		Reorders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formgate",
				Name:      "reorders_total",
				Help:      "Total number of reorder operations",
			},
			[]string{"mode"}, // mode: explicit | sequential
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formgate",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "formgate",
				Name:      "config_reload_errors_total",
				Help:      "Total number of failed config reloads",
			},
		),
	}
}
