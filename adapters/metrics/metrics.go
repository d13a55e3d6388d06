// Package metrics provides Prometheus metrics collection for brickgate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for brickgate.
type Collector struct {
	// Payment metrics
	PaymentsTotal *prometheus.CounterVec

	// Provider call metrics
	ProviderCallDuration *prometheus.HistogramVec
	ProviderErrors       *prometheus.CounterVec

	// HTTP request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		PaymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "brickgate",
				Name:      "payments_total",
				Help:      "Total number of payment attempts processed",
			},
			[]string{"kind", "outcome"},
		),

		ProviderCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "brickgate",
				Name:      "provider_call_duration_seconds",
				Help:      "Brick API call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		ProviderErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "brickgate",
				Name:      "provider_errors_total",
				Help:      "Total number of failed Brick API calls",
			},
			[]string{"operation"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "brickgate",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "brickgate",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path", "status"},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "brickgate",
				Name:      "config_reloads_total",
				Help:      "Total number of configuration reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "brickgate",
				Name:      "config_reload_errors_total",
				Help:      "Total number of failed configuration reloads",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "brickgate",
				Name:      "config_last_reload_timestamp_seconds",
				Help:      "Unix timestamp of the last successful config reload",
			},
		),
	}
}

// RecordPayment records a processed payment attempt.
func (c *Collector) RecordPayment(kind, outcome string) {
	if c == nil {
		return
	}
	c.PaymentsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordProviderCall records a Brick API round-trip.
func (c *Collector) RecordProviderCall(operation string, seconds float64, err error) {
	if c == nil {
		return
	}
	c.ProviderCallDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		c.ProviderErrors.WithLabelValues(operation).Inc()
	}
}
