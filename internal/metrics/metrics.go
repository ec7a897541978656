// Package metrics exposes the tracker's Prometheus instruments on a
// dedicated registry so the /metrics endpoint serves only our series.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	AttemptsTotal  prometheus.Counter
	ProviderErrors *prometheus.CounterVec
	ProductsSaved  prometheus.Counter
	RunDuration    prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_runs_total",
			Help: "Tracking runs by final status.",
		}, []string{"status"}),
		AttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_attempts_total",
			Help: "Provider fetch attempts, including retries.",
		}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_provider_errors_total",
			Help: "Provider errors by classified type.",
		}, []string{"type"}),
		ProductsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_products_saved_total",
			Help: "Product observations written to the store.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_run_duration_seconds",
			Help:    "Wall time of a full tracking run including retries.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	m.Registry.MustRegister(
		m.RunsTotal,
		m.AttemptsTotal,
		m.ProviderErrors,
		m.ProductsSaved,
		m.RunDuration,
	)
	return m
}
