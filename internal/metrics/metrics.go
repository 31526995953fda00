// Package metrics defines the Prometheus collectors for the pipeline and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	DocumentsLoaded  prometheus.Counter
	DocumentsIndexed prometheus.Counter
	DuplicatesFound  prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all pipeline metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_runs_total",
				Help: "Total pipeline runs by outcome (completed, failed).",
			},
			[]string{"outcome"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prism_stage_duration_seconds",
				Help:    "Stage execution latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		DocumentsLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prism_documents_loaded_total",
				Help: "Total documents loaded from sources.",
			},
		),
		DocumentsIndexed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prism_documents_indexed_total",
				Help: "Total documents committed to the vector index.",
			},
		),
		DuplicatesFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prism_duplicates_found_total",
				Help: "Total documents flagged as exact-content duplicates.",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.StageDuration,
		m.DocumentsLoaded,
		m.DocumentsIndexed,
		m.DuplicatesFound,
	)
	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
