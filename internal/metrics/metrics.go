// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors for catalog lookups,
// enrichment batches, and scorer runs. All methods are safe on a nil
// *Metrics so components can run without instrumentation in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	OutcomeHit      = "hit"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Metrics holds the service collectors.
type Metrics struct {
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	batchSize      prometheus.Histogram
	scorerRuns     *prometheus.CounterVec
	gatherer       prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinedex_catalog_lookups_total",
			Help: "Catalog lookups by mode (id, title) and outcome.",
		}, []string{"mode", "outcome"}),
		lookupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinedex_catalog_lookup_duration_seconds",
			Help:    "Catalog lookup latency including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		batchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinedex_enrich_batch_size",
			Help:    "Records per enrichment batch.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		scorerRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinedex_scorer_runs_total",
			Help: "Recommendation scorer invocations by outcome.",
		}, []string{"outcome"}),
		gatherer: reg,
	}
}

// ObserveLookup records one catalog lookup.
func (m *Metrics) ObserveLookup(mode, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(mode, outcome).Inc()
	m.lookupDuration.WithLabelValues(mode).Observe(took.Seconds())
}

// ObserveBatch records the size of one enrichment batch.
func (m *Metrics) ObserveBatch(n int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(n))
}

// ObserveScorer records one scorer run; outcome is "ok" or "error".
func (m *Metrics) ObserveScorer(outcome string) {
	if m == nil {
		return
	}
	m.scorerRuns.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
