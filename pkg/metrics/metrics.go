// Package metrics defines the Prometheus metric collectors used by the index
// build and query paths and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the search engine.
type Metrics struct {
	DocsIndexedTotal       prometheus.Counter
	DocLoadFailuresTotal   prometheus.Counter
	KeywordsIndexed        prometheus.Gauge
	OccurrencesIndexed     prometheus.Gauge
	InsertionProbes        prometheus.Histogram
	BuildDuration          prometheus.Histogram
	SearchQueriesTotal     *prometheus.CounterVec
	SearchLatency          *prometheus.HistogramVec
	SearchResultsCount     prometheus.Histogram
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
	AnalyticsDroppedTotal  prometheus.Counter
	AnalyticsPublishErrors prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them on a fresh registry together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry creates all collectors and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lse_docs_indexed_total",
				Help: "Total documents merged into the index.",
			},
		),
		DocLoadFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lse_doc_load_failures_total",
				Help: "Total documents that could not be loaded.",
			},
		),
		KeywordsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lse_keywords_indexed",
				Help: "Number of distinct keywords in the index.",
			},
		),
		OccurrencesIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lse_occurrences_indexed",
				Help: "Number of keyword occurrences across all documents.",
			},
		),
		InsertionProbes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lse_insertion_probes",
				Help:    "Binary search midpoints examined per ranked insertion.",
				Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12, 16},
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lse_build_duration_seconds",
				Help:    "Index build latency in seconds.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lse_search_queries_total",
				Help: "Total search queries by result type (match, zero_result, empty, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lse_search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lse_search_results_count",
				Help:    "Number of documents returned per search query.",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lse_cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lse_cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		AnalyticsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lse_analytics_dropped_total",
				Help: "Analytics events dropped because the buffer was full.",
			},
		),
		AnalyticsPublishErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lse_analytics_publish_errors_total",
				Help: "Analytics events that failed to publish.",
			},
		),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.DocsIndexedTotal,
		m.DocLoadFailuresTotal,
		m.KeywordsIndexed,
		m.OccurrencesIndexed,
		m.InsertionProbes,
		m.BuildDuration,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.AnalyticsDroppedTotal,
		m.AnalyticsPublishErrors,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for this Metrics'
// registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
