// Package metrics provides Prometheus metrics for helpindex
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for helpindex
type Metrics struct {
	// Structure parse metrics
	ParseDuration   prometheus.Histogram
	NodesTotal      prometheus.Gauge
	PagesTotal      prometheus.Gauge
	ReattachedTotal prometheus.Counter

	// Content extraction metrics
	ExtractionsTotal   prometheus.Counter
	ExtractionFailures prometheus.Counter
	ExtractionDuration prometheus.Histogram

	// Index build metrics
	RebuildsTotal       *prometheus.CounterVec
	RebuildDuration     prometheus.Histogram
	DocumentsIndexed    prometheus.Counter
	IndexDocumentsTotal prometheus.Gauge

	// Search metrics
	SearchQueriesTotal     prometheus.Counter
	SearchResultsTotal     prometheus.Counter
	SearchDuration         prometheus.Histogram
	BreadcrumbLookupsTotal prometheus.Counter
	HelpIDLookupsTotal     prometheus.Counter

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// Structure parse metrics
	m.ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "helpindex_parse_duration_seconds",
			Help:    "Duration of structure document parses in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.NodesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "helpindex_nodes_total",
			Help: "Total number of nodes in the document tree",
		},
	)

	m.PagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "helpindex_pages_total",
			Help: "Total number of leaf pages in the document tree",
		},
	)

	m.ReattachedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_reattached_nodes_total",
			Help: "Total number of nodes reattached due to malformed nesting",
		},
	)

	// Content extraction metrics
	m.ExtractionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_extractions_total",
			Help: "Total number of HTML content extractions",
		},
	)

	m.ExtractionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_extraction_failures_total",
			Help: "Total number of failed HTML content extractions",
		},
	)

	m.ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "helpindex_extraction_duration_seconds",
			Help:    "Duration of HTML content extractions in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// Index build metrics
	m.RebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpindex_rebuilds_total",
			Help: "Total number of index rebuilds by trigger reason",
		},
		[]string{"reason", "status"},
	)

	m.RebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "helpindex_rebuild_duration_seconds",
			Help:    "Duration of index rebuilds in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	m.DocumentsIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_documents_indexed_total",
			Help: "Total number of documents ingested into the search index",
		},
	)

	m.IndexDocumentsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "helpindex_index_documents",
			Help: "Current number of documents in the search index",
		},
	)

	// Search metrics
	m.SearchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_search_queries_total",
			Help: "Total number of search queries",
		},
	)

	m.SearchResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_search_results_total",
			Help: "Total number of search results returned",
		},
	)

	m.SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "helpindex_search_duration_seconds",
			Help:    "Duration of search queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	m.BreadcrumbLookupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_breadcrumb_lookups_total",
			Help: "Total number of breadcrumb resolutions",
		},
	)

	m.HelpIDLookupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpindex_helpid_lookups_total",
			Help: "Total number of lookups by stable help identifier",
		},
	)

	// Server metrics
	m.ServerUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "helpindex_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime periodically updates the server uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
	}
}

// RecordParse records a completed structure parse
func (m *Metrics) RecordParse(duration time.Duration, nodes int, pages int, reattached int) {
	m.ParseDuration.Observe(duration.Seconds())
	m.NodesTotal.Set(float64(nodes))
	m.PagesTotal.Set(float64(pages))
	m.ReattachedTotal.Add(float64(reattached))
}

// RecordExtraction records a content extraction attempt
func (m *Metrics) RecordExtraction(duration time.Duration, failed bool) {
	m.ExtractionsTotal.Inc()
	m.ExtractionDuration.Observe(duration.Seconds())
	if failed {
		m.ExtractionFailures.Inc()
	}
}

// RecordRebuild records a completed index rebuild
func (m *Metrics) RecordRebuild(reason string, status string, duration time.Duration, documents int) {
	m.RebuildsTotal.WithLabelValues(reason, status).Inc()
	m.RebuildDuration.Observe(duration.Seconds())
	if documents > 0 {
		m.DocumentsIndexed.Add(float64(documents))
		m.IndexDocumentsTotal.Set(float64(documents))
	}
}

// RecordSearch records a search query
func (m *Metrics) RecordSearch(duration time.Duration, results int) {
	m.SearchQueriesTotal.Inc()
	m.SearchResultsTotal.Add(float64(results))
	m.SearchDuration.Observe(duration.Seconds())
}
