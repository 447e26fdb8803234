package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard service.
type Metrics struct {
	// Fetch metrics
	FetchRequests   *prometheus.CounterVec
	FetchFailures   *prometheus.CounterVec
	FetchLatency    *prometheus.HistogramVec
	FetchRetries    *prometheus.CounterVec
	SampleFallbacks prometheus.Counter

	// Cache metrics
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	CacheEvictions *prometheus.CounterVec
	DedupHits      *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		FetchRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_requests_total",
				Help:      "Total upstream fetch attempts",
			},
			[]string{"source"},
		),
		FetchFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_failures_total",
				Help:      "Upstream fetch failures by error kind",
			},
			[]string{"source", "kind"},
		),
		FetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_latency_seconds",
				Help:      "Upstream fetch latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		FetchRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_retries_total",
				Help:      "Fetch retries issued by the orchestration layer",
			},
			[]string{"source"},
		),
		SampleFallbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sample_fallbacks_total",
				Help:      "Times sample data substituted for live ad metrics",
			},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Persistent cache hits",
			},
			[]string{"tier"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Persistent cache misses by cause",
			},
			[]string{"cause"},
		),
		CacheEvictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_evictions_total",
				Help:      "Lazy evictions of stale or corrupt entries",
			},
			[]string{"cause"},
		),
		DedupHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dedup_hits_total",
				Help:      "Requests collapsed by the in-memory dedup window",
			},
			[]string{"source"},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"path"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCacheHit increments the hit counter for a tier. Nil-safe so
// components can run without metrics in tests.
func (m *Metrics) RecordCacheHit(tier string) {
	if m != nil {
		m.CacheHits.WithLabelValues(tier).Inc()
	}
}

// RecordCacheMiss increments the miss counter for a cause.
func (m *Metrics) RecordCacheMiss(cause string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(cause).Inc()
	}
}

// RecordEviction increments the eviction counter for a cause.
func (m *Metrics) RecordEviction(cause string) {
	if m != nil {
		m.CacheEvictions.WithLabelValues(cause).Inc()
	}
}

// RecordDedupHit increments the dedup counter for a source.
func (m *Metrics) RecordDedupHit(source string) {
	if m != nil {
		m.DedupHits.WithLabelValues(source).Inc()
	}
}

// RecordFetchRetry increments the retry counter for a source.
func (m *Metrics) RecordFetchRetry(source string) {
	if m != nil {
		m.FetchRetries.WithLabelValues(source).Inc()
	}
}

// RecordSampleFallback counts a sample-data substitution.
func (m *Metrics) RecordSampleFallback() {
	if m != nil {
		m.SampleFallbacks.Inc()
	}
}
