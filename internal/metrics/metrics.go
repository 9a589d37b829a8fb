// Package metrics exposes Prometheus instrumentation for scoring, embeddings and the HTTP API.
// Each Metrics value owns its registry so that engines and tests never share collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Score kinds used as label values
const (
	KindMatchBasic    = "match_basic"
	KindMatchAdvanced = "match_advanced"
	KindLead          = "lead"
)

// Metrics holds all collectors
type Metrics struct {
	Registry *prometheus.Registry

	ScoresComputed    *prometheus.CounterVec
	ScoreDuration     *prometheus.HistogramVec
	OverallScore      *prometheus.HistogramVec
	EmbeddingRequests *prometheus.CounterVec
	EmbeddingDuration *prometheus.HistogramVec
	EmbeddingCache    *prometheus.CounterVec
	BatchInFlight     prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New creates a Metrics value with its own registry, including Go runtime collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		ScoresComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitscore_scores_computed_total",
				Help: "Total number of scores computed",
			},
			[]string{"kind"},
		),
		ScoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitscore_score_duration_seconds",
				Help:    "Duration of a scoring request in seconds, including embeddings",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		OverallScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitscore_overall_score",
				Help:    "Distribution of overall scores",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"kind"},
		),
		EmbeddingRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitscore_embedding_requests_total",
				Help: "Total number of embedding requests by provider and status",
			},
			[]string{"provider", "status"},
		),
		EmbeddingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitscore_embedding_duration_seconds",
				Help:    "Duration of embedding requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		EmbeddingCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitscore_embedding_cache_total",
				Help: "Embedding cache lookups by result",
			},
			[]string{"result"},
		),
		BatchInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fitscore_batch_pairs_in_flight",
				Help: "Number of batch pairs currently being scored",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitscore_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitscore_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveScore records one computed score. Safe on a nil receiver.
func (m *Metrics) ObserveScore(kind string, score int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScoresComputed.WithLabelValues(kind).Inc()
	m.ScoreDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.OverallScore.WithLabelValues(kind).Observe(float64(score))
}

// ObserveEmbedding records one embedding request. Safe on a nil receiver.
func (m *Metrics) ObserveEmbedding(provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EmbeddingRequests.WithLabelValues(provider, status).Inc()
	m.EmbeddingDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// CacheResult records an embedding cache lookup ("hit", "miss" or "error"). Safe on a nil receiver.
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.EmbeddingCache.WithLabelValues(result).Inc()
}

// BatchStarted and BatchFinished track in-flight batch pairs. Safe on a nil receiver.
func (m *Metrics) BatchStarted() {
	if m == nil {
		return
	}
	m.BatchInFlight.Inc()
}

// BatchFinished decrements the in-flight gauge
func (m *Metrics) BatchFinished() {
	if m == nil {
		return
	}
	m.BatchInFlight.Dec()
}

// ObserveHTTP records one HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
