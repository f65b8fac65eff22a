package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts requests by route, method and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPRequestDuration observes request latency by route and method.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	// AIRequestsTotal counts provider calls by operation.
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI provider requests by operation",
		},
		[]string{"provider", "operation"},
	)
	// AIRequestDuration observes provider call latency by operation.
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	// EmbedPlaceholdersTotal counts batch items replaced by zero vectors.
	EmbedPlaceholdersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "embed_placeholders_total",
			Help: "Total number of zero-vector placeholders substituted for failed embeddings",
		},
	)
	// ChunksProducedTotal counts chunks produced by document ingestion.
	ChunksProducedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "document_chunks_total",
			Help: "Total number of document chunks produced",
		},
	)
	// EvaluationFallbacksTotal counts sessions scored through the
	// total-failure fallback path.
	EvaluationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_fallbacks_total",
			Help: "Total number of evaluations answered with the low-score fallback",
		},
	)
	// EvaluationRepairsTotal counts per-question repairs (padded or
	// defaulted blocks) applied while parsing model output.
	EvaluationRepairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_repairs_total",
			Help: "Total number of repaired evaluation blocks",
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers all metrics with the default registry. Safe to call
// more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			EmbedPlaceholdersTotal,
			ChunksProducedTotal,
			EvaluationFallbacksTotal,
			EvaluationRepairsTotal,
		)
	})
}

// HTTPMetricsMiddleware records request counts and durations per chi route.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
