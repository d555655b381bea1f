package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache lookups by tier (resolver|generation) and result (hit|miss|error).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_cache_lookups_total",
			Help: "Cache lookups by tier and result.",
		},
		[]string{"tier", "result"},
	)

	// Where each resolved assessment came from.
	ResolveOriginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_resolve_origin_total",
			Help: "Resolved assessment results by origin.",
		},
		[]string{"origin"},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_store_errors_total",
			Help: "Durable store errors swallowed by the resolver, by query.",
		},
		[]string{"query"},
	)

	// Recommendation outcomes: cached | primary | fallback.
	GenerationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_generation_outcome_total",
			Help: "Recommendation requests by outcome.",
		},
		[]string{"outcome"},
	)

	GenerationLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skillbridge_generation_latency_seconds",
			Help:    "Latency of the primary recommendation generator.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	HTTPLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skillbridge_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method", "status_code"},
	)

	registerOnce sync.Once
)

// Register adds all collectors to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CacheLookupsTotal,
			ResolveOriginsTotal,
			StoreErrorsTotal,
			GenerationOutcomesTotal,
			GenerationLatencySeconds,
			HTTPLatencySeconds,
		)
	})
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures latency per chi route pattern, so path parameters
// do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		HTTPLatencySeconds.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
