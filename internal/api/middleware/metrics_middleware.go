package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"norelock.dev/moodmix/backend/internal/services/system"
)

// MetricsMiddleware records request counts and latency per route pattern.
type MetricsMiddleware struct {
	metrics *system.MetricsService
}

// NewMetricsMiddleware creates a new metrics middleware.
func NewMetricsMiddleware(metrics *system.MetricsService) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Metrics is a middleware that observes every request.
func (m *MetricsMiddleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.metrics.IncHTTPRequestsInProgress(r.Method, "all")
		defer m.metrics.DecHTTPRequestsInProgress(r.Method, "all")

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		m.metrics.ObserveHTTPRequest(r.Method, routePattern(r), rw.statusCode, time.Since(start))
	})
}

// routePattern returns the matched chi pattern, keeping label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
