// Package system provides system-level services for monitoring.
package system

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"norelock.dev/moodmix/backend/internal/utils"
)

const namespace = "moodmix"

// MetricsService provides application metrics collection functionality.
// All methods are safe to call on a nil receiver.
type MetricsService struct {
	logger   *utils.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	httpRequestsInProgress *prometheus.GaugeVec
	httpRateLimitedTotal   *prometheus.CounterVec

	// Recommendation metrics
	recommendationsTotal *prometheus.CounterVec
	candidatesTotal      *prometheus.CounterVec
	resolvedItemsTotal   *prometheus.CounterVec
	resolveMissesTotal   *prometheus.CounterVec

	// Upstream metrics
	externalRequestsTotal   *prometheus.CounterVec
	externalRequestDuration *prometheus.HistogramVec
	circuitBreakerState     *prometheus.GaugeVec
	circuitBreakerChanges   *prometheus.CounterVec
}

// NewMetricsService creates a new metrics service registered on reg.
// A nil reg gets a fresh registry with the Go and process collectors.
func NewMetricsService(logger *utils.Logger, reg *prometheus.Registry) *MetricsService {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &MetricsService{
		logger:   logger.Named("metrics_service"),
		registry: reg,
	}

	factory := promauto.With(reg)
	m.initHTTPMetrics(factory)
	m.initRecommendationMetrics(factory)
	m.initUpstreamMetrics(factory)

	return m
}

// Handler returns an HTTP handler for exposing metrics.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry the metrics are registered on.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// initHTTPMetrics initializes HTTP-related metrics.
func (m *MetricsService) initHTTPMetrics(factory promauto.Factory) {
	m.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.httpRequestsInProgress = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "Number of HTTP requests currently in progress",
		},
		[]string{"method", "path"},
	)

	m.httpRateLimitedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
}

// initRecommendationMetrics initializes recommendation pipeline metrics.
func (m *MetricsService) initRecommendationMetrics(factory promauto.Factory) {
	m.recommendationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests by outcome",
		},
		[]string{"media_type", "outcome"},
	)

	m.candidatesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_generated_total",
			Help:      "Total number of candidate titles produced",
		},
		[]string{"media_type", "source"},
	)

	m.resolvedItemsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolved_items_total",
			Help:      "Total number of candidates resolved against a catalog",
		},
		[]string{"media_type"},
	)

	m.resolveMissesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_misses_total",
			Help:      "Total number of candidates with no catalog match",
		},
		[]string{"media_type"},
	)
}

// initUpstreamMetrics initializes metrics for external API calls.
func (m *MetricsService) initUpstreamMetrics(factory promauto.Factory) {
	m.externalRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_requests_total",
			Help:      "Total number of requests to external APIs",
		},
		[]string{"service", "outcome"},
	)

	m.externalRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_request_duration_seconds",
			Help:      "Latency of requests to external APIs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	m.circuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	m.circuitBreakerChanges = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
}

// ObserveHTTPRequest records metrics for an HTTP request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncHTTPRequestsInProgress increments the in-progress HTTP requests counter.
func (m *MetricsService) IncHTTPRequestsInProgress(method, path string) {
	if m == nil {
		return
	}
	m.httpRequestsInProgress.WithLabelValues(method, path).Inc()
}

// DecHTTPRequestsInProgress decrements the in-progress HTTP requests counter.
func (m *MetricsService) DecHTTPRequestsInProgress(method, path string) {
	if m == nil {
		return
	}
	m.httpRequestsInProgress.WithLabelValues(method, path).Dec()
}

// IncRateLimited counts a request rejected by the rate limiter.
func (m *MetricsService) IncRateLimited(path string) {
	if m == nil {
		return
	}
	m.httpRateLimitedTotal.WithLabelValues(path).Inc()
}

// IncRecommendation counts a finished recommendation by HTTP status.
func (m *MetricsService) IncRecommendation(mediaType string, status int) {
	if m == nil {
		return
	}
	m.recommendationsTotal.WithLabelValues(mediaType, strconv.Itoa(status)).Inc()
}

// AddCandidates counts generated candidates; source is "llm" or "fallback".
func (m *MetricsService) AddCandidates(mediaType, source string, n int) {
	if m == nil {
		return
	}
	m.candidatesTotal.WithLabelValues(mediaType, source).Add(float64(n))
}

// AddResolved counts resolved items and misses for one resolution pass.
func (m *MetricsService) AddResolved(mediaType string, resolved, missed int) {
	if m == nil {
		return
	}
	m.resolvedItemsTotal.WithLabelValues(mediaType).Add(float64(resolved))
	m.resolveMissesTotal.WithLabelValues(mediaType).Add(float64(missed))
}

// ObserveExternalRequest records one call to an external API.
func (m *MetricsService) ObserveExternalRequest(service string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.externalRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.externalRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// SetCircuitBreakerState records a breaker transition.
func (m *MetricsService) SetCircuitBreakerState(name, from, to string, value float64) {
	if m == nil {
		return
	}
	m.circuitBreakerState.WithLabelValues(name).Set(value)
	m.circuitBreakerChanges.WithLabelValues(name, from, to).Inc()
}
