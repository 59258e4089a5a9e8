package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (utils.LimitResult, error)
}

// RateLimitMiddleware throttles requests per client IP.
type RateLimitMiddleware struct {
	limiter Limiter
	metrics *system.MetricsService
	logger  *utils.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware.
func NewRateLimitMiddleware(limiter Limiter, metrics *system.MetricsService, logger *utils.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		metrics: metrics,
		logger:  logger.Named("rate_limit"),
	}
}

// Limit rejects requests over the limit with 429 and a Retry-After header.
// Limiter failures let the request through.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := utils.GetRequestIP(r)

		result, err := m.limiter.Allow(r.Context(), ip)
		if err != nil {
			m.logger.Error("Rate limiter unavailable", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := max(int(math.Ceil(result.RetryAfter.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			m.metrics.IncRateLimited(r.URL.Path)
			m.logger.Debug("Request rate limited", "ip", ip, "path", r.URL.Path)

			utils.RespondWithAppError(w, utils.RateLimitError("Too many requests, please slow down", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}
