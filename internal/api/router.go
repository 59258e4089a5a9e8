// Package api provides the HTTP API for the application.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"norelock.dev/moodmix/backend/internal/api/handlers"
	appMiddleware "norelock.dev/moodmix/backend/internal/api/middleware"
	"norelock.dev/moodmix/backend/internal/config"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// Router is the main HTTP router for the API.
type Router struct {
	*chi.Mux
}

// Dependencies are the services the router exposes over HTTP.
type Dependencies struct {
	Recommender   handlers.Recommender
	HealthService *system.HealthService
	Metrics       *system.MetricsService
	// Limiter throttles the recommendation endpoints; nil disables throttling.
	Limiter appMiddleware.Limiter
}

// NewRouter creates a new API router.
func NewRouter(deps Dependencies, cfg *config.Config, logger *utils.Logger) *Router {
	r := chi.NewRouter()
	apiLogger := logger.Named("api")

	corsConfig := appMiddleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = cfg.CORS.AllowedOrigins
	}

	// Create middleware
	recoveryMiddleware := appMiddleware.NewRecoveryMiddleware(apiLogger)
	loggerMiddleware := appMiddleware.NewLoggerMiddleware(apiLogger)
	corsMiddleware := appMiddleware.NewCORSMiddleware(corsConfig, apiLogger)
	metricsMiddleware := appMiddleware.NewMetricsMiddleware(deps.Metrics)

	// Create handlers
	mediaHandler := handlers.NewMediaHandler(deps.Recommender, apiLogger)
	healthHandler := handlers.NewHealthHandler(apiLogger, deps.HealthService)

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(loggerMiddleware.Logger)
	r.Use(metricsMiddleware.Metrics)
	r.Use(recoveryMiddleware.Recovery)
	r.Use(corsMiddleware.CORS)
	r.Use(chimiddleware.Heartbeat("/ping"))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondWithError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", healthHandler.Root)

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Check)
		r.Get("/supported-media-types", healthHandler.SupportedMediaTypes)

		// Recommendation routes
		r.Group(func(r chi.Router) {
			if deps.Limiter != nil {
				r.Use(appMiddleware.NewRateLimitMiddleware(deps.Limiter, deps.Metrics, apiLogger).Limit)
			}

			r.Post("/media-recommendations", mediaHandler.MediaRecommendations)
			r.Post("/recommendations", mediaHandler.Recommendations)
		})
	})

	return &Router{Mux: r}
}
