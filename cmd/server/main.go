package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"norelock.dev/moodmix/backend/internal/api"
	"norelock.dev/moodmix/backend/internal/api/middleware"
	"norelock.dev/moodmix/backend/internal/config"
	"norelock.dev/moodmix/backend/internal/db/redis"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/llm"
	"norelock.dev/moodmix/backend/internal/services/media"
	"norelock.dev/moodmix/backend/internal/services/recommend"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

func main() {
	// Create a context that will be canceled on interrupt signal
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing .env is normal outside local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	warnings := config.ValidateAndFixConfig(cfg)

	// Initialize logger
	logger := utils.NewLogger(utils.LoggerOptions{
		Development:      cfg.Logging.Format == "console",
		Level:            utils.ParseLevel(cfg.Logging.Level),
		OutputPaths:      cfg.Logging.OutputPaths,
		ErrorOutputPaths: cfg.Logging.ErrorOutputPaths,
	})
	utils.SetLogger(logger)
	defer logger.Sync()

	logger.Info("Starting recommendation server", "environment", cfg.Environment, "version", models.ServiceVersion)
	logger.Debug("Loaded configuration", "summary", config.GetConfigString(cfg))
	for _, warning := range warnings {
		logger.Warn(warning)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	var metrics *system.MetricsService
	if cfg.Metrics.Enabled {
		metrics = system.NewMetricsService(logger, nil)
	}

	// Initialize upstream clients
	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger, metrics)

	spotify := media.NewSpotifyProvider(media.SpotifyConfig{
		ClientID:     cfg.Catalog.Spotify.ClientID,
		ClientSecret: cfg.Catalog.Spotify.ClientSecret,
		TokenURL:     cfg.Catalog.Spotify.TokenURL,
		APIURL:       cfg.Catalog.Spotify.APIURL,
		Market:       cfg.Catalog.Spotify.Market,
		Timeout:      cfg.Catalog.Spotify.Timeout,
	}, logger, metrics)

	tmdb := media.NewTMDbProvider(media.TMDbConfig{
		APIKey:       cfg.Catalog.TMDb.APIKey,
		APIURL:       cfg.Catalog.TMDb.APIURL,
		ImageBaseURL: cfg.Catalog.TMDb.ImageBaseURL,
		SiteURL:      cfg.Catalog.TMDb.SiteURL,
		Language:     cfg.Catalog.TMDb.Language,
		Timeout:      cfg.Catalog.TMDb.Timeout,
	}, logger, metrics)

	// Initialize recommendation pipeline
	resolver := media.NewResolver(logger, metrics, spotify, tmdb)
	var textGen llm.TextGenerator
	if llmClient.Configured() {
		textGen = llmClient
	}
	generator := recommend.NewGenerator(textGen, logger, metrics)
	recommender := recommend.NewService(generator, resolver, recommend.ServiceConfig{
		DefaultLimit: cfg.Recommendations.DefaultLimit,
		MaxLimit:     cfg.Recommendations.MaxLimit,
	}, logger, metrics)

	checks := map[string]system.HealthCheck{
		"llm":     llmClient.HealthCheck,
		"spotify": spotify.HealthCheck,
		"tmdb":    tmdb.HealthCheck,
	}

	// Initialize rate limiting
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		switch cfg.RateLimit.Backend {
		case "redis":
			redisClient, err := redis.NewClient(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("rate limit backend: %w", err)
			}
			defer redisClient.Close()

			checks["redis"] = redisClient.HealthCheck
			limiter = redis.NewRateLimiter(redisClient, "recommendations", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		default:
			local := utils.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.Requests)
			go local.CleanupLoop(ctx, cfg.RateLimit.Window)
			limiter = local
		}
		logger.Info("Rate limiting enabled",
			"backend", cfg.RateLimit.Backend,
			"requests", cfg.RateLimit.Requests,
			"window", cfg.RateLimit.Window,
		)
	}

	// Start health service
	healthService := system.NewHealthService(logger, system.HealthServiceConfig{
		Version:     models.ServiceVersion,
		Environment: cfg.Environment,
	}, checks)
	healthService.Start(ctx)

	// Initialize API router
	router := api.NewRouter(api.Dependencies{
		Recommender:   recommender,
		HealthService: healthService,
		Metrics:       metrics,
		Limiter:       limiter,
	}, cfg, logger)

	apiAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         apiAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", apiAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
