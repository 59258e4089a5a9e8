// Package config provides functionality for loading and accessing application configuration.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ValidateAndFixConfig validates the configuration and fixes any issues.
// Missing credentials only produce warnings: the generator falls back to
// static tables and the resolvers return empty results.
func ValidateAndFixConfig(config *Config) []string {
	var warnings []string

	// Check credentials
	if config.LLM.APIKey == "" {
		warnings = append(warnings, "LLM API key is not set, candidates will come from fallback tables")
	}

	if config.Catalog.Spotify.ClientID == "" || config.Catalog.Spotify.ClientSecret == "" {
		warnings = append(warnings, "Spotify client credentials are not set, music results will be empty")
	}

	if config.Catalog.TMDb.APIKey == "" {
		warnings = append(warnings, "TMDb API key is not set, movie results will be empty")
	}

	// Check endpoint URLs
	for name, raw := range map[string]*string{
		"llm.base_url":                &config.LLM.BaseURL,
		"catalog.spotify.api_url":     &config.Catalog.Spotify.APIURL,
		"catalog.spotify.token_url":   &config.Catalog.Spotify.TokenURL,
		"catalog.tmdb.api_url":        &config.Catalog.TMDb.APIURL,
		"catalog.tmdb.image_base_url": &config.Catalog.TMDb.ImageBaseURL,
		"catalog.tmdb.site_url":       &config.Catalog.TMDb.SiteURL,
	} {
		u, err := url.Parse(*raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			warnings = append(warnings, fmt.Sprintf("Invalid URL for %s: %q", name, *raw))
			continue
		}
		*raw = strings.TrimRight(*raw, "/")
	}

	// Check server timeouts
	minTimeout := 1 * time.Second
	maxTimeout := 5 * time.Minute

	if config.Server.ReadTimeout < minTimeout {
		warnings = append(warnings, fmt.Sprintf("Server read timeout is too short (%v), setting to %v", config.Server.ReadTimeout, minTimeout))
		config.Server.ReadTimeout = minTimeout
	} else if config.Server.ReadTimeout > maxTimeout {
		warnings = append(warnings, fmt.Sprintf("Server read timeout is too long (%v), setting to %v", config.Server.ReadTimeout, maxTimeout))
		config.Server.ReadTimeout = maxTimeout
	}

	if config.Server.WriteTimeout < minTimeout {
		warnings = append(warnings, fmt.Sprintf("Server write timeout is too short (%v), setting to %v", config.Server.WriteTimeout, minTimeout))
		config.Server.WriteTimeout = minTimeout
	} else if config.Server.WriteTimeout > maxTimeout {
		warnings = append(warnings, fmt.Sprintf("Server write timeout is too long (%v), setting to %v", config.Server.WriteTimeout, maxTimeout))
		config.Server.WriteTimeout = maxTimeout
	}

	if config.Server.IdleTimeout < minTimeout {
		warnings = append(warnings, fmt.Sprintf("Server idle timeout is too short (%v), setting to %v", config.Server.IdleTimeout, minTimeout))
		config.Server.IdleTimeout = minTimeout
	}

	// Check upstream timeouts
	for name, d := range map[string]*time.Duration{
		"llm":             &config.LLM.Timeout,
		"catalog.spotify": &config.Catalog.Spotify.Timeout,
		"catalog.tmdb":    &config.Catalog.TMDb.Timeout,
	} {
		if *d <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s timeout must be positive, setting to 10s", name))
			*d = 10 * time.Second
		}
	}

	// Check recommendation limits
	if config.Recommendations.DefaultLimit < 1 || config.Recommendations.DefaultLimit > config.Recommendations.MaxLimit {
		warnings = append(warnings, fmt.Sprintf("Default limit %d is outside 1..%d, setting to %d",
			config.Recommendations.DefaultLimit, config.Recommendations.MaxLimit, min(10, config.Recommendations.MaxLimit)))
		config.Recommendations.DefaultLimit = min(10, config.Recommendations.MaxLimit)
	}

	// Check Redis addresses
	if config.RateLimit.Enabled && config.RateLimit.Backend == "redis" {
		for _, addr := range config.Database.Redis.Addresses {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid Redis address: %s", addr))
				continue
			}

			if host == "" {
				warnings = append(warnings, fmt.Sprintf("Redis address has empty host: %s", addr))
			}

			if port == "" {
				warnings = append(warnings, fmt.Sprintf("Redis address has empty port: %s", addr))
			}
		}
	}

	if config.RateLimit.Window <= 0 {
		warnings = append(warnings, "Rate limit window must be positive, setting to 1m")
		config.RateLimit.Window = time.Minute
	}

	// Check metrics path
	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		warnings = append(warnings, fmt.Sprintf("Metrics path %q must start with '/', setting to /metrics", config.Metrics.Path))
		config.Metrics.Path = "/metrics"
	}

	// Check logging configuration
	validLevels := []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}
	if !lo.Contains(validLevels, strings.ToLower(config.Logging.Level)) {
		warnings = append(warnings, fmt.Sprintf("Invalid logging level: %s, setting to 'info'", config.Logging.Level))
		config.Logging.Level = "info"
	}

	validFormats := []string{"json", "console"}
	if !lo.Contains(validFormats, strings.ToLower(config.Logging.Format)) {
		warnings = append(warnings, fmt.Sprintf("Invalid logging format: %s, setting to 'json'", config.Logging.Format))
		config.Logging.Format = "json"
	}

	// Check if output paths exist
	for _, path := range config.Logging.OutputPaths {
		if path != "stdout" && path != "stderr" {
			dir := filepath.Dir(path)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				warnings = append(warnings, fmt.Sprintf("Log output directory does not exist: %s", dir))
			}
		}
	}

	return warnings
}

// CreateDefaultConfig creates the default configuration
func CreateDefaultConfig() *Config {
	config := &Config{}

	config.Environment = "development"

	config.Server.Port = 8000
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 15 * time.Second
	config.Server.WriteTimeout = 90 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.ShutdownTimeout = 30 * time.Second

	config.LLM.BaseURL = "https://api.openai.com/v1"
	config.LLM.Model = "gpt-3.5-turbo"
	config.LLM.Temperature = 0.7
	config.LLM.MaxTokens = 1000
	config.LLM.Timeout = 30 * time.Second

	config.Catalog.Spotify.TokenURL = "https://accounts.spotify.com/api/token"
	config.Catalog.Spotify.APIURL = "https://api.spotify.com/v1"
	config.Catalog.Spotify.Market = "US"
	config.Catalog.Spotify.Timeout = 10 * time.Second

	config.Catalog.TMDb.APIURL = "https://api.themoviedb.org/3"
	config.Catalog.TMDb.ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	config.Catalog.TMDb.SiteURL = "https://www.themoviedb.org"
	config.Catalog.TMDb.Language = "en-US"
	config.Catalog.TMDb.Timeout = 10 * time.Second

	config.Recommendations.DefaultLimit = 10
	config.Recommendations.MaxLimit = 50

	config.RateLimit.Enabled = false
	config.RateLimit.Backend = "memory"
	config.RateLimit.Requests = 30
	config.RateLimit.Window = time.Minute

	config.Database.Redis.Addresses = []string{"localhost:6379"}
	config.Database.Redis.MaxRetries = 3
	config.Database.Redis.PoolSize = 20
	config.Database.Redis.MinIdleConns = 2
	config.Database.Redis.DialTimeout = 5 * time.Second
	config.Database.Redis.ReadTimeout = 3 * time.Second
	config.Database.Redis.WriteTimeout = 3 * time.Second

	config.CORS.AllowedOrigins = []string{"*"}

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.OutputPaths = []string{"stdout"}
	config.Logging.ErrorOutputPaths = []string{"stderr"}

	return config
}
