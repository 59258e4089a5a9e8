// Package config provides functionality for loading and accessing application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Environment is the current running environment (development, staging, production)
	Environment string `mapstructure:"environment"`

	// Server configuration
	Server struct {
		// Port is the HTTP server port
		Port int `mapstructure:"port"`
		// Host is the HTTP server host
		Host string `mapstructure:"host"`
		// ReadTimeout is the maximum duration for reading the entire request
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request
		IdleTimeout time.Duration `mapstructure:"idle_timeout"`
		// ShutdownTimeout bounds graceful shutdown
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
		// Enable only behind a proxy that overwrites those headers.
		TrustProxy bool `mapstructure:"trust_proxy"`
	} `mapstructure:"server"`

	// LLM configures the generative text service used to produce candidates
	LLM struct {
		// APIKey authenticates against the chat completions API
		APIKey string `mapstructure:"api_key"`
		// BaseURL is the API root, e.g. https://api.openai.com/v1
		BaseURL string `mapstructure:"base_url"`
		// Model is the chat model name
		Model string `mapstructure:"model"`
		// Temperature is the sampling temperature
		Temperature float64 `mapstructure:"temperature"`
		// MaxTokens bounds the completion length
		MaxTokens int `mapstructure:"max_tokens"`
		// Timeout is the HTTP client timeout
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`

	// Catalog configures the media catalogs candidates are resolved against
	Catalog struct {
		Spotify struct {
			ClientID     string        `mapstructure:"client_id"`
			ClientSecret string        `mapstructure:"client_secret"`
			TokenURL     string        `mapstructure:"token_url"`
			APIURL       string        `mapstructure:"api_url"`
			Market       string        `mapstructure:"market"`
			Timeout      time.Duration `mapstructure:"timeout"`
		} `mapstructure:"spotify"`

		TMDb struct {
			APIKey       string        `mapstructure:"api_key"`
			APIURL       string        `mapstructure:"api_url"`
			ImageBaseURL string        `mapstructure:"image_base_url"`
			SiteURL      string        `mapstructure:"site_url"`
			Language     string        `mapstructure:"language"`
			Timeout      time.Duration `mapstructure:"timeout"`
		} `mapstructure:"tmdb"`
	} `mapstructure:"catalog"`

	// Recommendations configures request limits
	Recommendations struct {
		// DefaultLimit applies when a request omits limit
		DefaultLimit int `mapstructure:"default_limit"`
		// MaxLimit caps any requested limit
		MaxLimit int `mapstructure:"max_limit"`
	} `mapstructure:"recommendations"`

	// RateLimit configures throttling of the recommendation endpoints
	RateLimit struct {
		Enabled bool `mapstructure:"enabled"`
		// Backend is "memory" or "redis"
		Backend  string        `mapstructure:"backend"`
		Requests int           `mapstructure:"requests"`
		Window   time.Duration `mapstructure:"window"`
	} `mapstructure:"rate_limit"`

	// Database configuration
	Database struct {
		// Redis backs the distributed rate limiter
		Redis struct {
			Addresses    []string      `mapstructure:"addresses"`
			Username     string        `mapstructure:"username"`
			Password     string        `mapstructure:"password"`
			Database     int           `mapstructure:"database"`
			MaxRetries   int           `mapstructure:"max_retries"`
			PoolSize     int           `mapstructure:"pool_size"`
			MinIdleConns int           `mapstructure:"min_idle_conns"`
			DialTimeout  time.Duration `mapstructure:"dial_timeout"`
			ReadTimeout  time.Duration `mapstructure:"read_timeout"`
			WriteTimeout time.Duration `mapstructure:"write_timeout"`
		} `mapstructure:"redis"`
	} `mapstructure:"database"`

	// CORS configuration
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`

	// Metrics configuration
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`

	// Logging configuration
	Logging struct {
		// Level is the logging level
		Level string `mapstructure:"level"`
		// Format is the logging format (json or console)
		Format string `mapstructure:"format"`
		// OutputPaths is the list of output paths for logs
		OutputPaths []string `mapstructure:"output_paths"`
		// ErrorOutputPaths is the list of output paths for error logs
		ErrorOutputPaths []string `mapstructure:"error_output_paths"`
	} `mapstructure:"logging"`
}

// legacyEnv maps config keys to the unprefixed variable names older
// deployments export, checked after the APP_ prefixed form.
var legacyEnv = map[string]string{
	"llm.api_key":                   "OPENAI_API_KEY",
	"catalog.spotify.client_id":     "SPOTIFY_CLIENT_ID",
	"catalog.spotify.client_secret": "SPOTIFY_CLIENT_SECRET",
	"catalog.tmdb.api_key":          "TMDB_API_KEY",
	"server.port":                   "PORT",
}

// LoadConfig loads the configuration from file and environment variables.
// It looks for a configuration file in the following locations:
// 1. Path specified in the CONFIG_FILE environment variable
// 2. ./configs directory
// 3. ../configs directory
// 4. /etc/moodmix directory
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("app")
	v.SetConfigType("yaml")

	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("/etc/moodmix")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v.SetConfigName(fmt.Sprintf("app.%s", env))
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to merge environment config file: %w", err)
		}
	}

	return fromViper(v, env)
}

// fromViper binds environment variables, unmarshals and validates.
func fromViper(v *viper.Viper, env string) (*Config, error) {
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		envKey := "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Environment = env

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default values for the configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.trust_proxy", false)

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.timeout", "30s")

	// Catalog defaults
	v.SetDefault("catalog.spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("catalog.spotify.api_url", "https://api.spotify.com/v1")
	v.SetDefault("catalog.spotify.market", "US")
	v.SetDefault("catalog.spotify.timeout", "10s")
	v.SetDefault("catalog.tmdb.api_url", "https://api.themoviedb.org/3")
	v.SetDefault("catalog.tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("catalog.tmdb.site_url", "https://www.themoviedb.org")
	v.SetDefault("catalog.tmdb.language", "en-US")
	v.SetDefault("catalog.tmdb.timeout", "10s")

	// Recommendation defaults
	v.SetDefault("recommendations.default_limit", 10)
	v.SetDefault("recommendations.max_limit", 50)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	// Redis defaults
	v.SetDefault("database.redis.addresses", []string{"localhost:6379"})
	v.SetDefault("database.redis.database", 0)
	v.SetDefault("database.redis.max_retries", 3)
	v.SetDefault("database.redis.pool_size", 20)
	v.SetDefault("database.redis.min_idle_conns", 2)
	v.SetDefault("database.redis.dial_timeout", "5s")
	v.SetDefault("database.redis.read_timeout", "3s")
	v.SetDefault("database.redis.write_timeout", "3s")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

// validateConfig rejects configurations the server cannot start with.
// Missing API keys are not fatal; see ValidateAndFixConfig.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}

	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return errors.New("llm temperature must be between 0 and 2")
	}

	if config.LLM.MaxTokens <= 0 {
		return errors.New("llm max_tokens must be positive")
	}

	if config.Recommendations.MaxLimit < 1 {
		return errors.New("recommendations max_limit must be at least 1")
	}

	if config.RateLimit.Enabled {
		switch config.RateLimit.Backend {
		case "memory":
		case "redis":
			if len(config.Database.Redis.Addresses) == 0 {
				return errors.New("at least one Redis address must be provided for the redis rate limit backend")
			}
		default:
			return fmt.Errorf("unknown rate limit backend %q", config.RateLimit.Backend)
		}
		if config.RateLimit.Requests < 1 {
			return errors.New("rate limit requests must be at least 1")
		}
	}

	return nil
}

// GetConfigString returns a formatted string with the current configuration, secrets omitted
func GetConfigString(config *Config) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Environment: %s\n", config.Environment))
	sb.WriteString(fmt.Sprintf("Server: %s:%d (trust proxy %t)\n", config.Server.Host, config.Server.Port, config.Server.TrustProxy))
	sb.WriteString(fmt.Sprintf("LLM Model: %s (temperature %.1f, max tokens %d)\n", config.LLM.Model, config.LLM.Temperature, config.LLM.MaxTokens))
	sb.WriteString(fmt.Sprintf("Spotify Market: %s\n", config.Catalog.Spotify.Market))
	sb.WriteString(fmt.Sprintf("Max Limit: %d\n", config.Recommendations.MaxLimit))
	sb.WriteString(fmt.Sprintf("Rate Limit: %t (%s, %d per %s)\n", config.RateLimit.Enabled, config.RateLimit.Backend, config.RateLimit.Requests, config.RateLimit.Window))
	sb.WriteString(fmt.Sprintf("Metrics: %t\n", config.Metrics.Enabled))

	return sb.String()
}
