// Package llm provides a client for chat-completions style text generation APIs.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("llm: api key not configured")

// TextGenerator produces a completion for a system and user prompt.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config contains configuration for the chat-completions client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// APIError is a non-2xx response from the completions API.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error: %d - %s", e.StatusCode, e.Body)
}

// Client calls a chat-completions endpoint behind a circuit breaker.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *utils.Logger
	metrics    *system.MetricsService
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new completions client.
func NewClient(config Config, logger *utils.Logger, metrics *system.MetricsService) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	breakerCfg := utils.DefaultBreakerConfig("llm")
	breakerCfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	breakerCfg.OnTransition = metrics.SetCircuitBreakerState

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    utils.NewCircuitBreaker[string](breakerCfg, logger),
		logger:     logger.Named("llm_client"),
		metrics:    metrics,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

// Complete returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	content, err := c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, systemPrompt, userPrompt)
	})
	c.metrics.ObserveExternalRequest("llm", time.Since(start), err)

	if err != nil {
		if utils.IsBreakerRejection(err) {
			c.logger.Warn("Completion rejected by circuit breaker", "error", err)
		}
		return "", err
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: utils.TruncateString(string(body), 256)}
	}

	var data chatResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(data.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}

	return strings.TrimSpace(data.Choices[0].Message.Content), nil
}

// HealthCheck reports the client state for the health service.
func (c *Client) HealthCheck(_ context.Context) (system.HealthStatus, string) {
	if !c.Configured() {
		return system.StatusDegraded, "API key not configured, using fallback tables"
	}
	switch c.breaker.State() {
	case gobreaker.StateOpen:
		return system.StatusDown, "circuit open"
	case gobreaker.StateHalfOpen:
		return system.StatusDegraded, "circuit half-open"
	default:
		return system.StatusUp, "circuit closed"
	}
}
