// Package media resolves candidate titles against external media catalogs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// maxResponseBytes bounds catalog response bodies.
const maxResponseBytes = 4 << 20

// StatusError is a non-2xx catalog response.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Service, e.StatusCode, e.Body)
}

// countsAsSuccess keeps caller mistakes and cancellations from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// apiClient issues JSON GET requests to one catalog behind a circuit breaker.
type apiClient struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	metrics    *system.MetricsService
}

func newAPIClient(name string, httpClient *http.Client, logger *utils.Logger, metrics *system.MetricsService) *apiClient {
	breakerCfg := utils.DefaultBreakerConfig(name)
	breakerCfg.IsSuccessful = countsAsSuccess
	breakerCfg.OnTransition = metrics.SetCircuitBreakerState

	return &apiClient{
		name:       name,
		httpClient: httpClient,
		breaker:    utils.NewCircuitBreaker[[]byte](breakerCfg, logger),
		metrics:    metrics,
	}
}

// getJSON fetches endpoint with query and decodes the body into dst.
func (c *apiClient) getJSON(ctx context.Context, endpoint string, query url.Values, dst any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, endpoint)
	})
	c.metrics.ObserveExternalRequest(c.name, time.Since(start), err)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}
	return nil
}

func (c *apiClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Service: c.name, StatusCode: resp.StatusCode, Body: utils.TruncateString(string(body), 256)}
	}
	return body, nil
}

// healthCheck maps the breaker state to a component status.
func (c *apiClient) healthCheck() (system.HealthStatus, string) {
	switch c.breaker.State() {
	case gobreaker.StateOpen:
		return system.StatusDown, "circuit open"
	case gobreaker.StateHalfOpen:
		return system.StatusDegraded, "circuit half-open"
	default:
		return system.StatusUp, "circuit closed"
	}
}
