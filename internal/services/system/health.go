// Package system provides system-level services for monitoring.
package system

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"norelock.dev/moodmix/backend/internal/utils"
)

// ServiceName identifies this API in health responses.
const ServiceName = "unified-media-recommendation-api"

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	// StatusUp indicates the component is healthy.
	StatusUp HealthStatus = "up"
	// StatusDown indicates the component is unhealthy.
	StatusDown HealthStatus = "down"
	// StatusDegraded indicates the component is functioning but with issues.
	StatusDegraded HealthStatus = "degraded"
)

// ComponentHealth represents the health of a system component.
type ComponentHealth struct {
	Name        string       `json:"name"`
	Status      HealthStatus `json:"status"`
	Description string       `json:"description,omitempty"`
	Latency     int64        `json:"latency_ms,omitempty"` // Response time in milliseconds
	LastChecked time.Time    `json:"last_checked"`
}

// SystemHealth is the health endpoint payload. Status is "healthy" while
// the process serves requests; component problems only show per component.
type SystemHealth struct {
	Status      string            `json:"status"`
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Uptime      int64             `json:"uptime_seconds"`
	StartTime   time.Time         `json:"start_time"`
	GoVersion   string            `json:"go_version"`
	GoRoutines  int               `json:"go_routines"`
	Components  []ComponentHealth `json:"components"`
}

// HealthCheck probes one component.
type HealthCheck func(ctx context.Context) (HealthStatus, string)

// HealthService provides health checking functionality.
type HealthService struct {
	logger         *utils.Logger
	checks         map[string]HealthCheck
	startTime      time.Time
	version        string
	environment    string
	componentCache map[string]ComponentHealth
	cacheMutex     sync.RWMutex
	checkInterval  time.Duration
}

// HealthServiceConfig contains configuration for the health service.
type HealthServiceConfig struct {
	Version       string
	Environment   string
	CheckInterval time.Duration
}

// NewHealthService creates a new health service.
func NewHealthService(logger *utils.Logger, config HealthServiceConfig, checks map[string]HealthCheck) *HealthService {
	interval := config.CheckInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if checks == nil {
		checks = map[string]HealthCheck{}
	}

	return &HealthService{
		logger:         logger.Named("health_service"),
		checks:         checks,
		startTime:      time.Now(),
		version:        config.Version,
		environment:    config.Environment,
		componentCache: make(map[string]ComponentHealth),
		checkInterval:  interval,
	}
}

// Start begins periodic health checks.
func (s *HealthService) Start(ctx context.Context) {
	s.logger.Info("Starting health service", "components", len(s.checks))

	// Perform initial health check
	s.CheckHealth(ctx)

	go func() {
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Stopping health service")
				return
			case <-ticker.C:
				s.CheckHealth(ctx)
			}
		}
	}()
}

// CheckHealth runs every registered component check.
func (s *HealthService) CheckHealth(ctx context.Context) {
	s.logger.Debug("Performing health check")

	for name, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		start := time.Now()
		status, description := check(checkCtx)
		cancel()

		if status == StatusDown {
			s.logger.Warn("Health check failed", "component", name, "description", description)
		}
		s.updateComponentHealth(name, status, description, time.Since(start).Milliseconds())
	}
}

// GetHealth returns the current health status of the system.
func (s *HealthService) GetHealth() SystemHealth {
	s.cacheMutex.RLock()
	components := make([]ComponentHealth, 0, len(s.componentCache))
	for _, component := range s.componentCache {
		components = append(components, component)
	}
	s.cacheMutex.RUnlock()

	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })

	return SystemHealth{
		Status:      "healthy",
		Service:     ServiceName,
		Version:     s.version,
		Environment: s.environment,
		Uptime:      int64(time.Since(s.startTime).Seconds()),
		StartTime:   s.startTime,
		GoVersion:   runtime.Version(),
		GoRoutines:  runtime.NumGoroutine(),
		Components:  components,
	}
}

// updateComponentHealth updates the health status of a component in the cache.
func (s *HealthService) updateComponentHealth(name string, status HealthStatus, description string, latency int64) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.componentCache[name] = ComponentHealth{
		Name:        name,
		Status:      status,
		Description: description,
		Latency:     latency,
		LastChecked: time.Now(),
	}
}
