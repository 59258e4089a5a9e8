// Package utils provides utility functions used throughout the application.
package utils

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig configures a circuit breaker around an external API.
type BreakerConfig struct {
	// Name labels logs and metrics
	Name string
	// MaxRequests is the number of probes allowed while half-open
	MaxRequests uint32
	// Interval resets the counts while closed
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing
	Timeout time.Duration
	// MinRequests is the sample size required before tripping
	MinRequests uint32
	// FailureRatio trips the breaker once reached
	FailureRatio float64
	// IsSuccessful classifies errors that should not count as failures
	IsSuccessful func(err error) bool
	// OnTransition observes state changes, e.g. for metrics
	OnTransition func(name, from, to string, value float64)
}

// DefaultBreakerConfig returns the settings used for catalog and LLM clients.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// NewCircuitBreaker builds a breaker that logs its transitions.
func NewCircuitBreaker[T any](cfg BreakerConfig, logger *Logger) *gobreaker.CircuitBreaker[T] {
	log := logger.Named("breaker").With("breaker", cfg.Name)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				log.Warn("Opening circuit", "failures", counts.TotalFailures, "requests", counts.Requests)
				return true
			}
			return false
		},
		IsSuccessful: cfg.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("Circuit state transition", "from", BreakerStateString(from), "to", BreakerStateString(to))
			if cfg.OnTransition != nil {
				cfg.OnTransition(name, BreakerStateString(from), BreakerStateString(to), BreakerStateValue(to))
			}
		},
	})
}

// IsBreakerRejection reports whether err came from an open or saturated breaker.
func IsBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// BreakerStateValue converts a state to its metric value.
func BreakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerStateString converts a state to its log label.
func BreakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
