// Package media resolves candidate titles against external media catalogs.
package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// ErrNoProvider is returned when no provider is registered for a media type.
var ErrNoProvider = errors.New("no provider registered for media type")

// Resolver dispatches candidate resolution to the provider registered for a media type.
type Resolver struct {
	mu        sync.RWMutex
	providers map[models.MediaType]Provider
	logger    *utils.Logger
	metrics   *system.MetricsService
}

// NewResolver creates a new media resolver with the given providers.
func NewResolver(logger *utils.Logger, metrics *system.MetricsService, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[models.MediaType]Provider),
		logger:    logger.Named("media_resolver"),
		metrics:   metrics,
	}

	for _, provider := range providers {
		r.RegisterProvider(provider)
	}

	return r
}

// RegisterProvider registers a media provider, replacing any for the same type.
func (r *Resolver) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[provider.GetType()] = provider
	r.logger.Info("Registered media provider", "type", provider.GetType())
}

// Supports reports whether a provider is registered for mediaType.
func (r *Resolver) Supports(mediaType models.MediaType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[mediaType]
	return ok
}

// Resolve resolves candidates with the provider for mediaType. Callers gate
// on Supports first.
func (r *Resolver) Resolve(ctx context.Context, mediaType models.MediaType, candidates []string) ([]models.ResolvedItem, error) {
	r.mu.RLock()
	provider, ok := r.providers[mediaType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, mediaType)
	}

	r.logger.Debug("Resolving candidates", "media_type", mediaType, "candidates", len(candidates))

	items := provider.Resolve(ctx, candidates)
	if items == nil {
		items = []models.ResolvedItem{}
	}
	r.metrics.AddResolved(mediaType.String(), len(items), len(candidates)-len(items))

	return items, nil
}
