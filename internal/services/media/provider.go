// Package media resolves candidate titles against external media catalogs.
package media

import (
	"context"

	"norelock.dev/moodmix/backend/internal/models"
)

// Provider resolves candidate titles against one catalog.
type Provider interface {
	// Resolve maps candidates to catalog records, best effort and in order.
	// Candidates with no match are skipped; the result is never nil.
	Resolve(ctx context.Context, candidates []string) []models.ResolvedItem

	// GetType returns the media type the provider serves.
	GetType() models.MediaType
}
