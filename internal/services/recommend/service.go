// Package recommend turns a mood into catalog-resolved media recommendations.
package recommend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

const (
	msgInvalidMediaType = "Invalid media type. Use: music, movies, books, podcasts"
	msgNotFound         = "No recommendations found"
	msgInternal         = "Internal server error"
)

// CandidateGenerator produces candidate titles for a mood.
type CandidateGenerator interface {
	Generate(ctx context.Context, mood string, mediaType models.MediaType, limit int) []string
}

// CatalogResolver resolves candidates against the catalog of a media type.
type CatalogResolver interface {
	Supports(mediaType models.MediaType) bool
	Resolve(ctx context.Context, mediaType models.MediaType, candidates []string) ([]models.ResolvedItem, error)
}

// ServiceConfig contains configuration for the recommendation service.
type ServiceConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Service orchestrates candidate generation and catalog resolution.
type Service struct {
	generator CandidateGenerator
	catalog   CatalogResolver
	config    ServiceConfig
	logger    *utils.Logger
	metrics   *system.MetricsService
}

// NewService creates a new recommendation service.
func NewService(generator CandidateGenerator, catalog CatalogResolver, config ServiceConfig, logger *utils.Logger, metrics *system.MetricsService) *Service {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = models.DefaultLimit
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 50
	}

	return &Service{
		generator: generator,
		catalog:   catalog,
		config:    config,
		logger:    logger.Named("recommendation_service"),
		metrics:   metrics,
	}
}

// RecommendMedia handles a unified request.
func (s *Service) RecommendMedia(ctx context.Context, req models.MediaRecommendationRequest) (*models.RecommendationResult, error) {
	query, ok := req.ToQuery()
	if !ok {
		s.metrics.IncRecommendation("invalid", http.StatusBadRequest)
		return nil, utils.BadRequestError(msgInvalidMediaType, nil)
	}
	if req.Limit == nil {
		query.Limit = s.config.DefaultLimit
	}
	return s.Recommend(ctx, query)
}

// RecommendLegacy handles the music-only request shape and reshapes the result.
func (s *Service) RecommendLegacy(ctx context.Context, req models.MoodRequest) (*models.RecommendationResponse, error) {
	query := req.ToQuery()
	if req.Limit == nil {
		query.Limit = s.config.DefaultLimit
	}

	result, err := s.Recommend(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.ToLegacy(), nil
}

// Recommend validates the media type, generates candidates and resolves them.
// Every returned error is an *utils.AppError; panics become 500s.
func (s *Service) Recommend(ctx context.Context, query models.MoodQuery) (result *models.RecommendationResult, err error) {
	start := time.Now()
	log := s.logger.With("media_type", query.MediaType, "limit", query.Limit)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic in recommendation pipeline", fmt.Errorf("panic: %v", r))
			result, err = nil, utils.InternalServerError(msgInternal, fmt.Errorf("panic: %v", r))
		}
		s.metrics.IncRecommendation(query.MediaType.String(), statusOf(err))
	}()

	if query.MediaType.IsComingSoon() {
		return nil, utils.NotImplementedError(notImplementedMessage(query.MediaType), nil)
	}
	if !query.MediaType.IsSupported() || !s.catalog.Supports(query.MediaType) {
		return nil, utils.BadRequestError(msgInvalidMediaType, nil)
	}

	if query.Limit <= 0 {
		query.Limit = s.config.DefaultLimit
	}
	if query.Limit > s.config.MaxLimit {
		query.Limit = s.config.MaxLimit
	}

	candidates := s.generator.Generate(ctx, query.Mood, query.MediaType, query.Limit)
	if len(candidates) == 0 {
		log.Info("No candidates generated", "mood", utils.TruncateString(query.Mood, 80))
		return nil, utils.NotFoundError(msgNotFound, nil)
	}

	items, err := s.catalog.Resolve(ctx, query.MediaType, candidates)
	if err != nil {
		log.Error("Catalog resolution failed", err)
		return nil, utils.InternalServerError(msgInternal, err)
	}

	log.Info("Recommendations resolved",
		"candidates", len(candidates),
		"resolved", len(items),
		"duration", time.Since(start),
	)

	return models.NewRecommendationResult(query, items), nil
}

func notImplementedMessage(mediaType models.MediaType) string {
	name := mediaType.String()
	return strings.ToUpper(name[:1]) + name[1:] + " not implemented yet"
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return utils.StatusCode(err)
}
