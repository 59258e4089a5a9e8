// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"
	"net/http"

	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/utils"
)

// Recommender produces recommendations for the unified and legacy request shapes.
type Recommender interface {
	RecommendMedia(ctx context.Context, req models.MediaRecommendationRequest) (*models.RecommendationResult, error)
	RecommendLegacy(ctx context.Context, req models.MoodRequest) (*models.RecommendationResponse, error)
}

// MediaHandler handles HTTP requests for mood-based recommendations.
type MediaHandler struct {
	recommender Recommender
	logger      *utils.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(recommender Recommender, logger *utils.Logger) *MediaHandler {
	return &MediaHandler{
		recommender: recommender,
		logger:      logger.Named("media_handler"),
	}
}

// MediaRecommendations handles POST /api/media-recommendations.
func (h *MediaHandler) MediaRecommendations(w http.ResponseWriter, r *http.Request) {
	var req models.MediaRecommendationRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.RespondWithValidationError(w, err)
		return
	}

	result, err := h.recommender.RecommendMedia(r.Context(), req)
	if err != nil {
		h.logFailure(err, req.MediaType)
		utils.RespondWithAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// Recommendations handles the music-only POST /api/recommendations.
func (h *MediaHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req models.MoodRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.RespondWithValidationError(w, err)
		return
	}

	result, err := h.recommender.RecommendLegacy(r.Context(), req)
	if err != nil {
		h.logFailure(err, models.MediaTypeMusic.String())
		utils.RespondWithAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *MediaHandler) logFailure(err error, mediaType string) {
	if utils.StatusCode(err) >= http.StatusInternalServerError && !utils.IsNotImplemented(err) {
		h.logger.Error("Recommendation failed", err, "mediaType", mediaType)
		return
	}
	h.logger.Debug("Recommendation rejected", "mediaType", mediaType, "reason", utils.PublicMessage(err))
}
