package handlers

import (
	"net/http"

	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// HealthHandler serves liveness and service introspection endpoints.
type HealthHandler struct {
	logger    *utils.Logger
	healthSvc *system.HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *utils.Logger, healthSvc *system.HealthService) *HealthHandler {
	return &HealthHandler{
		logger:    logger.Named("health_handler"),
		healthSvc: healthSvc,
	}
}

// RootResponse is the payload of GET /.
type RootResponse struct {
	Message        string             `json:"message"`
	SupportedMedia []models.MediaType `json:"supported_media"`
	ComingSoon     []models.MediaType `json:"coming_soon"`
	Version        string             `json:"version"`
}

// Root handles GET / with a short service description.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, RootResponse{
		Message:        "Universal Media Recommendation API is running!",
		SupportedMedia: models.SupportedMediaTypes,
		ComingSoon:     models.ComingSoonMediaTypes,
		Version:        models.ServiceVersion,
	})
}

// Check handles GET /api/health. It always answers 200 while the process
// serves requests; component state is informational.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, h.healthSvc.GetHealth())
}

// SupportedMediaTypes handles GET /api/supported-media-types.
func (h *HealthHandler) SupportedMediaTypes(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, models.SupportedMediaTypesResponse{
		SupportedTypes: models.SupportedMediaTypes,
		ComingSoon:     models.ComingSoonMediaTypes,
		Description:    models.MediaTypeDescriptions,
	})
}
