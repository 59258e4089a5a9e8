// Package models contains the data structures used throughout the application.
package models

// DefaultLimit is used when a request omits limit.
const DefaultLimit = 10

// MediaRecommendationRequest is the inbound body of the unified endpoint.
type MediaRecommendationRequest struct {
	// Mood is the free-text mood; empty is allowed.
	Mood string `json:"mood" validate:"max=500,nocontrol"`

	// MediaType selects the catalog; defaults to music when omitted.
	MediaType string `json:"media_type" validate:"max=32"`

	// Limit caps the number of results; defaults to DefaultLimit.
	Limit *int `json:"limit" validate:"omitempty,min=1,max=50"`
}

// MoodRequest is the inbound body of the music-only legacy endpoint.
type MoodRequest struct {
	// Mood is the free-text mood; empty is allowed.
	Mood string `json:"mood" validate:"max=500,nocontrol"`

	// Limit caps the number of tracks; defaults to DefaultLimit.
	Limit *int `json:"limit" validate:"omitempty,min=1,max=50"`
}

// MoodQuery is a validated, request-scoped recommendation query.
type MoodQuery struct {
	Mood      string
	MediaType MediaType
	Limit     int
}

// ToQuery converts the unified request; media type validity is checked by the caller.
func (r MediaRecommendationRequest) ToQuery() (MoodQuery, bool) {
	raw := r.MediaType
	if raw == "" {
		raw = string(MediaTypeMusic)
	}
	mediaType, ok := ParseMediaType(raw)
	return MoodQuery{
		Mood:      r.Mood,
		MediaType: mediaType,
		Limit:     limitOrDefault(r.Limit),
	}, ok
}

// ToQuery rewrites the legacy request as a music query.
func (r MoodRequest) ToQuery() MoodQuery {
	return MoodQuery{
		Mood:      r.Mood,
		MediaType: MediaTypeMusic,
		Limit:     limitOrDefault(r.Limit),
	}
}

func limitOrDefault(limit *int) int {
	if limit == nil {
		return DefaultLimit
	}
	return *limit
}

// RecommendationResult is the unified response. TotalFound always equals len(Results).
type RecommendationResult struct {
	Mood       string         `json:"mood"`
	MediaType  MediaType      `json:"media_type"`
	Results    []ResolvedItem `json:"results"`
	TotalFound int            `json:"total_found"`
}

// NewRecommendationResult builds a result whose count matches its items.
func NewRecommendationResult(query MoodQuery, items []ResolvedItem) *RecommendationResult {
	if items == nil {
		items = []ResolvedItem{}
	}
	return &RecommendationResult{
		Mood:       query.Mood,
		MediaType:  query.MediaType,
		Results:    items,
		TotalFound: len(items),
	}
}

// RecommendationResponse is the legacy music-only response shape.
type RecommendationResponse struct {
	Mood       string         `json:"mood"`
	Tracks     []ResolvedItem `json:"tracks"`
	TotalFound int            `json:"total_found"`
}

// ToLegacy reshapes a unified result; the tracks are the unified results unchanged.
func (r *RecommendationResult) ToLegacy() *RecommendationResponse {
	return &RecommendationResponse{
		Mood:       r.Mood,
		Tracks:     r.Results,
		TotalFound: r.TotalFound,
	}
}
