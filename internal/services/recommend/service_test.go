package recommend

import (
	"context"
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/media"
	"norelock.dev/moodmix/backend/internal/utils"
)

type stubGenerator struct {
	candidates []string
	panicWith  any
	calls      int
	lastLimit  int
}

func (s *stubGenerator) Generate(_ context.Context, _ string, _ models.MediaType, limit int) []string {
	s.calls++
	s.lastLimit = limit
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.candidates
}

type stubCatalog struct {
	calls    int
	received []string
	err      error
}

func (s *stubCatalog) Supports(mediaType models.MediaType) bool {
	return mediaType == models.MediaTypeMusic || mediaType == models.MediaTypeMovies
}

func (s *stubCatalog) Resolve(_ context.Context, mediaType models.MediaType, candidates []string) ([]models.ResolvedItem, error) {
	s.calls++
	s.received = candidates
	if s.err != nil {
		return nil, s.err
	}

	items := make([]models.ResolvedItem, 0, len(candidates))
	for _, c := range candidates {
		if mediaType == models.MediaTypeMovies {
			items = append(items, models.NewMovieItem(models.Movie{Title: c}))
			continue
		}
		items = append(items, models.NewTrackItem(models.Track{Name: c, Artist: "Artist"}))
	}
	return items, nil
}

func newTestService(gen *stubGenerator, catalog *stubCatalog) *Service {
	return NewService(gen, catalog, ServiceConfig{DefaultLimit: 10, MaxLimit: 50}, utils.NewNopLogger(), nil)
}

func TestRecommendResolvesAllCandidates(t *testing.T) {
	gen := &stubGenerator{candidates: []string{"a", "b", "c"}}
	catalog := &stubCatalog{}
	svc := newTestService(gen, catalog)

	result, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "happy", MediaType: models.MediaTypeMusic, Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalFound)
	assert.Len(t, result.Results, 3)
	assert.Equal(t, "happy", result.Mood)
	assert.Equal(t, models.MediaTypeMusic, result.MediaType)
	assert.Equal(t, 3, gen.lastLimit)
	assert.Equal(t, []string{"a", "b", "c"}, catalog.received)
}

func TestRecommendComingSoonTypes(t *testing.T) {
	for _, mediaType := range []models.MediaType{models.MediaTypeBooks, models.MediaTypePodcasts} {
		gen := &stubGenerator{candidates: []string{"x"}}
		catalog := &stubCatalog{}
		svc := newTestService(gen, catalog)

		_, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "calm", MediaType: mediaType, Limit: 3})
		require.Error(t, err)
		assert.True(t, utils.IsNotImplemented(err))
		assert.Equal(t, http.StatusNotImplemented, utils.StatusCode(err))
		assert.Zero(t, gen.calls)
		assert.Zero(t, catalog.calls)
	}

	_, err := newTestService(&stubGenerator{}, &stubCatalog{}).
		Recommend(context.Background(), models.MoodQuery{MediaType: models.MediaTypeBooks, Limit: 1})
	assert.Equal(t, "Books not implemented yet", utils.PublicMessage(err))
}

func TestRecommendNoCandidates(t *testing.T) {
	gen := &stubGenerator{candidates: nil}
	catalog := &stubCatalog{}
	svc := newTestService(gen, catalog)

	_, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "", MediaType: models.MediaTypeMovies, Limit: 5})
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
	assert.Equal(t, "No recommendations found", utils.PublicMessage(err))
	assert.Zero(t, catalog.calls)
}

func TestRecommendInvalidMediaType(t *testing.T) {
	svc := newTestService(&stubGenerator{candidates: []string{"x"}}, &stubCatalog{})

	_, err := svc.RecommendMedia(context.Background(), models.MediaRecommendationRequest{Mood: "happy", MediaType: "vinyl"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.StatusCode(err))
	assert.Equal(t, "Invalid media type. Use: music, movies, books, podcasts", utils.PublicMessage(err))
}

type musicOnlyProvider struct{ calls int }

func (p *musicOnlyProvider) GetType() models.MediaType { return models.MediaTypeMusic }

func (p *musicOnlyProvider) Resolve(_ context.Context, candidates []string) []models.ResolvedItem {
	p.calls++
	return []models.ResolvedItem{models.NewTrackItem(models.Track{Name: candidates[0], Artist: "Artist"})}
}

func TestRecommendTypeWithoutCatalogIsBadRequest(t *testing.T) {
	provider := &musicOnlyProvider{}
	resolver := media.NewResolver(utils.NewNopLogger(), nil, provider)
	gen := &stubGenerator{candidates: []string{"Heat"}}
	svc := NewService(gen, resolver, ServiceConfig{}, utils.NewNopLogger(), nil)

	_, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "tense", MediaType: models.MediaTypeMovies, Limit: 3})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, utils.StatusCode(err))
	assert.Equal(t, msgInvalidMediaType, utils.PublicMessage(err))
	assert.Zero(t, gen.calls)
	assert.Zero(t, provider.calls)

	result, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "tense", MediaType: models.MediaTypeMusic, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalFound)
}

func TestRecommendPanicBecomesInternalError(t *testing.T) {
	svc := newTestService(&stubGenerator{panicWith: "boom"}, &stubCatalog{})

	_, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "x", MediaType: models.MediaTypeMusic, Limit: 1})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, utils.StatusCode(err))
	assert.Equal(t, "Internal server error", utils.PublicMessage(err))
}

func TestRecommendResolverFailureIsOpaque(t *testing.T) {
	catalog := &stubCatalog{err: assert.AnError}
	svc := newTestService(&stubGenerator{candidates: []string{"x"}}, catalog)

	_, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "x", MediaType: models.MediaTypeMusic, Limit: 1})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, utils.StatusCode(err))
	assert.NotContains(t, utils.PublicMessage(err), assert.AnError.Error())
}

func TestRecommendMediaAppliesDefaults(t *testing.T) {
	gen := &stubGenerator{candidates: []string{"a"}}
	svc := NewService(gen, &stubCatalog{}, ServiceConfig{DefaultLimit: 7, MaxLimit: 20}, utils.NewNopLogger(), nil)

	result, err := svc.RecommendMedia(context.Background(), models.MediaRecommendationRequest{Mood: "happy"})
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypeMusic, result.MediaType)
	assert.Equal(t, 7, gen.lastLimit)

	limit := 40
	_, err = svc.RecommendMedia(context.Background(), models.MediaRecommendationRequest{Mood: "happy", MediaType: "movie", Limit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 20, gen.lastLimit)
}

func TestRecommendLegacyRoundTrip(t *testing.T) {
	gen := &stubGenerator{candidates: []string{"Hurt", "At Last"}}
	svc := newTestService(gen, &stubCatalog{})
	limit := 2

	unified, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "sad", MediaType: models.MediaTypeMusic, Limit: limit})
	require.NoError(t, err)

	legacy, err := svc.RecommendLegacy(context.Background(), models.MoodRequest{Mood: "sad", Limit: &limit})
	require.NoError(t, err)

	assert.Equal(t, unified.Results, legacy.Tracks)
	assert.Equal(t, unified.TotalFound, legacy.TotalFound)
	assert.Equal(t, "sad", legacy.Mood)

	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "media_type")
}

func TestRecommendWithFallbackGenerator(t *testing.T) {
	gen := NewGenerator(nil, utils.NewNopLogger(), nil, WithSeed(1))
	catalog := &stubCatalog{}
	svc := NewService(gen, catalog, ServiceConfig{}, utils.NewNopLogger(), nil)

	result, err := svc.Recommend(context.Background(), models.MoodQuery{Mood: "romantic evening", MediaType: models.MediaTypeMusic, Limit: 2})
	require.NoError(t, err)

	romantic, _ := categoryItems(models.MediaTypeMusic, "romantic")
	assert.Equal(t, 2, result.TotalFound)
	assert.Subset(t, romantic, catalog.received)
}
