package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		input string
		want  MediaType
		ok    bool
	}{
		{"music", MediaTypeMusic, true},
		{" Music ", MediaTypeMusic, true},
		{"movies", MediaTypeMovies, true},
		{"movie", MediaTypeMovies, true},
		{"books", MediaTypeBooks, true},
		{"podcasts", MediaTypePodcasts, true},
		{"games", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseMediaType(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseMediaType(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseMediaType(%q)", tt.input)
	}
}

func TestMediaTypeCapabilities(t *testing.T) {
	assert.True(t, MediaTypeMusic.IsSupported())
	assert.True(t, MediaTypeMovies.IsSupported())
	assert.False(t, MediaTypeBooks.IsSupported())
	assert.True(t, MediaTypeBooks.IsComingSoon())
	assert.True(t, MediaTypePodcasts.IsComingSoon())
	assert.False(t, MediaType("games").IsComingSoon())
}

func TestResolvedItemMarshalCarriesTag(t *testing.T) {
	preview := "https://p.example/1"
	item := NewTrackItem(Track{
		Name:       "Happy",
		Artist:     "Pharrell Williams",
		Album:      "G I R L",
		SpotifyURL: "https://open.spotify.com/track/1",
		PreviewURL: &preview,
	})

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "music", raw["media_type"])
	assert.Equal(t, "Happy", raw["name"])
	assert.Equal(t, preview, raw["preview_url"])
	assert.Contains(t, raw, "image_url")
	assert.Nil(t, raw["image_url"])
}

func TestResolvedItemRoundTripsMovie(t *testing.T) {
	year := 2010
	in := NewMovieItem(Movie{Title: "Inception", Year: &year, TMDbURL: "https://www.themoviedb.org/movie/27205"})

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out ResolvedItem
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, MediaTypeMovies, out.MediaType)
	require.NotNil(t, out.Movie)
	assert.Equal(t, "Inception", out.Movie.Title)
	assert.Equal(t, 2010, *out.Movie.Year)
	assert.Equal(t, []string{}, out.Movie.Genres)
}

func TestResolvedItemRejectsMissingVariant(t *testing.T) {
	_, err := json.Marshal(ResolvedItem{MediaType: MediaTypeMusic})
	assert.Error(t, err)

	var item ResolvedItem
	assert.Error(t, json.Unmarshal([]byte(`{"media_type":"books"}`), &item))
}

func TestRequestDefaults(t *testing.T) {
	q, ok := MediaRecommendationRequest{Mood: "calm"}.ToQuery()
	require.True(t, ok)
	assert.Equal(t, MediaTypeMusic, q.MediaType)
	assert.Equal(t, DefaultLimit, q.Limit)

	three := 3
	q, ok = MediaRecommendationRequest{Mood: "calm", MediaType: "movie", Limit: &three}.ToQuery()
	require.True(t, ok)
	assert.Equal(t, MediaTypeMovies, q.MediaType)
	assert.Equal(t, 3, q.Limit)

	_, ok = MediaRecommendationRequest{MediaType: "vinyl"}.ToQuery()
	assert.False(t, ok)

	legacy := MoodRequest{Mood: "sad"}.ToQuery()
	assert.Equal(t, MoodQuery{Mood: "sad", MediaType: MediaTypeMusic, Limit: DefaultLimit}, legacy)
}

func TestToLegacyKeepsResultsAndDropsMediaType(t *testing.T) {
	items := []ResolvedItem{
		NewTrackItem(Track{Name: "Hurt", Artist: "Johnny Cash"}),
		NewTrackItem(Track{Name: "At Last", Artist: "Etta James"}),
	}
	unified := NewRecommendationResult(MoodQuery{Mood: "sad", MediaType: MediaTypeMusic, Limit: 5}, items)
	legacy := unified.ToLegacy()

	assert.Equal(t, unified.Results, legacy.Tracks)
	assert.Equal(t, 2, legacy.TotalFound)

	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "media_type")
	assert.Contains(t, raw, "tracks")
}

func TestNewRecommendationResultEmptyIsArray(t *testing.T) {
	res := NewRecommendationResult(MoodQuery{Mood: "x", MediaType: MediaTypeMovies}, nil)
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mood":"x","media_type":"movies","results":[],"total_found":0}`, string(data))
}
