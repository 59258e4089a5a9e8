package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/utils"
)

const spotifyHappy = `{"tracks":{"items":[{
	"name":"Happy",
	"artists":[{"name":"Pharrell Williams"},{"name":"Someone Else"}],
	"album":{"name":"G I R L","images":[
		{"url":"https://i.scdn.co/small","width":64,"height":64},
		{"url":"https://i.scdn.co/large","width":640,"height":640},
		{"url":"https://i.scdn.co/medium","width":300,"height":300}
	]},
	"external_urls":{"spotify":"https://open.spotify.com/track/happy"},
	"preview_url":"https://p.scdn.co/happy",
	"popularity":81,
	"duration_ms":232720
}]}}`

const spotifyBare = `{"tracks":{"items":[{
	"name":"Hurt",
	"artists":[{"name":"Johnny Cash"}],
	"album":{"name":"American IV","images":[]},
	"external_urls":{"spotify":"https://open.spotify.com/track/hurt"},
	"preview_url":null
}]}}`

func newSpotifyTestServer(t *testing.T, tokenCalls *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token-123","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "track", r.URL.Query().Get("type"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "US", r.URL.Query().Get("market"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("q") {
		case "Pharrell Williams - Happy":
			_, _ = w.Write([]byte(spotifyHappy))
		case "Johnny Cash - Hurt":
			_, _ = w.Write([]byte(spotifyBare))
		case "Broken - Server":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"tracks":{"items":[]}}`))
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestSpotify(serverURL string) *SpotifyProvider {
	return NewSpotifyProvider(SpotifyConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     serverURL + "/api/token",
		APIURL:       serverURL + "/v1",
		Market:       "US",
	}, utils.NewNopLogger(), nil)
}

func TestSpotifyResolveMapsTopTrack(t *testing.T) {
	var tokenCalls atomic.Int32
	server := newSpotifyTestServer(t, &tokenCalls)
	provider := newTestSpotify(server.URL)

	items := provider.Resolve(context.Background(), []string{"Pharrell Williams - Happy", "Johnny Cash - Hurt"})
	require.Len(t, items, 2)

	happy := items[0]
	require.Equal(t, models.MediaTypeMusic, happy.MediaType)
	require.NotNil(t, happy.Track)
	assert.Equal(t, "Happy", happy.Track.Name)
	assert.Equal(t, "Pharrell Williams", happy.Track.Artist)
	assert.Equal(t, "G I R L", happy.Track.Album)
	assert.Equal(t, "https://open.spotify.com/track/happy", happy.Track.SpotifyURL)
	require.NotNil(t, happy.Track.ImageURL)
	assert.Equal(t, "https://i.scdn.co/large", *happy.Track.ImageURL)
	require.NotNil(t, happy.Track.PreviewURL)
	assert.Equal(t, 81, *happy.Track.Popularity)
	assert.Equal(t, 232720, *happy.Track.DurationMs)
	assert.Equal(t, models.MediaTypeMusic, happy.Track.MediaType)

	hurt := items[1].Track
	require.NotNil(t, hurt)
	assert.Nil(t, hurt.ImageURL)
	assert.Nil(t, hurt.PreviewURL)
	assert.Nil(t, hurt.Popularity)
	assert.Nil(t, hurt.DurationMs)

	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestSpotifyResolveSkipsMissesAndKeepsOrder(t *testing.T) {
	var tokenCalls atomic.Int32
	server := newSpotifyTestServer(t, &tokenCalls)
	provider := newTestSpotify(server.URL)

	candidates := []string{"Nobody - Nothing", "Johnny Cash - Hurt", "Broken - Server", "Pharrell Williams - Happy"}
	items := provider.Resolve(context.Background(), candidates)

	require.Len(t, items, 2)
	assert.Equal(t, "Hurt", items[0].Track.Name)
	assert.Equal(t, "Happy", items[1].Track.Name)
	assert.LessOrEqual(t, len(items), len(candidates))
}

func TestSpotifyUnconfiguredReturnsEmpty(t *testing.T) {
	provider := NewSpotifyProvider(SpotifyConfig{APIURL: "http://127.0.0.1:1"}, utils.NewNopLogger(), nil)

	items := provider.Resolve(context.Background(), []string{"Pharrell Williams - Happy"})
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.False(t, provider.Configured())
}

func TestMapSpotifyTrackWithoutDimensions(t *testing.T) {
	track, err := mapSpotifyTrack(spotifyTrack{
		Name: "Song",
		Artists: []struct {
			Name string `json:"name"`
		}{{Name: "Band"}},
		Album: struct {
			Name   string         `json:"name"`
			Images []spotifyImage `json:"images"`
		}{Name: "Album", Images: []spotifyImage{{URL: "first"}, {URL: "second"}}},
	})
	require.NoError(t, err)
	require.NotNil(t, track.ImageURL)
	assert.Equal(t, "first", *track.ImageURL)

	_, err = mapSpotifyTrack(spotifyTrack{Name: "Orphan"})
	assert.Error(t, err)
}
