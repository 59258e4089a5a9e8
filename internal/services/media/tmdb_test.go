package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/utils"
)

type tmdbFake struct {
	mu            sync.Mutex
	queries       []string
	failDetails   bool
	failCredits   bool
	detailsCalled int
}

func (f *tmdbFake) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/3/search/movie", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "tmdb-key", q.Get("api_key"))
		assert.Equal(t, "en-US", q.Get("language"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "false", q.Get("include_adult"))

		f.mu.Lock()
		f.queries = append(f.queries, q.Get("query"))
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch q.Get("query") {
		case "Inception":
			_, _ = w.Write([]byte(`{"results":[{"id":27205,"title":"Inception","release_date":"2010-07-15",
				"poster_path":"/inception.jpg","vote_average":8.364,"overview":"A thief who steals secrets."}]}`))
		case "Obscure":
			_, _ = w.Write([]byte(`{"results":[{"id":99,"title":"Obscure","release_date":"","poster_path":null,
				"vote_average":0,"overview":""}]}`))
		case "Error":
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`{"results":[]}`))
		}
	})

	mux.HandleFunc("/3/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.detailsCalled++
		fail := f.failDetails
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}],"runtime":148}`))
	})

	mux.HandleFunc("/3/movie/27205/credits", func(w http.ResponseWriter, r *http.Request) {
		if f.failCredits {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"crew":[{"name":"Hans Zimmer","job":"Original Music Composer"},
			{"name":"Christopher Nolan","job":"Director"},{"name":"Someone","job":"Director"}]}`))
	})

	mux.HandleFunc("/3/movie/99", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"genres":[],"runtime":0}`))
	})

	mux.HandleFunc("/3/movie/99/credits", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"crew":[]}`))
	})

	return mux
}

func newTestTMDb(t *testing.T, fake *tmdbFake) *TMDbProvider {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	return NewTMDbProvider(TMDbConfig{
		APIKey:       "tmdb-key",
		APIURL:       server.URL + "/3",
		ImageBaseURL: "https://image.tmdb.org/t/p/w500",
		SiteURL:      "https://www.themoviedb.org",
	}, utils.NewNopLogger(), nil)
}

func TestSearchTitle(t *testing.T) {
	assert.Equal(t, "Inception", SearchTitle("Inception - IMAX Edition"))
	assert.Equal(t, "Mission: Impossible", SearchTitle("Mission: Impossible - Fallout"))
	assert.Equal(t, "Heat", SearchTitle("Heat"))
	assert.Equal(t, "Spider-Man", SearchTitle("Spider-Man"))
}

func TestTMDbResolveBuildsMovie(t *testing.T) {
	fake := &tmdbFake{}
	provider := newTestTMDb(t, fake)

	items := provider.Resolve(context.Background(), []string{"Inception - IMAX Edition"})
	require.Len(t, items, 1)
	assert.Equal(t, []string{"Inception"}, fake.queries)

	item := items[0]
	require.Equal(t, models.MediaTypeMovies, item.MediaType)
	movie := item.Movie
	require.NotNil(t, movie)

	assert.Equal(t, "Inception", movie.Title)
	require.NotNil(t, movie.Year)
	assert.Equal(t, 2010, *movie.Year)
	require.NotNil(t, movie.Rating)
	assert.InDelta(t, 8.4, *movie.Rating, 1e-9)
	require.NotNil(t, movie.PosterURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/inception.jpg", *movie.PosterURL)
	assert.Equal(t, "https://www.themoviedb.org/movie/27205", movie.TMDbURL)
	assert.Equal(t, []string{"Action", "Science Fiction"}, movie.Genres)
	require.NotNil(t, movie.Runtime)
	assert.Equal(t, 148, *movie.Runtime)
	require.NotNil(t, movie.Director)
	assert.Equal(t, "Christopher Nolan", *movie.Director)
	require.NotNil(t, movie.Synopsis)
	assert.Equal(t, models.MediaTypeMovies, movie.MediaType)
}

func TestTMDbResolveDegradesOnLookupFailures(t *testing.T) {
	fake := &tmdbFake{failDetails: true, failCredits: true}
	provider := newTestTMDb(t, fake)

	items := provider.Resolve(context.Background(), []string{"Inception"})
	require.Len(t, items, 1)

	movie := items[0].Movie
	assert.Equal(t, "Inception", movie.Title)
	assert.Equal(t, []string{}, movie.Genres)
	assert.Nil(t, movie.Runtime)
	assert.Nil(t, movie.Director)
	assert.Equal(t, 1, fake.detailsCalled)
}

func TestTMDbResolveAbsentFields(t *testing.T) {
	provider := newTestTMDb(t, &tmdbFake{})

	items := provider.Resolve(context.Background(), []string{"Obscure"})
	require.Len(t, items, 1)

	movie := items[0].Movie
	assert.Nil(t, movie.Year)
	assert.Nil(t, movie.Rating)
	assert.Nil(t, movie.PosterURL)
	assert.Nil(t, movie.Synopsis)
	assert.Nil(t, movie.Runtime)
	assert.Nil(t, movie.Director)
	assert.Equal(t, []string{}, movie.Genres)
}

func TestTMDbResolveDropsFailedSearches(t *testing.T) {
	fake := &tmdbFake{}
	provider := newTestTMDb(t, fake)

	items := provider.Resolve(context.Background(), []string{"Error", "Unknown Film", "Inception", "Obscure"})
	require.Len(t, items, 2)
	assert.Equal(t, "Inception", items[0].Movie.Title)
	assert.Equal(t, "Obscure", items[1].Movie.Title)
	assert.Equal(t, []string{"Error", "Unknown Film", "Inception", "Obscure"}, fake.queries)
}

func TestReleaseYear(t *testing.T) {
	assert.Nil(t, releaseYear(""))
	assert.Nil(t, releaseYear("20"))
	assert.Nil(t, releaseYear("abcd-01-01"))
	require.NotNil(t, releaseYear("1999-03-31"))
	assert.Equal(t, 1999, *releaseYear("1999-03-31"))
}

func TestCountsAsSuccess(t *testing.T) {
	assert.True(t, countsAsSuccess(nil))
	assert.True(t, countsAsSuccess(context.Canceled))
	assert.True(t, countsAsSuccess(&StatusError{Service: "tmdb", StatusCode: http.StatusNotFound}))
	assert.False(t, countsAsSuccess(&StatusError{Service: "tmdb", StatusCode: http.StatusTooManyRequests}))
	assert.False(t, countsAsSuccess(&StatusError{Service: "tmdb", StatusCode: http.StatusBadGateway}))
	assert.False(t, countsAsSuccess(assert.AnError))
}
