package media

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

type fakeProvider struct {
	mediaType models.MediaType
	known     map[string]bool
	calls     int
}

func (p *fakeProvider) GetType() models.MediaType { return p.mediaType }

func (p *fakeProvider) Resolve(_ context.Context, candidates []string) []models.ResolvedItem {
	p.calls++
	var items []models.ResolvedItem
	for _, c := range candidates {
		if p.known[c] {
			items = append(items, models.NewMovieItem(models.Movie{Title: c}))
		}
	}
	return items
}

func TestResolverDispatchesByType(t *testing.T) {
	movies := &fakeProvider{mediaType: models.MediaTypeMovies, known: map[string]bool{"Heat": true, "Alien": true}}
	resolver := NewResolver(utils.NewNopLogger(), nil, movies)

	assert.True(t, resolver.Supports(models.MediaTypeMovies))
	assert.False(t, resolver.Supports(models.MediaTypeMusic))

	items, err := resolver.Resolve(context.Background(), models.MediaTypeMovies, []string{"Alien", "Nope", "Heat"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alien", items[0].Movie.Title)
	assert.Equal(t, "Heat", items[1].Movie.Title)
}

func TestResolverUnregisteredType(t *testing.T) {
	resolver := NewResolver(utils.NewNopLogger(), nil)

	assert.False(t, resolver.Supports(models.MediaTypeMusic))
	_, err := resolver.Resolve(context.Background(), models.MediaTypeMusic, []string{"Queen - Bohemian Rhapsody"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestResolverNeverReturnsNil(t *testing.T) {
	movies := &fakeProvider{mediaType: models.MediaTypeMovies}
	resolver := NewResolver(utils.NewNopLogger(), nil, movies)

	items, err := resolver.Resolve(context.Background(), models.MediaTypeMovies, []string{"Nope"})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestResolverRecordsMetrics(t *testing.T) {
	metrics := system.NewMetricsService(utils.NewNopLogger(), prometheus.NewRegistry())
	movies := &fakeProvider{mediaType: models.MediaTypeMovies, known: map[string]bool{"Heat": true}}
	resolver := NewResolver(utils.NewNopLogger(), metrics, movies)

	_, err := resolver.Resolve(context.Background(), models.MediaTypeMovies, []string{"Heat", "Nope", "Other"})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(metrics.Registry(), "moodmix_resolved_items_total", "moodmix_resolve_misses_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestResolverRegisterReplaces(t *testing.T) {
	first := &fakeProvider{mediaType: models.MediaTypeMovies}
	second := &fakeProvider{mediaType: models.MediaTypeMovies, known: map[string]bool{"Heat": true}}
	resolver := NewResolver(utils.NewNopLogger(), nil, first)
	resolver.RegisterProvider(second)

	items, err := resolver.Resolve(context.Background(), models.MediaTypeMovies, []string{"Heat"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Zero(t, first.calls)
	assert.Equal(t, 1, second.calls)
}
