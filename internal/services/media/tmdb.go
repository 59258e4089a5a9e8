// Package media resolves candidate titles against external media catalogs.
package media

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// TMDbConfig contains configuration for the TMDb movie provider.
type TMDbConfig struct {
	APIKey       string
	APIURL       string
	ImageBaseURL string
	SiteURL      string
	Language     string
	Timeout      time.Duration
}

// TMDbProvider implements the Provider interface for TMDb movies.
type TMDbProvider struct {
	config TMDbConfig
	api    *apiClient
	logger *utils.Logger
}

type tmdbSearchResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
}

type tmdbSearchResponse struct {
	Results []tmdbSearchResult `json:"results"`
}

type tmdbGenre struct {
	Name string `json:"name"`
}

type tmdbDetails struct {
	Genres  []tmdbGenre `json:"genres"`
	Runtime int         `json:"runtime"`
}

type tmdbCrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type tmdbCredits struct {
	Crew []tmdbCrewMember `json:"crew"`
}

// NewTMDbProvider creates a new TMDb provider.
func NewTMDbProvider(config TMDbConfig, logger *utils.Logger, metrics *system.MetricsService) *TMDbProvider {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Language == "" {
		config.Language = "en-US"
	}
	if config.ImageBaseURL == "" {
		config.ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	}
	if config.SiteURL == "" {
		config.SiteURL = "https://www.themoviedb.org"
	}
	config.APIURL = strings.TrimRight(config.APIURL, "/")
	config.SiteURL = strings.TrimRight(config.SiteURL, "/")

	return &TMDbProvider{
		config: config,
		api:    newAPIClient("tmdb", &http.Client{Timeout: config.Timeout}, logger, metrics),
		logger: logger.Named("tmdb_provider"),
	}
}

// Configured reports whether an API key is set.
func (p *TMDbProvider) Configured() bool {
	return p.config.APIKey != ""
}

// GetType returns the provider type.
func (p *TMDbProvider) GetType() models.MediaType {
	return models.MediaTypeMovies
}

// Resolve searches each candidate and enriches every hit with details and credits.
func (p *TMDbProvider) Resolve(ctx context.Context, candidates []string) []models.ResolvedItem {
	items := make([]models.ResolvedItem, 0, len(candidates))
	if !p.Configured() {
		p.logger.Warn("TMDb API key not configured, skipping resolution", "candidates", len(candidates))
		return items
	}

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}

		movie, err := p.resolveMovie(ctx, candidate)
		if err != nil {
			p.logger.Warn("Error searching movie", "query", candidate, "error", err)
			continue
		}
		if movie == nil {
			p.logger.Debug("No movie found", "query", candidate)
			continue
		}
		items = append(items, models.NewMovieItem(*movie))
	}

	return items
}

// SearchTitle extracts the title part of a candidate such as "Inception - IMAX Edition".
func SearchTitle(candidate string) string {
	title, _, _ := strings.Cut(candidate, " - ")
	return title
}

func (p *TMDbProvider) resolveMovie(ctx context.Context, candidate string) (*models.Movie, error) {
	params := p.params()
	params.Set("query", SearchTitle(candidate))
	params.Set("language", p.config.Language)
	params.Set("page", "1")
	params.Set("include_adult", "false")

	var search tmdbSearchResponse
	if err := p.api.getJSON(ctx, p.config.APIURL+"/search/movie", params, &search); err != nil {
		return nil, err
	}
	if len(search.Results) == 0 {
		return nil, nil
	}

	hit := search.Results[0]
	movie := p.mapMovie(hit)

	// Detail and credit failures degrade the record instead of dropping it
	if details, err := p.details(ctx, hit.ID); err != nil {
		p.logger.Warn("Error getting movie details", "movie_id", hit.ID, "error", err)
	} else {
		movie.Genres = lo.Map(details.Genres, func(g tmdbGenre, _ int) string {
			return g.Name
		})
		if details.Runtime > 0 {
			runtime := details.Runtime
			movie.Runtime = &runtime
		}
	}

	if director, err := p.director(ctx, hit.ID); err != nil {
		p.logger.Warn("Error getting movie director", "movie_id", hit.ID, "error", err)
	} else {
		movie.Director = director
	}

	return movie, nil
}

func (p *TMDbProvider) mapMovie(hit tmdbSearchResult) *models.Movie {
	movie := &models.Movie{
		Title:    hit.Title,
		Year:     releaseYear(hit.ReleaseDate),
		Genres:   []string{},
		TMDbURL:  fmt.Sprintf("%s/movie/%d", p.config.SiteURL, hit.ID),
		Synopsis: lo.EmptyableToPtr(hit.Overview),
	}
	if hit.PosterPath != "" {
		poster := p.config.ImageBaseURL + hit.PosterPath
		movie.PosterURL = &poster
	}
	if hit.VoteAverage != 0 {
		rating := math.Round(hit.VoteAverage*10) / 10
		movie.Rating = &rating
	}
	return movie
}

func (p *TMDbProvider) details(ctx context.Context, movieID int) (*tmdbDetails, error) {
	params := p.params()
	params.Set("language", p.config.Language)

	var details tmdbDetails
	if err := p.api.getJSON(ctx, fmt.Sprintf("%s/movie/%d", p.config.APIURL, movieID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// director returns the first crew member credited as Director, or nil.
func (p *TMDbProvider) director(ctx context.Context, movieID int) (*string, error) {
	var credits tmdbCredits
	if err := p.api.getJSON(ctx, fmt.Sprintf("%s/movie/%d/credits", p.config.APIURL, movieID), p.params(), &credits); err != nil {
		return nil, err
	}

	member, ok := lo.Find(credits.Crew, func(c tmdbCrewMember) bool {
		return c.Job == "Director"
	})
	if !ok {
		return nil, nil
	}
	return lo.EmptyableToPtr(member.Name), nil
}

func (p *TMDbProvider) params() url.Values {
	params := url.Values{}
	params.Set("api_key", p.config.APIKey)
	return params
}

// releaseYear parses the leading four digits of a release date.
func releaseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

// HealthCheck reports the provider state for the health service.
func (p *TMDbProvider) HealthCheck(_ context.Context) (system.HealthStatus, string) {
	if !p.Configured() {
		return system.StatusDegraded, "API key not configured"
	}
	return p.api.healthCheck()
}
