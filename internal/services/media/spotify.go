// Package media resolves candidate titles against external media catalogs.
package media

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"norelock.dev/moodmix/backend/internal/models"
	"norelock.dev/moodmix/backend/internal/services/system"
	"norelock.dev/moodmix/backend/internal/utils"
)

// SpotifyConfig contains configuration for the Spotify track provider.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string
	Market       string
	Timeout      time.Duration
}

// SpotifyProvider implements the Provider interface for Spotify tracks.
type SpotifyProvider struct {
	config SpotifyConfig
	api    *apiClient
	logger *utils.Logger
}

type spotifyImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type spotifyTrack struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string         `json:"name"`
		Images []spotifyImage `json:"images"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	PreviewURL *string `json:"preview_url"`
	Popularity *int    `json:"popularity"`
	DurationMs *int    `json:"duration_ms"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

// NewSpotifyProvider creates a new Spotify provider. Requests are authorized
// with a client-credentials token that is fetched and refreshed on demand.
func NewSpotifyProvider(config SpotifyConfig, logger *utils.Logger, metrics *system.MetricsService) *SpotifyProvider {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Market == "" {
		config.Market = "US"
	}
	config.APIURL = strings.TrimRight(config.APIURL, "/")

	base := &http.Client{Timeout: config.Timeout}
	httpClient := base
	if config.ClientID != "" && config.ClientSecret != "" {
		credentials := &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = credentials.Client(ctx)
		httpClient.Timeout = config.Timeout
	}

	return &SpotifyProvider{
		config: config,
		api:    newAPIClient("spotify", httpClient, logger, metrics),
		logger: logger.Named("spotify_provider"),
	}
}

// Configured reports whether client credentials are set.
func (p *SpotifyProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// GetType returns the provider type.
func (p *SpotifyProvider) GetType() models.MediaType {
	return models.MediaTypeMusic
}

// Resolve searches each candidate and keeps the top track of every hit.
func (p *SpotifyProvider) Resolve(ctx context.Context, candidates []string) []models.ResolvedItem {
	items := make([]models.ResolvedItem, 0, len(candidates))
	if !p.Configured() {
		p.logger.Warn("Spotify credentials not configured, skipping resolution", "candidates", len(candidates))
		return items
	}

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}

		track, err := p.searchTrack(ctx, candidate)
		if err != nil {
			p.logger.Warn("Error searching track", "query", candidate, "error", err)
			continue
		}
		if track == nil {
			p.logger.Debug("No track found", "query", candidate)
			continue
		}
		items = append(items, models.NewTrackItem(*track))
	}

	return items
}

// searchTrack returns the top track for query, or nil when there is none.
func (p *SpotifyProvider) searchTrack(ctx context.Context, query string) (*models.Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(1))
	params.Set("market", p.config.Market)

	var resp spotifySearchResponse
	if err := p.api.getJSON(ctx, p.config.APIURL+"/search", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Tracks.Items) == 0 {
		return nil, nil
	}

	return mapSpotifyTrack(resp.Tracks.Items[0])
}

func mapSpotifyTrack(data spotifyTrack) (*models.Track, error) {
	if len(data.Artists) == 0 {
		return nil, errors.New("track has no artists")
	}

	track := &models.Track{
		Name:       data.Name,
		Artist:     data.Artists[0].Name,
		Album:      data.Album.Name,
		SpotifyURL: data.ExternalURLs.Spotify,
		Popularity: data.Popularity,
		DurationMs: data.DurationMs,
	}
	if data.PreviewURL != nil {
		track.PreviewURL = lo.EmptyableToPtr(*data.PreviewURL)
	}
	if len(data.Album.Images) > 0 {
		largest := lo.MaxBy(data.Album.Images, func(a, b spotifyImage) bool {
			return a.Width*a.Height > b.Width*b.Height
		})
		track.ImageURL = lo.EmptyableToPtr(largest.URL)
	}

	return track, nil
}

// HealthCheck reports the provider state for the health service.
func (p *SpotifyProvider) HealthCheck(_ context.Context) (system.HealthStatus, string) {
	if !p.Configured() {
		return system.StatusDegraded, "client credentials not configured"
	}
	return p.api.healthCheck()
}
