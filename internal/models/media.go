// Package models contains the data structures used throughout the application.
package models

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// MediaType identifies a kind of recommendable media.
type MediaType string

const (
	// MediaTypeMusic covers songs resolved against the music catalog.
	MediaTypeMusic MediaType = "music"
	// MediaTypeMovies covers films resolved against the movie catalog.
	MediaTypeMovies MediaType = "movies"
	// MediaTypeBooks is declared but has no catalog resolver yet.
	MediaTypeBooks MediaType = "books"
	// MediaTypePodcasts is declared but has no catalog resolver yet.
	MediaTypePodcasts MediaType = "podcasts"
)

// AllMediaTypes lists every recognized media type in display order.
var AllMediaTypes = []MediaType{MediaTypeMusic, MediaTypeMovies, MediaTypeBooks, MediaTypePodcasts}

// ParseMediaType normalizes s and reports whether it names a recognized media type.
// "movie" is accepted as an alias of "movies".
func ParseMediaType(s string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "music":
		return MediaTypeMusic, true
	case "movies", "movie":
		return MediaTypeMovies, true
	case "books":
		return MediaTypeBooks, true
	case "podcasts":
		return MediaTypePodcasts, true
	default:
		return "", false
	}
}

// String returns the wire name of the media type.
func (m MediaType) String() string {
	return string(m)
}

// Track is a song resolved from the music catalog.
type Track struct {
	// Name is the track title.
	Name string `json:"name"`

	// Artist is the primary artist.
	Artist string `json:"artist"`

	// Album is the album the track appears on.
	Album string `json:"album"`

	// SpotifyURL is the catalog page of the track.
	SpotifyURL string `json:"spotify_url"`

	// PreviewURL is a short audio preview, when the catalog offers one.
	PreviewURL *string `json:"preview_url"`

	// ImageURL is the largest available album cover.
	ImageURL *string `json:"image_url"`

	// Popularity is the catalog popularity score (0-100).
	Popularity *int `json:"popularity"`

	// DurationMs is the track length in milliseconds.
	DurationMs *int `json:"duration_ms"`

	// MediaType is always "music".
	MediaType MediaType `json:"media_type"`
}

// Movie is a film resolved from the movie catalog.
type Movie struct {
	// Title is the film title as listed in the catalog.
	Title string `json:"title"`

	// Director is the first credited director.
	Director *string `json:"director"`

	// Year is the release year.
	Year *int `json:"year"`

	// Genres are the catalog genre names; never null.
	Genres []string `json:"genres"`

	// TMDbURL is the catalog page of the film.
	TMDbURL string `json:"tmdb_url"`

	// PosterURL is the full poster image URL.
	PosterURL *string `json:"poster_url"`

	// Rating is the average vote, rounded to one decimal.
	Rating *float64 `json:"rating"`

	// Synopsis is the catalog overview text.
	Synopsis *string `json:"synopsis"`

	// Runtime is the length in minutes.
	Runtime *int `json:"runtime"`

	// MediaType is always "movies".
	MediaType MediaType `json:"media_type"`
}

// ResolvedItem is a tagged union over the resolvable media kinds. MediaType
// selects which variant is populated; exactly one variant is non-nil.
type ResolvedItem struct {
	MediaType MediaType
	Track     *Track
	Movie     *Movie
}

// NewTrackItem wraps a track, stamping its media type tag.
func NewTrackItem(t Track) ResolvedItem {
	t.MediaType = MediaTypeMusic
	return ResolvedItem{MediaType: MediaTypeMusic, Track: &t}
}

// NewMovieItem wraps a movie, stamping its media type tag.
func NewMovieItem(m Movie) ResolvedItem {
	m.MediaType = MediaTypeMovies
	if m.Genres == nil {
		m.Genres = []string{}
	}
	return ResolvedItem{MediaType: MediaTypeMovies, Movie: &m}
}

// MarshalJSON emits the populated variant as a flat object carrying media_type.
func (i ResolvedItem) MarshalJSON() ([]byte, error) {
	switch i.MediaType {
	case MediaTypeMusic:
		if i.Track == nil {
			return nil, fmt.Errorf("resolved item tagged %q has no track", i.MediaType)
		}
		return json.Marshal(i.Track)
	case MediaTypeMovies:
		if i.Movie == nil {
			return nil, fmt.Errorf("resolved item tagged %q has no movie", i.MediaType)
		}
		return json.Marshal(i.Movie)
	default:
		return nil, fmt.Errorf("unsupported resolved item type %q", i.MediaType)
	}
}

// UnmarshalJSON reads the media_type tag and decodes the matching variant.
func (i *ResolvedItem) UnmarshalJSON(data []byte) error {
	var probe struct {
		MediaType MediaType `json:"media_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.MediaType {
	case MediaTypeMusic:
		var t Track
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*i = ResolvedItem{MediaType: MediaTypeMusic, Track: &t}
	case MediaTypeMovies:
		var m Movie
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*i = ResolvedItem{MediaType: MediaTypeMovies, Movie: &m}
	default:
		return fmt.Errorf("unsupported resolved item type %q", probe.MediaType)
	}
	return nil
}
