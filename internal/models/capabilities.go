// Package models contains the data structures used throughout the application.
package models

import "github.com/samber/lo"

// ServiceVersion is reported by the root and health endpoints.
const ServiceVersion = "2.0.0"

// SupportedMediaTypes are the media types with a catalog resolver.
var SupportedMediaTypes = []MediaType{MediaTypeMusic, MediaTypeMovies}

// ComingSoonMediaTypes are recognized but answered with 501.
var ComingSoonMediaTypes = []MediaType{MediaTypeBooks, MediaTypePodcasts}

// MediaTypeDescriptions is the static capability table.
var MediaTypeDescriptions = map[MediaType]string{
	MediaTypeMusic:    "Songs and tracks from Spotify",
	MediaTypeMovies:   "Movies from The Movie Database (TMDb)",
	MediaTypeBooks:    "Books from Google Books API (coming soon)",
	MediaTypePodcasts: "Podcasts from Spotify/Listen Notes (coming soon)",
}

// SupportedMediaTypesResponse is the introspection payload.
type SupportedMediaTypesResponse struct {
	SupportedTypes []MediaType          `json:"supported_types"`
	ComingSoon     []MediaType          `json:"coming_soon"`
	Description    map[MediaType]string `json:"description"`
}

// IsSupported reports whether m has a catalog resolver.
func (m MediaType) IsSupported() bool {
	return lo.Contains(SupportedMediaTypes, m)
}

// IsComingSoon reports whether m is recognized but unimplemented.
func (m MediaType) IsComingSoon() bool {
	return lo.Contains(ComingSoonMediaTypes, m)
}
