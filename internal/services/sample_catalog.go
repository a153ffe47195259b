package services

import (
	"context"
	"strings"

	"vibecheck/internal/models"
)

// sampleSongs backs the last-resort search tier
var sampleSongs = []models.Song{
	{Title: "Bohemian Rhapsody", Artist: "Queen", ExternalURL: "https://open.spotify.com/track/4u7EnebtmKWzUH433cf5Qv"},
	{Title: "Blinding Lights", Artist: "The Weeknd", ExternalURL: "https://open.spotify.com/track/0VjIjW4GlUZAMYd2vXMi3b"},
	{Title: "Dreams", Artist: "Fleetwood Mac", ExternalURL: "https://open.spotify.com/track/0ofHAoxe9vBkTCp2UQIavz"},
	{Title: "Redbone", Artist: "Childish Gambino", ExternalURL: "https://open.spotify.com/track/0wXuerDYiBnERgIpbb3JBR"},
	{Title: "Motion Sickness", Artist: "Phoebe Bridgers", ExternalURL: "https://open.spotify.com/track/5xo8RrjJ9CVNrtRg2S3B1R"},
	{Title: "Pink + White", Artist: "Frank Ocean", ExternalURL: "https://open.spotify.com/track/3xKsf9qdS1CyvXSMEid6g8"},
	{Title: "Dancing Queen", Artist: "ABBA", ExternalURL: "https://open.spotify.com/track/0GjEhVFGZW8afUYGChu3Rr"},
	{Title: "Heroes", Artist: "David Bowie", ExternalURL: "https://open.spotify.com/track/7Jh1bpe76CNTCgdgAdBw4Z"},
	{Title: "Midnight City", Artist: "M83", ExternalURL: "https://open.spotify.com/track/1eyzqe2QqGZUmfcPZtrIyt"},
	{Title: "Nights", Artist: "Frank Ocean", ExternalURL: "https://open.spotify.com/track/7eqoqGkKwgOaWNNHx90uEZ"},
	{Title: "Running Up That Hill", Artist: "Kate Bush", ExternalURL: "https://open.spotify.com/track/1PtQJZVZIdWIYdARpZRDFO"},
	{Title: "Electric Feel", Artist: "MGMT", ExternalURL: "https://open.spotify.com/track/3FtYbEfBqAlGO46NUDQSAt"},
}

// sampleCatalog implements SearchBackend over a static list
type sampleCatalog struct {
	songs []models.Song
}

// NewSampleCatalog creates the static sample tier
func NewSampleCatalog() SearchBackend {
	return &sampleCatalog{songs: sampleSongs}
}

// Name returns the tier name
func (s *sampleCatalog) Name() string {
	return "sample"
}

// Search matches title or artist by case-insensitive substring. It never fails.
func (s *sampleCatalog) Search(ctx context.Context, query string, limit int) ([]models.Song, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	matches := []models.Song{}
	if needle == "" {
		return matches, nil
	}

	for _, song := range s.songs {
		if strings.Contains(strings.ToLower(song.Title), needle) ||
			strings.Contains(strings.ToLower(song.Artist), needle) {
			matches = append(matches, song)
		}
	}

	return truncateSongs(matches, limit), nil
}
