package models

import (
	"strings"
)

// UnknownArtist is the artist recorded for free-text picks that could not be resolved
const UnknownArtist = "Unknown Artist"

// Song represents a canonical song record
type Song struct {
	Title       string `bson:"title" json:"title"`
	Artist      string `bson:"artist" json:"artist"`
	ExternalURL string `bson:"external_url,omitempty" json:"externalUrl"`
}

// NewSong creates a new Song
func NewSong(title, artist, externalURL string) Song {
	return Song{
		Title:       title,
		Artist:      artist,
		ExternalURL: externalURL,
	}
}

// Key returns the identity key used to decide whether two songs are the same.
// The external URL is not part of a song's identity.
func (s Song) Key() string {
	return strings.ToLower(strings.TrimSpace(s.Title)) + "|" + strings.ToLower(strings.TrimSpace(s.Artist))
}

// SameAs reports whether both songs share an identity key
func (s Song) SameAs(other Song) bool {
	return s.Key() == other.Key()
}

// IsWellFormed reports whether the song has a non-blank title and artist
func (s Song) IsWellFormed() bool {
	return strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.Artist) != ""
}

// Display formats the song the way it is described to resolvers
func (s Song) Display() string {
	return s.Title + " by " + s.Artist
}

// PlaylistTrack is a derived, never persisted, row of a room playlist
type PlaylistTrack struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ExternalURL string `json:"externalUrl"`
	Reason      string `json:"reason"`
}
