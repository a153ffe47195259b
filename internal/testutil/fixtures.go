package testutil

import (
	"time"

	"vibecheck/internal/models"
	"vibecheck/internal/services"
)

// EntryBuilder provides a fluent interface for creating test entries
type EntryBuilder struct {
	entry models.SongEntry
}

// NewEntryBuilder creates a new entry builder with default values
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		entry: models.NewSongEntry(
			models.NewSong("Bohemian Rhapsody", "Queen", SpotifyURL1),
			models.NewSong("Dancing Queen", "ABBA", SpotifyURL2),
			models.NewSong("Pink + White", "Frank Ocean", AppleMusicURL1),
			TestTime,
		),
	}
}

// WithCurrent sets the current pick
func (b *EntryBuilder) WithCurrent(title, artist string) *EntryBuilder {
	b.entry.Current = models.NewSong(title, artist, "")
	return b
}

// WithFavorite sets the all-time favorite pick
func (b *EntryBuilder) WithFavorite(title, artist string) *EntryBuilder {
	b.entry.Favorite = models.NewSong(title, artist, "")
	return b
}

// WithUnderrated sets the underrated pick
func (b *EntryBuilder) WithUnderrated(title, artist string) *EntryBuilder {
	b.entry.Underrated = models.NewSong(title, artist, "")
	return b
}

// At sets the submission time
func (b *EntryBuilder) At(at time.Time) *EntryBuilder {
	b.entry.Timestamp = at.UnixMilli()
	return b
}

// Build returns the constructed entry
func (b *EntryBuilder) Build() models.SongEntry {
	return b.entry
}

// Common test data
var (
	TestRoomID = "4b1c2f7e-9d2a-4c55-8f3e-0a6b7c8d9e10"

	TestTime = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	// Sample Spotify track IDs
	SpotifyTrackID1 = "4u7EnebtmKWzUH433cf5Qv"
	SpotifyTrackID2 = "0GjEhVFGZW8afUYGChu3Rr"

	// Sample Apple Music track IDs
	AppleMusicTrackID1 = "1440857781"

	// Sample URLs
	SpotifyURL1    = "https://open.spotify.com/track/" + SpotifyTrackID1
	SpotifyURL2    = "https://open.spotify.com/track/" + SpotifyTrackID2
	AppleMusicURL1 = "https://music.apple.com/us/song/pink-white/" + AppleMusicTrackID1
)

// CreateTestRoom creates a room snapshot with entries newest first
func CreateTestRoom(roomID string, entries ...models.SongEntry) *models.RoomData {
	if entries == nil {
		entries = []models.SongEntry{}
	}
	return &models.RoomData{
		RoomID:   roomID,
		RoomName: "Test Room",
		Entries:  entries,
	}
}

// ResolvedFromEntry returns the finalizer output that produces entry
func ResolvedFromEntry(entry models.SongEntry) services.ResolvedSongs {
	return services.ResolvedSongs{
		Current:    entry.Current,
		Favorite:   entry.Favorite,
		Underrated: entry.Underrated,
	}
}
