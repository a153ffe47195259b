package playlist

import (
	"net/url"

	"vibecheck/internal/models"
)

const qrCodeEndpoint = "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data="

// Dashboard is the view model rendered after a visitor checks in
type Dashboard struct {
	RoomID        string                 `json:"roomId"`
	RoomName      string                 `json:"roomName"`
	TotalEntries  int                    `json:"totalEntries"`
	UniqueSongs   int                    `json:"uniqueSongs"`
	PreviousEntry *models.SongEntry      `json:"previousEntry"`
	Playlist      []models.PlaylistTrack `json:"playlist"`
	NotEnoughData bool                   `json:"notEnoughData"`
	QRCodeURL     string                 `json:"qrCodeUrl,omitempty"`
}

// PreviousEntry returns the entry submitted before the current visitor's.
// Entries are newest first, so position 0 is the current visitor.
func PreviousEntry(room *models.RoomData) *models.SongEntry {
	if room == nil || len(room.Entries) < 2 {
		return nil
	}
	entry := room.Entries[1]
	return &entry
}

// BuildDashboard composes the previous visitor's picks and the room playlist.
// pageURL is the shareable room link encoded into the QR code; empty skips it.
func BuildDashboard(room *models.RoomData, topN int, pageURL string) Dashboard {
	dashboard := Dashboard{
		RoomID:        room.RoomID,
		RoomName:      room.DisplayName(),
		TotalEntries:  len(room.Entries),
		UniqueSongs:   UniqueSongCount(room.Entries),
		PreviousEntry: PreviousEntry(room),
		Playlist:      Aggregate(room.Entries, topN),
	}
	dashboard.NotEnoughData = len(dashboard.Playlist) == 0

	if pageURL != "" {
		dashboard.QRCodeURL = QRCodeURL(pageURL)
	}

	return dashboard
}

// QRCodeURL builds the external QR image link for a page
func QRCodeURL(pageURL string) string {
	return qrCodeEndpoint + url.QueryEscape(pageURL)
}
