package playlist

import (
	"testing"

	"vibecheck/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDashboard_EmptyRoom(t *testing.T) {
	room := &models.RoomData{RoomID: "room-1"}

	dashboard := BuildDashboard(room, DefaultTopN, "")

	assert.Equal(t, "room-1", dashboard.RoomName)
	assert.Zero(t, dashboard.TotalEntries)
	assert.Nil(t, dashboard.PreviousEntry)
	assert.Empty(t, dashboard.Playlist)
	assert.True(t, dashboard.NotEnoughData)
	assert.Empty(t, dashboard.QRCodeURL)
}

func TestBuildDashboard_FirstVisitorHasNoPrevious(t *testing.T) {
	room := &models.RoomData{
		RoomID:   "room-1",
		RoomName: "Office",
		Entries: []models.SongEntry{
			entry(song("A", "1"), song("B", "2"), song("C", "3")),
		},
	}

	dashboard := BuildDashboard(room, DefaultTopN, "https://vibecheck.example.com/rooms/room-1")

	assert.Equal(t, "Office", dashboard.RoomName)
	assert.Equal(t, 1, dashboard.TotalEntries)
	assert.Equal(t, 3, dashboard.UniqueSongs)
	assert.Nil(t, dashboard.PreviousEntry)
	assert.Len(t, dashboard.Playlist, 3)
	assert.False(t, dashboard.NotEnoughData)
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=https%3A%2F%2Fvibecheck.example.com%2Frooms%2Froom-1",
		dashboard.QRCodeURL)
}

func TestBuildDashboard_PreviousEntryIsSecondNewest(t *testing.T) {
	newest := entry(song("New", "1"), song("B", "2"), song("C", "3"))
	previous := entry(song("Prev", "1"), song("B", "2"), song("D", "4"))
	oldest := entry(song("Old", "1"), song("E", "5"), song("F", "6"))

	room := &models.RoomData{
		RoomID:  "room-1",
		Entries: []models.SongEntry{newest, previous, oldest},
	}

	dashboard := BuildDashboard(room, DefaultTopN, "")

	require.NotNil(t, dashboard.PreviousEntry)
	assert.Equal(t, "Prev", dashboard.PreviousEntry.Current.Title)
	assert.Equal(t, "B", dashboard.Playlist[0].Title)
	assert.Equal(t, "2 listeners", dashboard.Playlist[0].Reason)
}

func TestPreviousEntry_NilRoom(t *testing.T) {
	assert.Nil(t, PreviousEntry(nil))
}
