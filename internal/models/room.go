package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Room represents a shared namespace visitors submit picks into
type Room struct {
	RoomID    string    `bson:"room_id" json:"roomId"`
	RoomName  string    `bson:"room_name,omitempty" json:"roomName,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// SongEntry is one visitor's submission. Entries are immutable once stored.
type SongEntry struct {
	Current    Song  `bson:"current" json:"current"`
	Favorite   Song  `bson:"favorite" json:"favorite"`
	Underrated Song  `bson:"underrated" json:"underrated"`
	Timestamp  int64 `bson:"timestamp" json:"timestamp"` // Milliseconds since epoch
}

// NewSongEntry creates an entry stamped with the given time
func NewSongEntry(current, favorite, underrated Song, at time.Time) SongEntry {
	return SongEntry{
		Current:    current,
		Favorite:   favorite,
		Underrated: underrated,
		Timestamp:  at.UnixMilli(),
	}
}

// Songs returns the entry's picks in submission order: current, favorite, underrated
func (e SongEntry) Songs() [3]Song {
	return [3]Song{e.Current, e.Favorite, e.Underrated}
}

// SubmittedAt returns the entry timestamp as a time.Time
func (e SongEntry) SubmittedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// RoomData is a snapshot of a room with its entries, newest first
type RoomData struct {
	RoomID   string      `json:"roomId"`
	RoomName string      `json:"roomName,omitempty"`
	Entries  []SongEntry `json:"entries"`
}

// DisplayName returns the room name, or its id when unnamed
func (r *RoomData) DisplayName() string {
	if strings.TrimSpace(r.RoomName) != "" {
		return r.RoomName
	}
	return r.RoomID
}

// RawSong is a visitor's raw pick: either free text being typed or a Song
// already chosen from the suggestion list.
type RawSong struct {
	Text string
	Song *Song
}

// TextInput wraps free text as a raw pick
func TextInput(text string) RawSong {
	return RawSong{Text: text}
}

// SongInput wraps an already-resolved song as a raw pick
func SongInput(song Song) RawSong {
	return RawSong{Song: &song}
}

// IsResolved reports whether the pick is already a Song
func (r RawSong) IsResolved() bool {
	return r.Song != nil
}

// HasValue reports whether the pick can be submitted. A resolved Song always counts.
func (r RawSong) HasValue() bool {
	if r.Song != nil {
		return true
	}
	return strings.TrimSpace(r.Text) != ""
}

// Display formats the pick for a resolver prompt
func (r RawSong) Display() string {
	if r.Song != nil {
		return r.Song.Display()
	}
	return r.Text
}

// MarshalJSON encodes text picks as a JSON string and resolved picks as a song object
func (r RawSong) MarshalJSON() ([]byte, error) {
	if r.Song != nil {
		return json.Marshal(r.Song)
	}
	return json.Marshal(r.Text)
}

// UnmarshalJSON accepts either a JSON string or a song object
func (r *RawSong) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = RawSong{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*r = RawSong{Text: text}
		return nil
	case '{':
		var song Song
		if err := json.Unmarshal(trimmed, &song); err != nil {
			return err
		}
		*r = RawSong{Song: &song}
		return nil
	default:
		return fmt.Errorf("song must be a string or an object, got %s", string(trimmed))
	}
}
