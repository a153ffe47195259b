package repositories

import (
	"context"
	"errors"
	"strings"

	"vibecheck/internal/models"
)

// ErrInvalidRoomID is returned for blank room ids
var ErrInvalidRoomID = errors.New("invalid room id")

// RoomRepository defines the interface for room and entry storage
type RoomRepository interface {
	// CreateRoom stores a room if it does not exist yet and returns the stored record.
	// An existing room keeps its original name.
	CreateRoom(ctx context.Context, roomID, roomName string) (*models.Room, error)

	// GetRoom returns the room snapshot with entries newest first.
	// An unknown room yields an empty RoomData, not an error.
	GetRoom(ctx context.Context, roomID string) (*models.RoomData, error)

	// AppendEntry stores an entry, creating the room implicitly
	AppendEntry(ctx context.Context, roomID string, entry models.SongEntry) error

	// Health checks the underlying store
	Health(ctx context.Context) error
}

func validateRoomID(roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return ErrInvalidRoomID
	}
	return nil
}
