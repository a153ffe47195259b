package repositories

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"vibecheck/internal/cache"
	"vibecheck/internal/models"
)

// roomCacheTTL bounds how stale a dashboard read may be on another replica
const roomCacheTTL = 30 * time.Second

// cachedRoomRepository wraps a RoomRepository with snapshot caching
type cachedRoomRepository struct {
	repository RoomRepository
	cache      cache.Cache
}

// NewCachedRoomRepository creates a new cached room repository
func NewCachedRoomRepository(repository RoomRepository, cache cache.Cache) RoomRepository {
	return &cachedRoomRepository{
		repository: repository,
		cache:      cache,
	}
}

func roomKey(roomID string) string { return "room:" + roomID }

// CreateRoom creates in the repository and drops any cached snapshot
func (r *cachedRoomRepository) CreateRoom(ctx context.Context, roomID, roomName string) (*models.Room, error) {
	room, err := r.repository.CreateRoom(ctx, roomID, roomName)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, roomID)
	return room, nil
}

// GetRoom checks cache first, then repository
func (r *cachedRoomRepository) GetRoom(ctx context.Context, roomID string) (*models.RoomData, error) {
	cacheKey := roomKey(roomID)

	if cached := r.getFromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	room, err := r.repository.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	r.cacheResult(ctx, cacheKey, room)
	return room, nil
}

// AppendEntry writes through and invalidates the room snapshot
func (r *cachedRoomRepository) AppendEntry(ctx context.Context, roomID string, entry models.SongEntry) error {
	if err := r.repository.AppendEntry(ctx, roomID, entry); err != nil {
		return err
	}

	r.invalidate(ctx, roomID)
	return nil
}

// Health checks the underlying repository
func (r *cachedRoomRepository) Health(ctx context.Context) error {
	return r.repository.Health(ctx)
}

func (r *cachedRoomRepository) getFromCache(ctx context.Context, key string) *models.RoomData {
	data, err := r.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}

	var room models.RoomData
	if err := json.Unmarshal(data, &room); err != nil {
		slog.Error("Failed to unmarshal room from cache", "key", key, "error", err)
		// Delete corrupted cache entry
		_ = r.cache.Delete(ctx, key)
		return nil
	}
	if room.Entries == nil {
		room.Entries = []models.SongEntry{}
	}
	return &room
}

func (r *cachedRoomRepository) cacheResult(ctx context.Context, key string, room *models.RoomData) {
	data, err := json.Marshal(room)
	if err != nil {
		slog.Error("Failed to marshal room for cache", "key", key, "error", err)
		return
	}

	if err := r.cache.Set(ctx, key, data, roomCacheTTL); err != nil {
		slog.Error("Failed to cache room", "key", key, "error", err)
	}
}

func (r *cachedRoomRepository) invalidate(ctx context.Context, roomID string) {
	if err := r.cache.Delete(ctx, roomKey(roomID)); err != nil {
		slog.Error("Failed to invalidate room cache", "roomID", roomID, "error", err)
	}
}
