package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vibecheck/internal/metrics"
	"vibecheck/internal/models"
	"vibecheck/internal/playlist"
	"vibecheck/internal/repositories"
	"vibecheck/internal/services"
)

// Finalizer turns raw picks into canonical songs. It never fails.
type Finalizer interface {
	Finalize(ctx context.Context, current, favorite, underrated models.RawSong) services.ResolvedSongs
}

// CreateRoomRequest represents the request to open a room
type CreateRoomRequest struct {
	RoomName string `json:"roomName"`
}

// SubmitEntryRequest carries a visitor's three picks
type SubmitEntryRequest struct {
	Current    models.RawSong `json:"current"`
	Favorite   models.RawSong `json:"favorite"`
	Underrated models.RawSong `json:"underrated"`
}

// SubmitEntryResponse echoes the stored entry with the refreshed dashboard
type SubmitEntryResponse struct {
	Entry     models.SongEntry   `json:"entry"`
	Dashboard playlist.Dashboard `json:"dashboard"`
}

// RoomHandler handles room and entry requests
type RoomHandler struct {
	rooms     repositories.RoomRepository
	finalizer Finalizer
	topN      func() int
	baseURL   string
	now       func() time.Time
}

// NewRoomHandler creates a new room handler. topN is read per request so the
// playlist length can change at runtime; nil uses playlist.DefaultTopN.
func NewRoomHandler(rooms repositories.RoomRepository, finalizer Finalizer, topN func() int, baseURL string) *RoomHandler {
	if topN == nil {
		topN = func() int { return playlist.DefaultTopN }
	}
	return &RoomHandler{
		rooms:     rooms,
		finalizer: finalizer,
		topN:      topN,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
}

// CreateRoom handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	// An empty body is a room without a name
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	roomID := uuid.NewString()
	room, err := h.rooms.CreateRoom(c.Request.Context(), roomID, strings.TrimSpace(req.RoomName))
	if err != nil {
		slog.Error("Failed to create room", "roomID", roomID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create room",
			"details": err.Error(),
		})
		return
	}

	slog.Info("Room created", "roomID", room.RoomID, "roomName", room.RoomName)
	c.JSON(http.StatusCreated, room)
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := strings.TrimSpace(c.Param("id"))

	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		h.storeFailure(c, "Failed to load room", roomID, err)
		return
	}

	c.JSON(http.StatusOK, h.dashboard(room))
}

// SubmitEntry handles POST /api/v1/rooms/:id/entries
func (h *RoomHandler) SubmitEntry(c *gin.Context) {
	roomID := strings.TrimSpace(c.Param("id"))

	var req SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if missing := missingFields(req); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Please fill in all three songs",
			"missing": missing,
		})
		return
	}

	ctx := c.Request.Context()
	resolved := h.finalizer.Finalize(ctx, req.Current, req.Favorite, req.Underrated)
	entry := models.NewSongEntry(resolved.Current, resolved.Favorite, resolved.Underrated, h.now())

	if err := h.rooms.AppendEntry(ctx, roomID, entry); err != nil {
		h.storeFailure(c, "Failed to save entry", roomID, err)
		return
	}
	metrics.EntriesSubmitted.Inc()

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		// The entry is stored; answer with what we know rather than invite a resubmit
		slog.Warn("Failed to reload room after entry", "roomID", roomID, "error", err)
		room = &models.RoomData{RoomID: roomID, Entries: []models.SongEntry{entry}}
	}

	slog.Info("Entry submitted",
		"roomID", roomID,
		"current", entry.Current.Key(),
		"favorite", entry.Favorite.Key(),
		"underrated", entry.Underrated.Key())

	c.JSON(http.StatusCreated, SubmitEntryResponse{
		Entry:     entry,
		Dashboard: h.dashboard(room),
	})
}

func (h *RoomHandler) dashboard(room *models.RoomData) playlist.Dashboard {
	return playlist.BuildDashboard(room, h.topN(), h.roomURL(room.RoomID))
}

func (h *RoomHandler) roomURL(roomID string) string {
	if h.baseURL == "" {
		return ""
	}
	return h.baseURL + "/rooms/" + roomID
}

func (h *RoomHandler) storeFailure(c *gin.Context, message, roomID string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, repositories.ErrInvalidRoomID) {
		status = http.StatusBadRequest
	} else {
		slog.Error(message, "roomID", roomID, "error", err)
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func missingFields(req SubmitEntryRequest) []string {
	var missing []string
	if !req.Current.HasValue() {
		missing = append(missing, "current")
	}
	if !req.Favorite.HasValue() {
		missing = append(missing, "favorite")
	}
	if !req.Underrated.HasValue() {
		missing = append(missing, "underrated")
	}
	return missing
}
