package testutil

import (
	"context"

	"vibecheck/internal/models"
	"vibecheck/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockRoomRepository is a mock implementation of RoomRepository for testing
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) CreateRoom(ctx context.Context, roomID, roomName string) (*models.Room, error) {
	args := m.Called(ctx, roomID, roomName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRoomRepository) GetRoom(ctx context.Context, roomID string) (*models.RoomData, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomData), args.Error(1)
}

func (m *MockRoomRepository) AppendEntry(ctx context.Context, roomID string, entry models.SongEntry) error {
	args := m.Called(ctx, roomID, entry)
	return args.Error(0)
}

func (m *MockRoomRepository) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSearcher is a mock implementation of the suggestion searcher for testing
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) []models.Song {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Song)
}

// MockFinalizer is a mock implementation of the metadata finalizer for testing
type MockFinalizer struct {
	mock.Mock
}

func (m *MockFinalizer) Finalize(ctx context.Context, current, favorite, underrated models.RawSong) services.ResolvedSongs {
	args := m.Called(ctx, current, favorite, underrated)
	return args.Get(0).(services.ResolvedSongs)
}

// MockTokenExchanger is a mock implementation of the Spotify token relay for testing
type MockTokenExchanger struct {
	mock.Mock
}

func (m *MockTokenExchanger) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTokenExchanger) Exchange(ctx context.Context) (*services.RelayedToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RelayedToken), args.Error(1)
}

// Helper functions for setting up mock expectations

// ExpectGetRoom sets up expectation for GetRoom
func ExpectGetRoom(mockRepo *MockRoomRepository, roomID string, room *models.RoomData, err error) {
	mockRepo.On("GetRoom", mock.Anything, roomID).Return(room, err)
}

// ExpectAppendEntry sets up expectation for AppendEntry with any entry
func ExpectAppendEntry(mockRepo *MockRoomRepository, roomID string, err error) {
	mockRepo.On("AppendEntry", mock.Anything, roomID, mock.AnythingOfType("models.SongEntry")).Return(err)
}

// ExpectFinalize sets up expectation for Finalize with any input
func ExpectFinalize(mockFinalizer *MockFinalizer, resolved services.ResolvedSongs) {
	mockFinalizer.On("Finalize", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(resolved)
}
