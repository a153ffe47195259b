package services

import (
	"context"
	"sync/atomic"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"

	"vibecheck/internal/models"
)

// MockSearchBackend is a mock implementation of SearchBackend for testing
type MockSearchBackend struct {
	mock.Mock
	name string
}

// NewMockSearchBackend creates a mock tier with the given name
func NewMockSearchBackend(name string) *MockSearchBackend {
	return &MockSearchBackend{name: name}
}

func (m *MockSearchBackend) Name() string {
	return m.name
}

func (m *MockSearchBackend) Search(ctx context.Context, query string, limit int) ([]models.Song, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Song), args.Error(1)
}

// MockStructuredGenerator is a mock implementation of StructuredGenerator for testing
type MockStructuredGenerator struct {
	mock.Mock
}

func (m *MockStructuredGenerator) Name() string {
	return "mock"
}

func (m *MockStructuredGenerator) GenerateJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	args := m.Called(ctx, prompt, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// StaticTokenFetcher hands out a fixed token and counts exchanges
type StaticTokenFetcher struct {
	Token     *oauth2.Token
	Err       error
	Exchanges atomic.Int32
	// Gate, when set, blocks each exchange until it is closed
	Gate chan struct{}
}

func (f *StaticTokenFetcher) Source() string {
	return "static"
}

func (f *StaticTokenFetcher) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	f.Exchanges.Add(1)
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	token := *f.Token
	return &token, nil
}
