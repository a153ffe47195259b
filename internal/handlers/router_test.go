package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"vibecheck/internal/cache"
	"vibecheck/internal/models"
	"vibecheck/internal/testutil"
)

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func setupFullRouter(t *testing.T, repo *testutil.MockRoomRepository, store HealthChecker) *testutil.HTTPTestHelper {
	helper := testutil.NewHTTPTestHelper(t)

	searcher := &testutil.MockSearcher{}
	searcher.On("Search", mock.Anything, mock.Anything).Return([]models.Song{})

	relay := &testutil.MockTokenExchanger{}
	relay.On("Configured").Return(false)

	helper.SetRouter(NewRouter(Router{
		Rooms:  NewRoomHandler(repo, &testutil.MockFinalizer{}, nil, ""),
		Search: NewSearchHandler(searcher),
		Token:  NewTokenHandler(relay),
		Health: NewHealthHandler(map[string]HealthChecker{
			"store": store,
			"cache": cache.NewMemoryCache(10),
			"none":  nil,
		}),
	}))
	return helper
}

func TestRouter_Routes(t *testing.T) {
	repo := &testutil.MockRoomRepository{}
	testutil.ExpectGetRoom(repo, "abc", testutil.CreateTestRoom("abc"), nil)
	helper := setupFullRouter(t, repo, repo)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/rooms/abc", http.StatusOK},
		{"/api/v1/search?q=abba", http.StatusOK},
		{"/api/token", http.StatusInternalServerError},
		{"/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.status, helper.GetJSON(tt.path).Code)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	repo := &testutil.MockRoomRepository{}
	helper := setupFullRouter(t, repo, repo)

	helper.GetJSON("/api/v1/search?q=abba")
	recorder := helper.GetJSON("/metrics")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), `route="/api/v1/search"`))
}

func TestHealthHandler_Healthy(t *testing.T) {
	repo := &testutil.MockRoomRepository{}
	helper := setupFullRouter(t, repo, healthFunc(func(context.Context) error { return nil }))

	var response map[string]interface{}
	helper.AssertJSONResponse(helper.GetJSON("/health"), http.StatusOK, &response)
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, map[string]interface{}{"store": "ok", "cache": "ok"}, response["components"])
}

func TestHealthHandler_Degraded(t *testing.T) {
	repo := &testutil.MockRoomRepository{}
	helper := setupFullRouter(t, repo, healthFunc(func(context.Context) error { return errors.New("no primary") }))

	var response map[string]interface{}
	helper.AssertJSONResponse(helper.GetJSON("/health"), http.StatusServiceUnavailable, &response)
	assert.Equal(t, "degraded", response["status"])
	assert.Equal(t, map[string]interface{}{"store": "unhealthy", "cache": "ok"}, response["components"])
}
