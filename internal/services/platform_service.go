package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"vibecheck/internal/models"
)

// DefaultSearchLimit caps every search result list
const DefaultSearchLimit = 5

// SearchBackend is one tier of the autocomplete search chain
type SearchBackend interface {
	// Name identifies the tier in logs, metrics and SEARCH_TIERS
	Name() string

	// Search returns at most limit songs. An empty slice is a valid answer;
	// an error means the tier could not answer and the next one should be tried.
	Search(ctx context.Context, query string, limit int) ([]models.Song, error)
}

// Error taxonomy shared by backends, resolvers and token sources
var (
	ErrCredentialsMissing  = errors.New("credentials missing")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrFallbackExhausted   = errors.New("all search tiers failed")
)

// PlatformError represents an error from a platform service
type PlatformError struct {
	Platform  string
	Operation string
	Message   string
	URL       string
	Err       error
}

func (e *PlatformError) Error() string {
	msg := e.Platform + " " + e.Operation + " failed"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.URL != "" {
		msg += " (URL: " + e.URL + ")"
	}
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func credentialsError(platform, operation, message string) error {
	return &PlatformError{
		Platform:  platform,
		Operation: operation,
		Message:   message,
		Err:       ErrCredentialsMissing,
	}
}

func requestError(platform, operation string, err error) error {
	return &PlatformError{
		Platform:  platform,
		Operation: operation,
		Message:   "request failed",
		Err:       fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err),
	}
}

func statusError(platform, operation string, status int) error {
	return &PlatformError{
		Platform:  platform,
		Operation: operation,
		Message:   fmt.Sprintf("API returned status %d", status),
		Err:       ErrUpstreamUnavailable,
	}
}

func malformedError(platform, operation string, err error) error {
	wrapped := ErrMalformedResponse
	if err != nil {
		wrapped = fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &PlatformError{
		Platform:  platform,
		Operation: operation,
		Message:   "unexpected response body",
		Err:       wrapped,
	}
}

// newPlatformClient returns the resty client shared by all upstream integrations
func newPlatformClient() *resty.Client {
	return resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// joinArtists joins multiple artists into a single string
func joinArtists(artists []string) string {
	return strings.Join(artists, ", ")
}

func truncateSongs(songs []models.Song, limit int) []models.Song {
	if songs == nil {
		return []models.Song{}
	}
	if limit > 0 && len(songs) > limit {
		return songs[:limit]
	}
	return songs
}
