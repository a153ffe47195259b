package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"vibecheck/internal/models"
)

const spotifyAPIURL = "https://api.spotify.com/v1"

// spotifyService implements SearchBackend against the Spotify Web API
type spotifyService struct {
	client *resty.Client
	apiURL string
	tokens *TokenCache
}

// NewSpotifyService creates a Spotify tier. apiURL defaults to the public API.
func NewSpotifyService(tokens *TokenCache, apiURL string) SearchBackend {
	return newSpotifyService(newPlatformClient(), tokens, apiURL)
}

func newSpotifyService(client *resty.Client, tokens *TokenCache, apiURL string) *spotifyService {
	if apiURL == "" {
		apiURL = spotifyAPIURL
	}
	return &spotifyService{
		client: client,
		apiURL: strings.TrimRight(apiURL, "/"),
		tokens: tokens,
	}
}

// Name returns the tier name
func (s *spotifyService) Name() string {
	return "spotify"
}

// Search runs a track search and maps name, joined artists and the Spotify link
func (s *spotifyService) Search(ctx context.Context, query string, limit int) ([]models.Song, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     query,
			"type":  "track",
			"limit": fmt.Sprintf("%d", limit),
		}).
		Get(s.apiURL + "/search")
	if err != nil {
		return nil, requestError("spotify", "search", err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		// Token was revoked or expired early
		s.tokens.Invalidate()
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, statusError("spotify", "search", resp.StatusCode())
	}

	var result SpotifySearchResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, malformedError("spotify", "search", err)
	}
	if result.Tracks == nil {
		return nil, malformedError("spotify", "search", nil)
	}

	songs := make([]models.Song, 0, len(result.Tracks.Items))
	for _, track := range result.Tracks.Items {
		songs = append(songs, convertSpotifyTrack(track))
	}

	return truncateSongs(songs, limit), nil
}

func convertSpotifyTrack(track SpotifyTrack) models.Song {
	artists := make([]string, len(track.Artists))
	for i, artist := range track.Artists {
		artists[i] = artist.Name
	}
	return models.NewSong(track.Name, joinArtists(artists), track.ExternalURLs.Spotify)
}

// Spotify API response structures
type SpotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []SpotifyArtist     `json:"artists"`
	ExternalURLs SpotifyExternalURLs `json:"external_urls"`
}

type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SpotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type SpotifySearchResult struct {
	Tracks *SpotifyTracksPaging `json:"tracks"`
}

type SpotifyTracksPaging struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
}
