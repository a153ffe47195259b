package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"vibecheck/internal/models"
)

const itunesSearchURL = "https://itunes.apple.com/search"

// itunesService implements SearchBackend for the public iTunes Search API.
// When proxyURL is set, a failed direct call is retried once through it.
type itunesService struct {
	client    *resty.Client
	searchURL string
	proxyURL  string
}

// NewITunesService creates an iTunes tier. proxyURL is a prefix the
// url-encoded target is appended to (e.g. https://corsproxy.io/?url=).
func NewITunesService(searchURL, proxyURL string) SearchBackend {
	return newITunesService(newPlatformClient(), searchURL, proxyURL)
}

func newITunesService(client *resty.Client, searchURL, proxyURL string) *itunesService {
	if searchURL == "" {
		searchURL = itunesSearchURL
	}
	return &itunesService{
		client:    client,
		searchURL: searchURL,
		proxyURL:  proxyURL,
	}
}

// Name returns the tier name
func (s *itunesService) Name() string {
	return "itunes"
}

// Search looks up songs by term
func (s *itunesService) Search(ctx context.Context, query string, limit int) ([]models.Song, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	target := s.searchURL + "?" + url.Values{
		"term":   {query},
		"entity": {"song"},
		"limit":  {strconv.Itoa(limit)},
	}.Encode()

	songs, err := s.fetch(ctx, target)
	if err != nil && s.proxyURL != "" && ctx.Err() == nil {
		slog.Warn("iTunes direct search failed, retrying through proxy", "error", err)
		songs, err = s.fetch(ctx, s.proxyURL+url.QueryEscape(target))
	}
	if err != nil {
		return nil, err
	}

	return truncateSongs(songs, limit), nil
}

func (s *itunesService) fetch(ctx context.Context, target string) ([]models.Song, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, requestError("itunes", "search", err)
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, statusError("itunes", "search", resp.StatusCode())
	}

	// iTunes answers with text/javascript, so decode by hand
	var result ITunesSearchResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, malformedError("itunes", "search", err)
	}
	if result.Results == nil {
		return nil, malformedError("itunes", "search", nil)
	}

	songs := make([]models.Song, 0, len(*result.Results))
	for _, track := range *result.Results {
		songs = append(songs, models.NewSong(track.TrackName, track.ArtistName, track.TrackViewURL))
	}
	return songs, nil
}

// iTunes API response structures
type ITunesSearchResult struct {
	ResultCount int            `json:"resultCount"`
	Results     *[]ITunesTrack `json:"results"`
}

type ITunesTrack struct {
	TrackID      int64  `json:"trackId"`
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	TrackViewURL string `json:"trackViewUrl"`
}
