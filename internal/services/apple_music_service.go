package services

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"vibecheck/internal/models"
)

// Apple Music API endpoints
const (
	appleMusicAPIURL            = "https://api.music.apple.com/v1"
	appleMusicDefaultStorefront = "us"
)

// appleMusicService implements SearchBackend for the Apple Music catalog
type appleMusicService struct {
	client      *resty.Client
	apiURL      string
	storefront  string
	keyID       string
	teamID      string
	privateKey  *ecdsa.PrivateKey
	jwtToken    string
	tokenExpiry time.Time
	now         func() time.Time
	mu          sync.RWMutex
}

// NewAppleMusicService creates an Apple Music tier signed with the .p8 key in keyFile
func NewAppleMusicService(keyID, teamID, keyFile, storefront string) (SearchBackend, error) {
	if keyID == "" || teamID == "" || keyFile == "" {
		return nil, credentialsError("apple_music", "init", "missing Apple Music API credentials")
	}

	privateKey, err := loadPrivateKey(keyFile)
	if err != nil {
		return nil, &PlatformError{
			Platform:  "apple_music",
			Operation: "init",
			Message:   "failed to load private key",
			Err:       fmt.Errorf("%w: %w", ErrCredentialsMissing, err),
		}
	}

	return newAppleMusicService(newPlatformClient(), appleMusicAPIURL, storefront, keyID, teamID, privateKey), nil
}

func newAppleMusicService(client *resty.Client, apiURL, storefront, keyID, teamID string, key *ecdsa.PrivateKey) *appleMusicService {
	if storefront == "" {
		storefront = appleMusicDefaultStorefront
	}
	return &appleMusicService{
		client:     client,
		apiURL:     strings.TrimRight(apiURL, "/"),
		storefront: storefront,
		keyID:      keyID,
		teamID:     teamID,
		privateKey: key,
		now:        time.Now,
	}
}

// Name returns the tier name
func (s *appleMusicService) Name() string {
	return "apple_music"
}

// Search queries the catalog for songs
func (s *appleMusicService) Search(ctx context.Context, query string, limit int) ([]models.Song, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	token, err := s.ensureValidToken()
	if err != nil {
		return nil, err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"term":  query,
			"types": "songs",
			"limit": fmt.Sprintf("%d", limit),
		}).
		Get(fmt.Sprintf("%s/catalog/%s/search", s.apiURL, s.storefront))
	if err != nil {
		return nil, requestError("apple_music", "search", err)
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, statusError("apple_music", "search", resp.StatusCode())
	}

	var result AppleMusicSearchResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, malformedError("apple_music", "search", err)
	}
	if result.Results == nil {
		return nil, malformedError("apple_music", "search", nil)
	}

	// No songs key means no matches
	if result.Results.Songs == nil {
		return []models.Song{}, nil
	}

	songs := make([]models.Song, 0, len(result.Results.Songs.Data))
	for _, track := range result.Results.Songs.Data {
		songs = append(songs, s.convertAppleMusicTrack(track))
	}

	return truncateSongs(songs, limit), nil
}

// BuildURL constructs Apple Music URL from track ID
func (s *appleMusicService) BuildURL(trackID string) string {
	return fmt.Sprintf("https://music.apple.com/%s/song/%s", s.storefront, trackID)
}

// loadPrivateKey loads the Apple Music private key from file
func loadPrivateKey(keyFile string) (*ecdsa.PrivateKey, error) {
	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block from private key")
	}

	privateKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	ecdsaKey, ok := privateKey.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not ECDSA")
	}

	return ecdsaKey, nil
}

// ensureValidToken returns a developer token, minting a new one when needed
func (s *appleMusicService) ensureValidToken() (string, error) {
	s.mu.RLock()
	if s.jwtToken != "" && s.now().Before(s.tokenExpiry) {
		token := s.jwtToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.jwtToken != "" && s.now().Before(s.tokenExpiry) {
		return s.jwtToken, nil
	}

	token, err := s.generateJWT()
	if err != nil {
		return "", &PlatformError{
			Platform:  "apple_music",
			Operation: "auth",
			Message:   "failed to generate JWT token",
			Err:       err,
		}
	}

	s.jwtToken = token
	s.tokenExpiry = s.now().Add(55 * time.Minute) // JWT tokens last 60 minutes, refresh at 55

	slog.Info("Apple Music JWT token refreshed", "expires_at", s.tokenExpiry)

	return s.jwtToken, nil
}

// generateJWT creates a JWT token for Apple Music API authentication
func (s *appleMusicService) generateJWT() (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.teamID,
		"iat": now.Unix(),
		"exp": now.Add(60 * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = s.keyID

	return token.SignedString(s.privateKey)
}

func (s *appleMusicService) convertAppleMusicTrack(track AppleMusicSong) models.Song {
	link := track.Attributes.URL
	if link == "" && track.ID != "" {
		link = s.BuildURL(track.ID)
	}
	return models.NewSong(track.Attributes.Name, track.Attributes.ArtistName, link)
}

// Apple Music API response structures
type AppleMusicSearchResult struct {
	Results *AppleMusicResults `json:"results"`
}

type AppleMusicResults struct {
	Songs *AppleMusicSongs `json:"songs"`
}

type AppleMusicSongs struct {
	Data []AppleMusicSong `json:"data"`
}

type AppleMusicSong struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Attributes AppleMusicSongAttributes `json:"attributes"`
}

type AppleMusicSongAttributes struct {
	Name       string `json:"name"`
	ArtistName string `json:"artistName"`
	AlbumName  string `json:"albumName"`
	URL        string `json:"url"`
}
