package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"vibecheck/internal/metrics"
)

// SpotifyTokenURL is the client-credentials endpoint
const SpotifyTokenURL = "https://accounts.spotify.com/api/token"

// TokenExpirySkew is how long before expiry a cached token stops being reused
const TokenExpirySkew = 60 * time.Second

// TokenFetcher performs one bearer token exchange
type TokenFetcher interface {
	Source() string
	FetchToken(ctx context.Context) (*oauth2.Token, error)
}

// TokenCache owns a bearer token and its expiry. The mutex is held across the
// exchange so concurrent callers wait for a single in-flight fetch.
type TokenCache struct {
	fetcher   TokenFetcher
	token     string
	expiresAt time.Time
	now       func() time.Time
	mu        sync.Mutex
}

// NewTokenCache creates an empty cache around fetcher
func NewTokenCache(fetcher TokenFetcher) *TokenCache {
	return &TokenCache{
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Token returns the cached token, exchanging a new one when it is missing or
// within TokenExpirySkew of expiry
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid() {
		return c.token, nil
	}

	token, err := c.fetcher.FetchToken(ctx)
	if err != nil {
		metrics.TokenExchanges.WithLabelValues(c.fetcher.Source(), "error").Inc()
		return "", err
	}
	if token == nil || token.AccessToken == "" {
		metrics.TokenExchanges.WithLabelValues(c.fetcher.Source(), "error").Inc()
		return "", malformedError(c.fetcher.Source(), "auth", nil)
	}

	c.token = token.AccessToken
	c.expiresAt = token.Expiry
	metrics.TokenExchanges.WithLabelValues(c.fetcher.Source(), "ok").Inc()

	slog.Info("Access token refreshed", "source", c.fetcher.Source(), "expires_at", c.expiresAt)

	return c.token, nil
}

// Invalidate drops the cached token so the next call exchanges again
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

// valid reports whether the cached token can be reused (caller holds mu).
// A zero expiry means the issuer did not report one.
func (c *TokenCache) valid() bool {
	if c.token == "" {
		return false
	}
	if c.expiresAt.IsZero() {
		return true
	}
	return c.now().Before(c.expiresAt.Add(-TokenExpirySkew))
}

// clientCredentialsFetcher exchanges client id and secret directly
type clientCredentialsFetcher struct {
	config *clientcredentials.Config
}

// NewClientCredentialsFetcher creates a fetcher against tokenURL
func NewClientCredentialsFetcher(clientID, clientSecret, tokenURL string) (TokenFetcher, error) {
	if clientID == "" || clientSecret == "" {
		return nil, credentialsError("spotify", "auth", "missing Spotify client credentials")
	}
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}
	return &clientCredentialsFetcher{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}, nil
}

func (f *clientCredentialsFetcher) Source() string {
	return "client_credentials"
}

func (f *clientCredentialsFetcher) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	token, err := f.config.Token(ctx)
	if err != nil {
		return nil, requestError("spotify", "auth", err)
	}
	return token, nil
}

// relayTokenFetcher reads tokens from a /api/token relay owned by another process
type relayTokenFetcher struct {
	client   *resty.Client
	relayURL string
	now      func() time.Time
}

type relayTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewRelayTokenFetcher creates a fetcher for relayURL (e.g. https://host/api/token)
func NewRelayTokenFetcher(relayURL string) (TokenFetcher, error) {
	if relayURL == "" {
		return nil, credentialsError("token_relay", "auth", "missing token relay URL")
	}
	return &relayTokenFetcher{
		client:   newPlatformClient(),
		relayURL: relayURL,
		now:      time.Now,
	}, nil
}

func (f *relayTokenFetcher) Source() string {
	return "relay"
}

func (f *relayTokenFetcher) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(f.relayURL)
	if err != nil {
		return nil, requestError("token_relay", "auth", err)
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, statusError("token_relay", "auth", resp.StatusCode())
	}

	var body relayTokenResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, malformedError("token_relay", "auth", err)
	}
	if body.AccessToken == "" {
		return nil, malformedError("token_relay", "auth", nil)
	}

	token := &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
	}
	if body.ExpiresIn > 0 {
		token.Expiry = f.now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return token, nil
}

// RelayedToken is an upstream token response passed through verbatim
type RelayedToken struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// TokenRelay performs the raw client-credentials exchange for the /api/token
// endpoint so callers never see the client secret
type TokenRelay struct {
	client       *resty.Client
	clientID     string
	clientSecret string
	tokenURL     string
}

// NewTokenRelay creates a relay. Empty credentials are allowed; Exchange then
// reports ErrCredentialsMissing.
func NewTokenRelay(clientID, clientSecret, tokenURL string) *TokenRelay {
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}
	return &TokenRelay{
		client:       newPlatformClient(),
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
	}
}

// Configured reports whether both credentials are present
func (r *TokenRelay) Configured() bool {
	return strings.TrimSpace(r.clientID) != "" && strings.TrimSpace(r.clientSecret) != ""
}

// Exchange posts grant_type=client_credentials and returns the upstream
// response whatever its status
func (r *TokenRelay) Exchange(ctx context.Context) (*RelayedToken, error) {
	if !r.Configured() {
		return nil, credentialsError("spotify", "token_relay", "missing Spotify client credentials")
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(r.tokenURL)
	if err != nil {
		metrics.TokenExchanges.WithLabelValues("relay_endpoint", "error").Inc()
		return nil, requestError("spotify", "token_relay", err)
	}

	result := "ok"
	if !isSuccess(resp.StatusCode()) {
		result = "upstream_status"
	}
	metrics.TokenExchanges.WithLabelValues("relay_endpoint", result).Inc()

	return &RelayedToken{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}
