package services

import (
	"log/slog"
	"strings"
)

// SearchTierOptions carries the settings needed to construct search tiers
type SearchTierOptions struct {
	Tiers []string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyTokenURL     string
	SpotifyAPIURL       string
	TokenRelayURL       string

	AppleMusicKeyID      string
	AppleMusicTeamID     string
	AppleMusicKeyFile    string
	AppleMusicStorefront string

	ITunesSearchURL string
	CORSProxyURL    string
}

// BuildSearchBackends constructs the named tiers in order. Tiers that cannot
// be built (unknown name, missing credentials) are skipped with a warning.
func BuildSearchBackends(opts SearchTierOptions) []SearchBackend {
	backends := make([]SearchBackend, 0, len(opts.Tiers))

	for _, name := range opts.Tiers {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		backend, err := buildSearchBackend(name, opts)
		if err != nil {
			slog.Warn("Search tier disabled", "tier", name, "error", err)
			continue
		}
		backends = append(backends, backend)
	}

	return backends
}

func buildSearchBackend(name string, opts SearchTierOptions) (SearchBackend, error) {
	switch name {
	case "spotify":
		fetcher, err := spotifyTokenFetcher(opts)
		if err != nil {
			return nil, err
		}
		return NewSpotifyService(NewTokenCache(fetcher), opts.SpotifyAPIURL), nil
	case "apple_music":
		return NewAppleMusicService(opts.AppleMusicKeyID, opts.AppleMusicTeamID, opts.AppleMusicKeyFile, opts.AppleMusicStorefront)
	case "itunes":
		return NewITunesService(opts.ITunesSearchURL, opts.CORSProxyURL), nil
	case "sample":
		return NewSampleCatalog(), nil
	default:
		return nil, &PlatformError{
			Platform:  name,
			Operation: "init",
			Message:   "unknown search tier",
		}
	}
}

// spotifyTokenFetcher prefers local client credentials and falls back to a relay
func spotifyTokenFetcher(opts SearchTierOptions) (TokenFetcher, error) {
	if opts.SpotifyClientID != "" && opts.SpotifyClientSecret != "" {
		return NewClientCredentialsFetcher(opts.SpotifyClientID, opts.SpotifyClientSecret, opts.SpotifyTokenURL)
	}
	if opts.TokenRelayURL != "" {
		return NewRelayTokenFetcher(opts.TokenRelayURL)
	}
	return nil, credentialsError("spotify", "init", "no client credentials or token relay configured")
}

// ResolverOptions selects and configures the semantic resolver
type ResolverOptions struct {
	Resolver     string
	GoogleAPIKey string
	GeminiModel  string
	OllamaHost   string
	OllamaModel  string
}

// BuildStructuredGenerator returns the configured resolver, or nil when none
// is usable. A nil generator makes the finalizer use local fallbacks only.
func BuildStructuredGenerator(opts ResolverOptions) StructuredGenerator {
	switch strings.ToLower(strings.TrimSpace(opts.Resolver)) {
	case "", "gemini":
		client, err := NewGeminiClient(opts.GoogleAPIKey, opts.GeminiModel)
		if err != nil {
			slog.Warn("Semantic resolver disabled", "resolver", "gemini", "error", err)
			return nil
		}
		return client
	case "ollama":
		return NewOllamaClient(opts.OllamaHost, opts.OllamaModel)
	case "none":
		return nil
	default:
		slog.Warn("Unknown semantic resolver, using local fallback only", "resolver", opts.Resolver)
		return nil
	}
}
