package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage drivers
const (
	StorageMongo  = "mongo"
	StorageSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Application settings
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Storage
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"mongo"`
	MongodbURL    string `envconfig:"MONGODB_URL"`
	MongodbName   string `envconfig:"MONGODB_DATABASE" default:"vibecheck"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"vibecheck.db"`
	ValkeyURL     string `envconfig:"VALKEY_URL"` // Empty uses an in-process cache

	// Spotify
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET"`
	SpotifyTokenURL     string `envconfig:"SPOTIFY_TOKEN_URL" default:"https://accounts.spotify.com/api/token"`
	SpotifyAPIURL       string `envconfig:"SPOTIFY_API_URL" default:"https://api.spotify.com/v1"`
	TokenRelayURL       string `envconfig:"TOKEN_RELAY_URL"`

	// iTunes
	ITunesSearchURL string `envconfig:"ITUNES_SEARCH_URL" default:"https://itunes.apple.com/search"`
	CORSProxyURL    string `envconfig:"CORS_PROXY_URL"`

	// Apple Music
	AppleMusicKeyID      string `envconfig:"APPLE_MUSIC_KEY_ID"`
	AppleMusicTeamID     string `envconfig:"APPLE_MUSIC_TEAM_ID"`
	AppleMusicKeyFile    string `envconfig:"APPLE_MUSIC_KEY_FILE"`
	AppleMusicStorefront string `envconfig:"APPLE_MUSIC_STOREFRONT" default:"us"`

	// Metadata resolver
	Resolver        string        `envconfig:"RESOLVER" default:"gemini"`
	GoogleAPIKey    string        `envconfig:"GOOGLE_API_KEY"`
	GeminiModel     string        `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
	OllamaHost      string        `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaModel     string        `envconfig:"OLLAMA_MODEL" default:"llama3.2"`
	ResolverTimeout time.Duration `envconfig:"RESOLVER_TIMEOUT" default:"15s"`

	// Search
	SearchTiers          []string      `envconfig:"SEARCH_TIERS" default:"spotify,apple_music,itunes"`
	SearchSampleFallback bool          `envconfig:"SEARCH_SAMPLE_FALLBACK" default:"false"`
	SearchCacheTTL       time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"10m"`

	// Optional TOML file with hot-reloadable tuning
	TuningConfigPath string `envconfig:"TUNING_CONFIG_PATH"`
}

// legacyEnv maps a setting to the name the browser build used for it
var legacyEnv = map[string]string{
	"SPOTIFY_CLIENT_ID":     "VITE_SPOTIFY_CLIENT_ID",
	"SPOTIFY_CLIENT_SECRET": "VITE_SPOTIFY_CLIENT_SECRET",
	"GOOGLE_API_KEY":        "VITE_GOOGLE_API_KEY",
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	cfg.applyLegacyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyLegacyEnv() {
	targets := map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.SpotifyClientID,
		"SPOTIFY_CLIENT_SECRET": &c.SpotifyClientSecret,
		"GOOGLE_API_KEY":        &c.GoogleAPIKey,
	}
	for name, target := range targets {
		if *target != "" {
			continue
		}
		if value := os.Getenv(legacyEnv[name]); value != "" {
			*target = value
		}
	}
}

func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.Resolver = strings.ToLower(strings.TrimSpace(c.Resolver))

	tiers := make([]string, 0, len(c.SearchTiers))
	for _, tier := range c.SearchTiers {
		tier = strings.ToLower(strings.TrimSpace(tier))
		if tier != "" {
			tiers = append(tiers, tier)
		}
	}
	c.SearchTiers = tiers
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMongo:
		if c.MongodbURL == "" {
			return fmt.Errorf("MONGODB_URL is required when STORAGE_DRIVER=%s", StorageMongo)
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_DRIVER=%s", StorageSQLite)
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.StorageDriver)
	}

	if c.ResolverTimeout <= 0 {
		return fmt.Errorf("RESOLVER_TIMEOUT must be positive, got %s", c.ResolverTimeout)
	}
	if c.SearchCacheTTL < 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL cannot be negative, got %s", c.SearchCacheTTL)
	}
	return nil
}

// SpotifyCredentialsConfigured reports whether the server can exchange Spotify tokens itself
func (c *Config) SpotifyCredentialsConfigured() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}
