// Package app assembles the stores, caches and services shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vibecheck/internal/cache"
	"vibecheck/internal/config"
	"vibecheck/internal/models"
	"vibecheck/internal/repositories"
	"vibecheck/internal/services"
)

// l1CacheItems bounds the in-process cache in front of Valkey
const l1CacheItems = 1000

// Store is a room repository with the resources it owns
type Store struct {
	Rooms repositories.RoomRepository
	close func(ctx context.Context) error
}

// Close releases the database connection
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenCache connects to Valkey, or returns an in-process cache when no URL is set
func OpenCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.ValkeyURL == "" {
		slog.Info("VALKEY_URL not set, using in-process cache")
		return cache.NewMemoryCache(l1CacheItems), nil
	}

	c, err := cache.NewMultiLevelCache(cfg.ValkeyURL, l1CacheItems)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return c, nil
}

// OpenStore opens the configured room store and wraps it with snapshot caching
func OpenStore(ctx context.Context, cfg *config.Config, roomCache cache.Cache) (*Store, error) {
	var store Store

	switch cfg.StorageDriver {
	case config.StorageMongo:
		db, err := models.NewDatabase(ctx, cfg.MongodbURL, cfg.MongodbName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.CreateIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		store.Rooms = repositories.NewMongoRoomRepository(db)
		store.close = db.Close
	case config.StorageSQLite:
		repo, err := repositories.NewSQLiteRoomRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store.Rooms = repo
		store.close = func(context.Context) error { return repo.Close() }
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	if roomCache != nil {
		store.Rooms = repositories.NewCachedRoomRepository(store.Rooms, roomCache)
	}

	slog.Info("Room store ready", "driver", cfg.StorageDriver)
	return &store, nil
}

// NewSearchChain builds the configured search tiers in order
func NewSearchChain(cfg *config.Config, resultCache cache.Cache) *services.SearchChain {
	backends := services.BuildSearchBackends(services.SearchTierOptions{
		Tiers:                cfg.SearchTiers,
		SpotifyClientID:      cfg.SpotifyClientID,
		SpotifyClientSecret:  cfg.SpotifyClientSecret,
		SpotifyTokenURL:      cfg.SpotifyTokenURL,
		SpotifyAPIURL:        cfg.SpotifyAPIURL,
		TokenRelayURL:        cfg.TokenRelayURL,
		AppleMusicKeyID:      cfg.AppleMusicKeyID,
		AppleMusicTeamID:     cfg.AppleMusicTeamID,
		AppleMusicKeyFile:    cfg.AppleMusicKeyFile,
		AppleMusicStorefront: cfg.AppleMusicStorefront,
		ITunesSearchURL:      cfg.ITunesSearchURL,
		CORSProxyURL:         cfg.CORSProxyURL,
	})

	var fallback services.SearchBackend
	if cfg.SearchSampleFallback {
		fallback = services.NewSampleCatalog()
	}

	chain := services.NewSearchChain(backends, fallback, resultCache, cfg.SearchCacheTTL)
	slog.Info("Search chain ready", "tiers", chain.Tiers(), "sampleFallback", cfg.SearchSampleFallback)
	return chain
}

// NewMetadataFinalizer builds the finalizer around the configured resolver
func NewMetadataFinalizer(cfg *config.Config) *services.MetadataFinalizer {
	generator := services.BuildStructuredGenerator(services.ResolverOptions{
		Resolver:     cfg.Resolver,
		GoogleAPIKey: cfg.GoogleAPIKey,
		GeminiModel:  cfg.GeminiModel,
		OllamaHost:   cfg.OllamaHost,
		OllamaModel:  cfg.OllamaModel,
	})

	name := "none"
	if generator != nil {
		name = generator.Name()
	}
	slog.Info("Metadata finalizer ready", "resolver", name, "timeout", cfg.ResolverTimeout)
	return services.NewMetadataFinalizer(generator, cfg.ResolverTimeout)
}

// ShutdownTimeout is how long in-flight requests get to drain
const ShutdownTimeout = 10 * time.Second
