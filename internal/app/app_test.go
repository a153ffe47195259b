package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibecheck/internal/cache"
	"vibecheck/internal/config"
	"vibecheck/internal/models"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		StorageDriver:   config.StorageSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "app.db"),
		SearchCacheTTL:  time.Minute,
		ResolverTimeout: time.Second,
	}
}

func TestOpenCache_MemoryWithoutValkey(t *testing.T) {
	c, err := OpenCache(sqliteConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &cache.MemoryCache{}, c)
}

func TestOpenCache_InvalidValkeyURL(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.ValkeyURL = "localhost"

	_, err := OpenCache(cfg)
	assert.Error(t, err)
}

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	store, err := OpenStore(ctx, cfg, cache.NewMemoryCache(10))
	require.NoError(t, err)
	defer store.Close(ctx)

	entry := models.NewSongEntry(
		models.NewSong("A", "B", ""),
		models.NewSong("C", "D", ""),
		models.NewSong("E", "F", ""),
		time.UnixMilli(1000),
	)
	require.NoError(t, store.Rooms.AppendEntry(ctx, "room", entry))

	data, err := store.Rooms.GetRoom(ctx, "room")
	require.NoError(t, err)
	assert.Equal(t, []models.SongEntry{entry}, data.Entries)
	assert.NoError(t, store.Rooms.Health(ctx))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.StorageDriver = "postgres"

	_, err := OpenStore(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unsupported storage driver")
}

func TestNewSearchChain_SkipsUnusableTiers(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.SearchTiers = []string{"spotify", "apple_music", "bogus"}
	cfg.SearchSampleFallback = true

	chain := NewSearchChain(cfg, nil)
	assert.Empty(t, chain.Tiers())

	songs := chain.Search(context.Background(), "queen")
	require.NotEmpty(t, songs)
	for _, song := range songs {
		assert.True(t, song.IsWellFormed())
	}
}

func TestNewMetadataFinalizer_NoResolverFallsBack(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Resolver = "none"

	finalizer := NewMetadataFinalizer(cfg)
	resolved := finalizer.Finalize(context.Background(),
		models.TextInput(" mystery song "),
		models.SongInput(models.NewSong("Nights", "Frank Ocean", "")),
		models.TextInput("deep cut"),
	)

	assert.Equal(t, "mystery song", resolved.Current.Title)
	assert.Equal(t, models.UnknownArtist, resolved.Current.Artist)
	assert.Equal(t, "Nights", resolved.Favorite.Title)
	assert.Equal(t, "deep cut", resolved.Underrated.Title)
}
