package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCache always errors, standing in for an unreachable Valkey
type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, &CacheError{Operation: "get", Key: key, Err: assert.AnError}
}

func (failingCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return &CacheError{Operation: "set", Key: key, Err: assert.AnError}
}

func (failingCache) Delete(ctx context.Context, key string) error {
	return &CacheError{Operation: "delete", Key: key, Err: assert.AnError}
}

func (failingCache) Exists(ctx context.Context, key string) (bool, error) {
	return false, &CacheError{Operation: "exists", Key: key, Err: assert.AnError}
}

func (failingCache) Close() error                     { return nil }
func (failingCache) Health(ctx context.Context) error { return assert.AnError }

func TestMemoryCache_Basic(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(10)
	defer cache.Close()

	err := cache.Set(ctx, "key1", []byte("value1"), time.Hour)
	require.NoError(t, err)

	value, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value1"), value)

	exists, err := cache.Exists(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Missing keys are a nil value, not an error
	value, err = cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(10)

	require.NoError(t, cache.Set(ctx, "key1", []byte("value1"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "key1"))

	exists, err := cache.Exists(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting an unknown key is a no-op
	assert.NoError(t, cache.Delete(ctx, "never-set"))
}

func TestMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(10)

	require.NoError(t, cache.Set(ctx, "key1", []byte("value1"), time.Hour))
	require.NoError(t, cache.Set(ctx, "key1", []byte("value2"), time.Hour))

	value, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value2"), value)
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(10)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(2 * time.Minute)

	value, err := cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, value)

	exists, err := cache.Exists(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(2)

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Hour))

	// Touch "a" so "b" becomes the eviction candidate
	_, _ = cache.Get(ctx, "a")
	require.NoError(t, cache.Set(ctx, "c", []byte("3"), time.Hour))

	assert.Equal(t, 2, cache.Len())

	b, _ := cache.Get(ctx, "b")
	assert.Nil(t, b)
	a, _ := cache.Get(ctx, "a")
	assert.Equal(t, []byte("1"), a)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(10)

	original := []byte("value")
	require.NoError(t, cache.Set(ctx, "key", original, time.Hour))
	original[0] = 'X'

	value, _ := cache.Get(ctx, "key")
	assert.Equal(t, []byte("value"), value)
}

func TestMultiLevelCache_ReadsThroughToL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache(10)
	cache := NewLayeredCache(l2, 10)

	require.NoError(t, l2.Set(ctx, "shared", []byte("from-l2"), time.Hour))

	value, err := cache.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-l2"), value)

	// Now served from L1 even if L2 loses it
	require.NoError(t, l2.Delete(ctx, "shared"))
	value, err = cache.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-l2"), value)
}

func TestMultiLevelCache_SetAndDelete(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache(10)
	cache := NewLayeredCache(l2, 10)

	require.NoError(t, cache.Set(ctx, "key", []byte("v"), time.Hour))

	inL2, _ := l2.Exists(ctx, "key")
	assert.True(t, inL2)

	require.NoError(t, cache.Delete(ctx, "key"))
	exists, err := cache.Exists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMultiLevelCache_L2Failure(t *testing.T) {
	ctx := context.Background()
	cache := NewLayeredCache(failingCache{}, 10)

	_, err := cache.Get(ctx, "key")
	require.Error(t, err)

	var cacheErr *CacheError
	assert.ErrorAs(t, err, &cacheErr)
	assert.Equal(t, "get", cacheErr.Operation)

	assert.Error(t, cache.Set(ctx, "key", []byte("v"), time.Hour))
	assert.Error(t, cache.Health(ctx))
}

func TestCacheError_Error(t *testing.T) {
	err := &CacheError{
		Operation: "get",
		Key:       "test-key",
		Err:       assert.AnError,
	}

	expectedMessage := "cache get failed for key 'test-key': assert.AnError general error for testing"
	assert.Equal(t, expectedMessage, err.Error())
}

func TestCacheError_Unwrap(t *testing.T) {
	err := &CacheError{
		Operation: "set",
		Key:       "test-key",
		Err:       assert.AnError,
	}

	assert.Equal(t, assert.AnError, err.Unwrap())
}

func TestParseValkeyURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		address  string
		password string
		wantErr  bool
	}{
		{name: "plain", url: "valkey://localhost:6379", address: "localhost:6379"},
		{name: "with password", url: "redis://:s3cret@cache:6379/0", address: "cache:6379", password: "s3cret"},
		{name: "missing host", url: "localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, password, err := parseValkeyURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.address, address)
			assert.Equal(t, tt.password, password)
		})
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	ctx := context.Background()
	cache := NewMemoryCache(1000)

	data := []byte("benchmark test data")
	for i := 0; i < 1000; i++ {
		key := "key" + string(rune(i))
		cache.Set(ctx, key, data, time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := "key" + string(rune(i%1000))
		cache.Get(ctx, key)
	}
}
