package cache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/valkey-io/valkey-go"
)

// valkeyCache implements Cache interface using Valkey
type valkeyCache struct {
	client valkey.Client
}

// NewValkeyCache creates a new Valkey-backed cache
func NewValkeyCache(valkeyURL string) (Cache, error) {
	addr, password, err := parseValkeyURL(valkeyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Valkey URL: %w", err)
	}

	clientOption := valkey.ClientOption{
		InitAddress: []string{addr},
	}

	if password != "" {
		clientOption.Password = password
	}

	client, err := valkey.NewClient(clientOption)
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	cache := &valkeyCache{
		client: client,
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return cache, nil
}

// Get retrieves a value from Valkey
func (c *valkeyCache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.B().Get().Key(KeyPrefix + key).Build()
	result := c.client.Do(ctx, cmd)

	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil // Key doesn't exist
		}
		return nil, &CacheError{
			Operation: "get",
			Key:       key,
			Err:       result.Error(),
		}
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil, &CacheError{
			Operation: "get",
			Key:       key,
			Err:       err,
		}
	}

	return data, nil
}

// Set stores a value in Valkey with expiration
func (c *valkeyCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	var cmd valkey.Completed

	if expiration > 0 {
		cmd = c.client.B().Set().Key(KeyPrefix + key).Value(string(value)).Ex(expiration).Build()
	} else {
		cmd = c.client.B().Set().Key(KeyPrefix + key).Value(string(value)).Build()
	}

	result := c.client.Do(ctx, cmd)
	if result.Error() != nil {
		return &CacheError{
			Operation: "set",
			Key:       key,
			Err:       result.Error(),
		}
	}

	return nil
}

// Delete removes a key from Valkey
func (c *valkeyCache) Delete(ctx context.Context, key string) error {
	cmd := c.client.B().Del().Key(KeyPrefix + key).Build()
	result := c.client.Do(ctx, cmd)

	if result.Error() != nil {
		return &CacheError{
			Operation: "delete",
			Key:       key,
			Err:       result.Error(),
		}
	}

	return nil
}

// Exists checks if a key exists in Valkey
func (c *valkeyCache) Exists(ctx context.Context, key string) (bool, error) {
	cmd := c.client.B().Exists().Key(KeyPrefix + key).Build()
	result := c.client.Do(ctx, cmd)

	if result.Error() != nil {
		return false, &CacheError{
			Operation: "exists",
			Key:       key,
			Err:       result.Error(),
		}
	}

	count, err := result.AsInt64()
	if err != nil {
		return false, &CacheError{
			Operation: "exists",
			Key:       key,
			Err:       err,
		}
	}

	return count > 0, nil
}

// Close closes the Valkey connection
func (c *valkeyCache) Close() error {
	c.client.Close()
	return nil
}

// Health checks Valkey health
func (c *valkeyCache) Health(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	result := c.client.Do(ctx, cmd)

	if result.Error() != nil {
		return fmt.Errorf("Valkey health check failed: %w", result.Error())
	}

	return nil
}

// parseValkeyURL extracts connection details from Valkey URL
func parseValkeyURL(valkeyURL string) (address, password string, err error) {
	u, err := url.Parse(valkeyURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Host == "" {
		return "", "", fmt.Errorf("missing host in URL")
	}
	address = u.Host

	if u.User != nil {
		password, _ = u.User.Password()
	}

	return address, password, nil
}

// MultiLevelCache implements a multi-level cache with in-memory L1 and a shared L2
type MultiLevelCache struct {
	l1    *MemoryCache
	l2    Cache
	l1TTL time.Duration
}

// NewMultiLevelCache creates a new multi-level cache backed by Valkey
func NewMultiLevelCache(valkeyURL string, l1MaxItems int) (Cache, error) {
	l2, err := NewValkeyCache(valkeyURL)
	if err != nil {
		return nil, err
	}
	return NewLayeredCache(l2, l1MaxItems), nil
}

// NewLayeredCache puts an in-memory L1 in front of any Cache
func NewLayeredCache(l2 Cache, l1MaxItems int) *MultiLevelCache {
	return &MultiLevelCache{
		l1:    NewMemoryCache(l1MaxItems),
		l2:    l2,
		l1TTL: time.Minute,
	}
}

// Get retrieves from L1 first, then L2
func (c *MultiLevelCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, _ := c.l1.Get(ctx, key); data != nil {
		return data, nil
	}

	data, err := c.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if data != nil {
		_ = c.l1.Set(ctx, key, data, c.l1TTL)
	}

	return data, nil
}

// Set stores in both L1 and L2
func (c *MultiLevelCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := c.l2.Set(ctx, key, value, expiration); err != nil {
		return err
	}

	// L1 never outlives L2 and is capped so other replicas' writes show up quickly
	l1Expiration := c.l1TTL
	if expiration > 0 && expiration < l1Expiration {
		l1Expiration = expiration
	}
	return c.l1.Set(ctx, key, value, l1Expiration)
}

// Delete removes from both levels
func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = c.l1.Delete(ctx, key)
	return c.l2.Delete(ctx, key)
}

// Exists checks both levels
func (c *MultiLevelCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, _ := c.l1.Exists(ctx, key); ok {
		return true, nil
	}
	return c.l2.Exists(ctx, key)
}

// Close closes L2 connection
func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	return c.l2.Close()
}

// Health checks L2 health
func (c *MultiLevelCache) Health(ctx context.Context) error {
	return c.l2.Health(ctx)
}
