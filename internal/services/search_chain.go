package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"vibecheck/internal/cache"
	"vibecheck/internal/metrics"
	"vibecheck/internal/models"
)

const (
	// MinQueryLength is the shortest trimmed query that reaches a backend
	MinQueryLength = 3

	// DefaultSearchCacheTTL keeps tier results for repeated keystrokes
	DefaultSearchCacheTTL = 10 * time.Minute

	searchCachePrefix = "search:"
)

// SearchChain tries each tier in order until one answers
type SearchChain struct {
	tiers    []SearchBackend
	fallback SearchBackend
	cache    cache.Cache
	cacheTTL time.Duration
	limit    int
}

// NewSearchChain builds a chain. fallback and resultCache may be nil.
func NewSearchChain(tiers []SearchBackend, fallback SearchBackend, resultCache cache.Cache, cacheTTL time.Duration) *SearchChain {
	if cacheTTL <= 0 {
		cacheTTL = DefaultSearchCacheTTL
	}
	return &SearchChain{
		tiers:    tiers,
		fallback: fallback,
		cache:    resultCache,
		cacheTTL: cacheTTL,
		limit:    DefaultSearchLimit,
	}
}

// Tiers returns the configured tier names in order
func (c *SearchChain) Tiers() []string {
	names := make([]string, 0, len(c.tiers))
	for _, tier := range c.tiers {
		names = append(names, tier.Name())
	}
	return names
}

// Search returns at most five songs for query. It never returns an error:
// failures degrade to the fallback tier or to an empty list.
func (c *SearchChain) Search(ctx context.Context, query string) []models.Song {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []models.Song{}
	}

	cacheKey := searchCachePrefix + strings.ToLower(query)
	if songs, ok := c.cached(ctx, cacheKey); ok {
		metrics.SearchCacheHits.Inc()
		return songs
	}

	for _, tier := range c.tiers {
		if ctx.Err() != nil {
			return []models.Song{}
		}

		songs, err := tier.Search(ctx, query, c.limit)
		if err != nil {
			metrics.SearchTierOutcomes.WithLabelValues(tier.Name(), "error").Inc()
			slog.Warn("Search tier failed", "tier", tier.Name(), "query", query, "error", err)
			continue
		}

		metrics.SearchTierOutcomes.WithLabelValues(tier.Name(), "ok").Inc()
		songs = truncateSongs(songs, c.limit)
		c.store(ctx, cacheKey, songs)
		return songs
	}

	exhausted := fmt.Errorf("%w (%d tiers)", ErrFallbackExhausted, len(c.tiers))
	if c.fallback == nil || ctx.Err() != nil {
		slog.Warn("Search returned no results", "query", query, "error", exhausted)
		return []models.Song{}
	}

	songs, err := c.fallback.Search(ctx, query, c.limit)
	if err != nil {
		metrics.SearchTierOutcomes.WithLabelValues(c.fallback.Name(), "error").Inc()
		slog.Warn("Search fallback tier failed", "tier", c.fallback.Name(), "query", query, "error", err)
		return []models.Song{}
	}

	metrics.SearchTierOutcomes.WithLabelValues(c.fallback.Name(), "fallback").Inc()
	slog.Info("Search served from fallback tier", "tier", c.fallback.Name(), "query", query, "reason", exhausted)
	return truncateSongs(songs, c.limit)
}

func (c *SearchChain) cached(ctx context.Context, key string) ([]models.Song, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Search cache read failed", "key", key, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var songs []models.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, false
	}
	return truncateSongs(songs, c.limit), true
}

func (c *SearchChain) store(ctx context.Context, key string, songs []models.Song) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(songs)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		slog.Warn("Failed to cache search results", "key", key, "error", err)
	}
}
