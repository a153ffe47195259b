package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vibecheck/internal/cache"
	"vibecheck/internal/models"
)

func songsFixture(n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range songs {
		songs[i] = models.NewSong("Song "+string(rune('A'+i)), "Artist", "https://example.com/"+string(rune('a'+i)))
	}
	return songs
}

func TestSearchChain_ShortQueryNeverCallsBackends(t *testing.T) {
	tier := NewMockSearchBackend("spotify")
	chain := NewSearchChain([]SearchBackend{tier}, NewSampleCatalog(), nil, 0)

	for _, query := range []string{"", "  ", "ab", " ab ", "ü1"} {
		songs := chain.Search(context.Background(), query)
		assert.NotNil(t, songs)
		assert.Empty(t, songs, "query %q", query)
	}

	tier.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchChain_FirstSuccessfulTierWins(t *testing.T) {
	first := NewMockSearchBackend("spotify")
	second := NewMockSearchBackend("itunes")

	first.On("Search", mock.Anything, "redbone", DefaultSearchLimit).
		Return(nil, statusError("spotify", "search", 503)).Once()
	second.On("Search", mock.Anything, "redbone", DefaultSearchLimit).
		Return(songsFixture(2), nil).Once()

	chain := NewSearchChain([]SearchBackend{first, second}, NewSampleCatalog(), nil, 0)

	songs := chain.Search(context.Background(), "  redbone ")
	assert.Len(t, songs, 2)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestSearchChain_EmptyResultIsAnAnswer(t *testing.T) {
	first := NewMockSearchBackend("spotify")
	second := NewMockSearchBackend("itunes")

	first.On("Search", mock.Anything, "nothing matches", DefaultSearchLimit).Return([]models.Song{}, nil)

	chain := NewSearchChain([]SearchBackend{first, second}, NewSampleCatalog(), nil, 0)

	songs := chain.Search(context.Background(), "nothing matches")
	assert.Empty(t, songs)
	second.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchChain_CapsAtFive(t *testing.T) {
	tier := NewMockSearchBackend("greedy")
	tier.On("Search", mock.Anything, "everything", DefaultSearchLimit).Return(songsFixture(9), nil)

	chain := NewSearchChain([]SearchBackend{tier}, nil, nil, 0)

	assert.Len(t, chain.Search(context.Background(), "everything"), DefaultSearchLimit)
}

func TestSearchChain_AllTiersFail(t *testing.T) {
	failing := NewMockSearchBackend("spotify")
	failing.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, credentialsError("spotify", "auth", "missing"))

	t.Run("with sample fallback", func(t *testing.T) {
		chain := NewSearchChain([]SearchBackend{failing}, NewSampleCatalog(), nil, 0)

		songs := chain.Search(context.Background(), "queen")
		require.NotEmpty(t, songs)
		for _, song := range songs {
			assert.True(t, song.Title == "Dancing Queen" || song.Artist == "Queen")
		}
	})

	t.Run("without fallback", func(t *testing.T) {
		chain := NewSearchChain([]SearchBackend{failing}, nil, nil, 0)

		songs := chain.Search(context.Background(), "queen")
		assert.NotNil(t, songs)
		assert.Empty(t, songs)
	})

	t.Run("no tiers at all", func(t *testing.T) {
		chain := NewSearchChain(nil, NewSampleCatalog(), nil, 0)

		assert.NotEmpty(t, chain.Search(context.Background(), "frank"))
	})
}

func TestSearchChain_CachesTierResults(t *testing.T) {
	resultCache := cache.NewMemoryCache(10)
	tier := NewMockSearchBackend("spotify")
	tier.On("Search", mock.Anything, "Redbone", DefaultSearchLimit).Return(songsFixture(1), nil).Once()

	chain := NewSearchChain([]SearchBackend{tier}, nil, resultCache, time.Minute)

	first := chain.Search(context.Background(), "Redbone")
	second := chain.Search(context.Background(), "redbone")

	assert.Equal(t, first, second)
	tier.AssertNumberOfCalls(t, "Search", 1)

	exists, err := resultCache.Exists(context.Background(), "search:redbone")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSearchChain_DoesNotCacheFallback(t *testing.T) {
	resultCache := cache.NewMemoryCache(10)
	failing := NewMockSearchBackend("spotify")
	failing.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, statusError("spotify", "search", 500))

	chain := NewSearchChain([]SearchBackend{failing}, NewSampleCatalog(), resultCache, time.Minute)

	assert.NotEmpty(t, chain.Search(context.Background(), "queen"))
	assert.NotEmpty(t, chain.Search(context.Background(), "queen"))

	failing.AssertNumberOfCalls(t, "Search", 2)
	exists, _ := resultCache.Exists(context.Background(), "search:queen")
	assert.False(t, exists)
}

func TestSearchChain_CanceledContext(t *testing.T) {
	tier := NewMockSearchBackend("spotify")
	chain := NewSearchChain([]SearchBackend{tier}, NewSampleCatalog(), nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, chain.Search(ctx, "queen"))
	tier.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchChain_Tiers(t *testing.T) {
	chain := NewSearchChain([]SearchBackend{NewMockSearchBackend("spotify"), NewSampleCatalog()}, nil, nil, 0)
	assert.Equal(t, []string{"spotify", "sample"}, chain.Tiers())
}
