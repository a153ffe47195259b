package playlist

import (
	"math/rand"
	"testing"
	"time"

	"vibecheck/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func song(title, artist string) models.Song {
	return models.Song{Title: title, Artist: artist, ExternalURL: "https://open.spotify.com/search/" + title}
}

func entry(current, favorite, underrated models.Song) models.SongEntry {
	return models.NewSongEntry(current, favorite, underrated, time.Unix(1700000000, 0))
}

func TestAggregate_Empty(t *testing.T) {
	result := Aggregate(nil, 3)
	require.NotNil(t, result)
	assert.Empty(t, result)

	result = Aggregate([]models.SongEntry{}, DefaultTopN)
	assert.Empty(t, result)
}

func TestAggregate_NonPositiveTopN(t *testing.T) {
	entries := []models.SongEntry{
		entry(song("A", "1"), song("B", "2"), song("C", "3")),
	}

	assert.Empty(t, Aggregate(entries, 0))
	assert.Empty(t, Aggregate(entries, -2))
}

func TestAggregate_RanksByCount(t *testing.T) {
	entries := []models.SongEntry{
		entry(song("A", "1"), song("B", "2"), song("C", "3")),
		entry(song("C", "3"), song("D", "4"), song("B", "2")),
		entry(song("C", "3"), song("E", "5"), song("F", "6")),
	}

	result := Aggregate(entries, 3)
	require.Len(t, result, 3)

	assert.Equal(t, "C", result[0].Title)
	assert.Equal(t, "3 listeners", result[0].Reason)
	assert.Equal(t, "B", result[1].Title)
	assert.Equal(t, "2 listeners", result[1].Reason)
	assert.Equal(t, "A", result[2].Title)
	assert.Equal(t, "1 listener", result[2].Reason)
}

func TestAggregate_TiesKeepFirstOccurrence(t *testing.T) {
	// Flattened order: Z, Y, X, W, V, U; all seen once
	entries := []models.SongEntry{
		entry(song("Z", "z"), song("Y", "y"), song("X", "x")),
		entry(song("W", "w"), song("V", "v"), song("U", "u")),
	}

	result := Aggregate(entries, 4)
	require.Len(t, result, 4)

	titles := []string{result[0].Title, result[1].Title, result[2].Title, result[3].Title}
	assert.Equal(t, []string{"Z", "Y", "X", "W"}, titles)
}

func TestAggregate_IdentityIgnoresCaseAndWhitespace(t *testing.T) {
	first := models.Song{Title: "Song", Artist: "A ", ExternalURL: "https://first"}
	second := models.Song{Title: " song ", Artist: "a", ExternalURL: "https://second"}

	entries := []models.SongEntry{
		entry(first, song("Other", "O"), second),
	}

	result := Aggregate(entries, 3)
	require.Len(t, result, 2)

	// The first occurrence is the representative record
	assert.Equal(t, "Song", result[0].Title)
	assert.Equal(t, "A ", result[0].Artist)
	assert.Equal(t, "https://first", result[0].ExternalURL)
	assert.Equal(t, "2 listeners", result[0].Reason)
}

func TestAggregate_Truncates(t *testing.T) {
	entries := []models.SongEntry{
		entry(song("A", "1"), song("B", "2"), song("C", "3")),
		entry(song("D", "4"), song("E", "5"), song("F", "6")),
	}

	assert.Len(t, Aggregate(entries, DefaultTopN), 3)
	assert.Len(t, Aggregate(entries, 10), 6)
}

func TestAggregate_Deterministic(t *testing.T) {
	entries := []models.SongEntry{
		entry(song("A", "1"), song("B", "2"), song("A", "1")),
		entry(song("B", "2"), song("C", "3"), song("D", "4")),
	}

	first := Aggregate(entries, 3)
	second := Aggregate(entries, 3)
	assert.Equal(t, first, second)
}

func TestAggregate_LengthBounds(t *testing.T) {
	catalog := []models.Song{
		song("A", "1"), song("a ", "1"), song("B", "2"), song("C", "3"),
		song("D", "4"), song("E", "5"), song("F", "6"),
	}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := rng.Intn(6)
		entries := make([]models.SongEntry, n)
		distinct := map[string]struct{}{}
		for j := range entries {
			picks := [3]models.Song{}
			for k := range picks {
				picks[k] = catalog[rng.Intn(len(catalog))]
				distinct[picks[k].Key()] = struct{}{}
			}
			entries[j] = entry(picks[0], picks[1], picks[2])
		}

		topN := rng.Intn(6) - 1
		result := Aggregate(entries, topN)

		assert.LessOrEqual(t, len(result), max(topN, 0))
		assert.LessOrEqual(t, len(result), len(distinct))
	}
}

func TestUniqueSongCount(t *testing.T) {
	entries := []models.SongEntry{
		entry(song("A", "1"), song("B", "2"), song("A", "9")),
		entry(song("C", "3"), song("a", "1"), song("B", "2")),
	}

	// Exact titles: A, B, C, a
	assert.Equal(t, 4, UniqueSongCount(entries))
	assert.Equal(t, 0, UniqueSongCount(nil))
}
