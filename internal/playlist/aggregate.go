// Package playlist ranks the songs submitted to a room and builds the room dashboard.
package playlist

import (
	"fmt"
	"sort"

	"vibecheck/internal/models"
)

// DefaultTopN is the playlist length shown on the dashboard
const DefaultTopN = 3

// songGroup collects every submission of one song identity
type songGroup struct {
	song  models.Song // First occurrence wins
	count int
}

// Aggregate flattens entries into their picks, groups them by identity key and
// returns the topN most submitted songs. Ties keep first-occurrence order.
func Aggregate(entries []models.SongEntry, topN int) []models.PlaylistTrack {
	if topN <= 0 || len(entries) == 0 {
		return []models.PlaylistTrack{}
	}

	groups := make([]*songGroup, 0, len(entries)*3)
	index := make(map[string]*songGroup, len(entries)*3)

	for _, entry := range entries {
		for _, song := range entry.Songs() {
			key := song.Key()
			if group, ok := index[key]; ok {
				group.count++
				continue
			}
			group := &songGroup{song: song, count: 1}
			index[key] = group
			groups = append(groups, group)
		}
	}

	// groups is in first-occurrence order, so a stable sort keeps that order for ties
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})

	if len(groups) > topN {
		groups = groups[:topN]
	}

	tracks := make([]models.PlaylistTrack, 0, len(groups))
	for _, group := range groups {
		tracks = append(tracks, models.PlaylistTrack{
			Title:       group.song.Title,
			Artist:      group.song.Artist,
			ExternalURL: group.song.ExternalURL,
			Reason:      listenerReason(group.count),
		})
	}

	return tracks
}

func listenerReason(count int) string {
	if count > 1 {
		return fmt.Sprintf("%d listeners", count)
	}
	return fmt.Sprintf("%d listener", count)
}

// UniqueSongCount counts distinct titles across all picks.
// Titles are compared exactly, unlike the identity key used for ranking.
func UniqueSongCount(entries []models.SongEntry) int {
	titles := make(map[string]struct{}, len(entries)*3)
	for _, entry := range entries {
		for _, song := range entry.Songs() {
			titles[song.Title] = struct{}{}
		}
	}
	return len(titles)
}
