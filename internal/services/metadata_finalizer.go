package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"vibecheck/internal/metrics"
	"vibecheck/internal/models"
)

// DefaultResolverTimeout bounds one structured-generation request
const DefaultResolverTimeout = 15 * time.Second

const fallbackSearchBase = "https://open.spotify.com/search/"

// ResolvedSongs is the finalized triple stored with an entry
type ResolvedSongs struct {
	Current    models.Song `json:"current"`
	Favorite   models.Song `json:"favorite"`
	Underrated models.Song `json:"underrated"`
}

// MetadataFinalizer turns raw picks into canonical songs using a semantic
// resolver, falling back to local records whenever the resolver cannot help
type MetadataFinalizer struct {
	generator StructuredGenerator
	timeout   time.Duration
}

// NewMetadataFinalizer creates a finalizer. generator may be nil, in which
// case every call takes the local fallback.
func NewMetadataFinalizer(generator StructuredGenerator, timeout time.Duration) *MetadataFinalizer {
	if timeout <= 0 {
		timeout = DefaultResolverTimeout
	}
	return &MetadataFinalizer{
		generator: generator,
		timeout:   timeout,
	}
}

// Finalize always returns three well-formed songs
func (f *MetadataFinalizer) Finalize(ctx context.Context, current, favorite, underrated models.RawSong) ResolvedSongs {
	resolved, err := f.resolve(ctx, current, favorite, underrated)
	if err == nil {
		metrics.ResolverOutcomes.WithLabelValues("ai", "ok").Inc()
		slog.Info("Song metadata resolved", "resolver", f.generator.Name())
		return *resolved
	}

	reason := fallbackReason(err)
	metrics.ResolverOutcomes.WithLabelValues("fallback", reason).Inc()
	slog.Warn("Song metadata resolution fell back to local records", "reason", reason, "error", err)

	return ResolvedSongs{
		Current:    FallbackSong(current),
		Favorite:   FallbackSong(favorite),
		Underrated: FallbackSong(underrated),
	}
}

func (f *MetadataFinalizer) resolve(ctx context.Context, current, favorite, underrated models.RawSong) (*ResolvedSongs, error) {
	if f.generator == nil {
		return nil, credentialsError("resolver", "resolve", "no semantic resolver configured")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	data, err := f.generator.GenerateJSON(ctx, BuildResolvePrompt(current, favorite, underrated), ResolvedSongsSchema())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, err
	}

	return parseResolvedSongs(f.generator.Name(), data)
}

// resolvedSongPayload uses pointers so a missing key is distinguishable from ""
type resolvedSongPayload struct {
	Title       *string `json:"title"`
	Artist      *string `json:"artist"`
	ExternalURL *string `json:"externalUrl"`
}

type resolvedSongsPayload struct {
	Current    *resolvedSongPayload `json:"current"`
	Favorite   *resolvedSongPayload `json:"favorite"`
	Underrated *resolvedSongPayload `json:"underrated"`
}

func parseResolvedSongs(resolver string, data []byte) (*ResolvedSongs, error) {
	var payload resolvedSongsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, malformedError(resolver, "resolve", err)
	}

	resolved := &ResolvedSongs{}
	fields := []struct {
		name    string
		payload *resolvedSongPayload
		target  *models.Song
	}{
		{name: "current", payload: payload.Current, target: &resolved.Current},
		{name: "favorite", payload: payload.Favorite, target: &resolved.Favorite},
		{name: "underrated", payload: payload.Underrated, target: &resolved.Underrated},
	}

	for _, field := range fields {
		song, err := field.payload.toSong()
		if err != nil {
			return nil, malformedError(resolver, "resolve", fmt.Errorf("%s: %w", field.name, err))
		}
		*field.target = song
	}

	return resolved, nil
}

func (p *resolvedSongPayload) toSong() (models.Song, error) {
	if p == nil {
		return models.Song{}, errors.New("missing song")
	}
	if p.Title == nil || p.Artist == nil || p.ExternalURL == nil {
		return models.Song{}, errors.New("missing field")
	}

	song := models.NewSong(strings.TrimSpace(*p.Title), strings.TrimSpace(*p.Artist), strings.TrimSpace(*p.ExternalURL))
	if !song.IsWellFormed() {
		return models.Song{}, errors.New("blank title or artist")
	}
	return song, nil
}

// BuildResolvePrompt describes the three picks for the resolver
func BuildResolvePrompt(current, favorite, underrated models.RawSong) string {
	var b strings.Builder
	b.WriteString("Identify the following songs and return them in a structured JSON format.\n")
	b.WriteString("For each song, provide the correct Title, Artist, and a link to Apple Music or a generic search link.\n")
	b.WriteString("Use the key 'externalUrl' for the link.\n\n")
	fmt.Fprintf(&b, "1. Current Song: %q\n", current.Display())
	fmt.Fprintf(&b, "2. Favorite Song: %q\n", favorite.Display())
	fmt.Fprintf(&b, "3. Underrated Song: %q\n", underrated.Display())
	return b.String()
}

// FallbackSong keeps a resolved pick unchanged and turns free text into a
// search-link record by an unknown artist
func FallbackSong(raw models.RawSong) models.Song {
	if raw.Song != nil {
		return *raw.Song
	}
	text := strings.TrimSpace(raw.Text)
	return models.NewSong(text, models.UnknownArtist, FallbackSearchURL(text))
}

// FallbackSearchURL links to a Spotify search for text. Reserved characters
// such as & and + are percent-encoded and spaces become %20.
func FallbackSearchURL(text string) string {
	return fallbackSearchBase + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrCredentialsMissing):
		return "credentials_missing"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
