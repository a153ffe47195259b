package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchBackends(t *testing.T) {
	_, keyFile := writeTestKey(t)

	testCases := []struct {
		name     string
		opts     SearchTierOptions
		expected []string
	}{
		{
			name:     "no credentials keeps only public tiers",
			opts:     SearchTierOptions{Tiers: []string{"spotify", "apple_music", "itunes"}},
			expected: []string{"itunes"},
		},
		{
			name: "spotify via client credentials",
			opts: SearchTierOptions{
				Tiers:               []string{"spotify", "itunes"},
				SpotifyClientID:     "id",
				SpotifyClientSecret: "secret",
			},
			expected: []string{"spotify", "itunes"},
		},
		{
			name: "spotify via token relay",
			opts: SearchTierOptions{
				Tiers:         []string{" Spotify "},
				TokenRelayURL: "https://vibecheck.example.com/api/token",
			},
			expected: []string{"spotify"},
		},
		{
			name: "apple music with key",
			opts: SearchTierOptions{
				Tiers:             []string{"apple_music", "sample"},
				AppleMusicKeyID:   "KEY",
				AppleMusicTeamID:  "TEAM",
				AppleMusicKeyFile: keyFile,
			},
			expected: []string{"apple_music", "sample"},
		},
		{
			name:     "unknown and blank tiers are skipped",
			opts:     SearchTierOptions{Tiers: []string{"napster", "", "itunes"}},
			expected: []string{"itunes"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backends := BuildSearchBackends(tc.opts)

			names := make([]string, 0, len(backends))
			for _, backend := range backends {
				names = append(names, backend.Name())
			}
			assert.Equal(t, tc.expected, names)
		})
	}
}

func TestBuildStructuredGenerator(t *testing.T) {
	assert.Nil(t, BuildStructuredGenerator(ResolverOptions{}))
	assert.Nil(t, BuildStructuredGenerator(ResolverOptions{Resolver: "none", GoogleAPIKey: "key"}))
	assert.Nil(t, BuildStructuredGenerator(ResolverOptions{Resolver: "palm"}))

	gemini := BuildStructuredGenerator(ResolverOptions{GoogleAPIKey: "key"})
	if assert.NotNil(t, gemini) {
		assert.Equal(t, "gemini", gemini.Name())
	}

	ollama := BuildStructuredGenerator(ResolverOptions{Resolver: "ollama"})
	if assert.NotNil(t, ollama) {
		assert.Equal(t, "ollama", ollama.Name())
	}
}
