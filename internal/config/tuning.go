package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// TuningConfig holds knobs that can change while the server runs
type TuningConfig struct {
	// Number of tracks on the room playlist
	PlaylistTopN int `toml:"playlist_top_n"`

	// Quiet period before an autocomplete search fires, in milliseconds
	DebounceMillis int `toml:"debounce_ms"`
}

// DefaultTuningConfig returns hard-coded safe defaults
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		PlaylistTopN:   3,
		DebounceMillis: 400,
	}
}

// DebounceWindow returns DebounceMillis as a duration
func (t *TuningConfig) DebounceWindow() time.Duration {
	return time.Duration(t.DebounceMillis) * time.Millisecond
}

// TuningStore serves the current tuning and reloads it when the file changes
type TuningStore struct {
	path    string
	modTime time.Time
	current *TuningConfig
	mu      sync.RWMutex
}

// LoadTuning loads tuning from path, or from the first well-known location
// when path is empty. Missing or unreadable files fall back to defaults.
func LoadTuning(path string) *TuningStore {
	paths := []string{path}
	if path == "" {
		paths = candidateTuningConfigPaths()
	}

	store := &TuningStore{current: DefaultTuningConfig()}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || fi.IsDir() {
			continue
		}
		store.path = p
		store.modTime = fi.ModTime()
		fileCfg, err := loadTuningConfigFromPath(p)
		if err != nil {
			slog.Warn("tuning config: failed to parse, using defaults", "path", p, "error", err)
			break
		}
		mergeTuningConfig(store.current, fileCfg)
		break
	}
	return store
}

// Current returns the active tuning. Callers must not modify it.
func (s *TuningStore) Current() *TuningConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the watched file, or "" when running on defaults
func (s *TuningStore) Path() string {
	return s.path
}

func loadTuningConfigFromPath(path string) (*TuningConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg TuningConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeTuningConfig(base, override *TuningConfig) {
	if override == nil || base == nil {
		return
	}
	if override.PlaylistTopN > 0 {
		base.PlaylistTopN = override.PlaylistTopN
	}
	if override.DebounceMillis > 0 {
		base.DebounceMillis = override.DebounceMillis
	}
}

// candidateTuningConfigPaths returns common locations to auto-discover tuning config
func candidateTuningConfigPaths() []string {
	paths := []string{
		"tuning.toml",
		filepath.Join("config", "tuning.toml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "vibecheck", "tuning.toml"))
	}

	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "vibecheck", "tuning.toml"))
	}

	paths = append(paths, filepath.Join(string(os.PathSeparator), "etc", "vibecheck", "tuning.toml"))
	return paths
}

// Watch polls the tuning file and reloads it when its mtime moves forward.
// It returns immediately when no file was found.
func (s *TuningStore) Watch(ctx context.Context, interval time.Duration) {
	if s.path == "" {
		slog.Info("tuning config watcher: no config file found; using defaults")
		return
	}

	slog.Info("tuning config watcher: watching file", "path", s.path)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("tuning config watcher: stopped")
				return
			case <-ticker.C:
				s.reloadIfChanged()
			}
		}
	}()
}

func (s *TuningStore) reloadIfChanged() bool {
	fi, err := os.Stat(s.path)
	if err != nil || fi.IsDir() || !fi.ModTime().After(s.modTime) {
		return false
	}

	fileCfg, err := loadTuningConfigFromPath(s.path)
	if err != nil || fileCfg == nil {
		slog.Warn("tuning config: reload failed, keeping previous values", "path", s.path, "error", err)
		return false
	}

	// Merge over defaults to keep unspecified keys sane
	next := DefaultTuningConfig()
	mergeTuningConfig(next, fileCfg)

	s.mu.Lock()
	s.current = next
	s.modTime = fi.ModTime()
	s.mu.Unlock()

	slog.Info("tuning config reloaded", "path", s.path, "mtime", fi.ModTime())
	return true
}
