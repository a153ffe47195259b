package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vibecheck/internal/app"
	"vibecheck/internal/autocomplete"
	"vibecheck/internal/config"
	"vibecheck/internal/models"
)

const defaultField = "current"

var suggestDebounce time.Duration

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Replay keystrokes from stdin through the autocomplete debouncer",
	Long: `Each stdin line is one keystroke: "field: query" or just "query" for the
current field. Only the suggestions that survive debouncing are printed.`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().DurationVar(&suggestDebounce, "debounce", 0, "Debounce window (default: tuning debounce_ms)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	resultCache, err := app.OpenCache(cfg)
	if err != nil {
		return err
	}
	defer resultCache.Close()

	window := suggestDebounce
	if window <= 0 {
		window = config.LoadTuning(cfg.TuningConfigPath).Current().DebounceWindow()
	}

	chain := app.NewSearchChain(cfg, resultCache)
	return replayKeystrokes(ctx, os.Stdin, os.Stdout, chain, window)
}

// replayKeystrokes feeds each input line to a Suggester and prints what it delivers
func replayKeystrokes(ctx context.Context, in io.Reader, out io.Writer, searcher autocomplete.Searcher, window time.Duration) error {
	var outMu sync.Mutex
	deliver := func(field string, songs []models.Song) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, "[%s] %d suggestion(s)\n", field, len(songs))
		for _, song := range songs {
			fmt.Fprintf(out, "  %s\n", song.Display())
		}
	}

	suggester := autocomplete.New(searcher, deliver, window)
	defer suggester.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		field, query := parseKeystroke(scanner.Text())
		suggester.Type(field, query)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read keystrokes: %w", err)
	}

	// Let the last debounced search fire before closing
	select {
	case <-time.After(3 * window):
	case <-ctx.Done():
	}
	return nil
}

// parseKeystroke splits "field: query" into its parts
func parseKeystroke(line string) (field, query string) {
	if before, after, ok := strings.Cut(line, ":"); ok {
		if name := strings.TrimSpace(before); name != "" && !strings.ContainsAny(name, " \t") {
			return strings.ToLower(name), after
		}
	}
	return defaultField, line
}
