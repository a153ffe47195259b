package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vibecheck/internal/app"
	"vibecheck/internal/config"
	"vibecheck/internal/playlist"
)

var (
	topLimit int
	topJSON  bool
)

var topCmd = &cobra.Command{
	Use:   "top <room-id>",
	Short: "Print a room's most submitted songs",
	Args:  cobra.ExactArgs(1),
	RunE:  runTop,
}

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 0, "Playlist length (default: tuning playlist_top_n)")
	topCmd.Flags().BoolVar(&topJSON, "json", false, "Print the dashboard as JSON")
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Read straight from the store so the answer is never a cached snapshot
	store, err := app.OpenStore(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	room, err := store.Rooms.GetRoom(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load room: %w", err)
	}

	limit := topLimit
	if limit <= 0 {
		limit = config.LoadTuning(cfg.TuningConfigPath).Current().PlaylistTopN
	}

	dashboard := playlist.BuildDashboard(room, limit, "")
	if topJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dashboard)
	}
	return printDashboard(os.Stdout, dashboard)
}

func printDashboard(w io.Writer, dashboard playlist.Dashboard) error {
	fmt.Fprintf(w, "%s: %d entries, %d unique songs\n",
		dashboard.RoomName, dashboard.TotalEntries, dashboard.UniqueSongs)

	if dashboard.NotEnoughData {
		_, err := fmt.Fprintln(w, "Not enough data yet.")
		return err
	}

	for i, track := range dashboard.Playlist {
		line := fmt.Sprintf("%d. %s by %s (%s)", i+1, track.Title, track.Artist, track.Reason)
		if track.ExternalURL != "" {
			line += " " + track.ExternalURL
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
