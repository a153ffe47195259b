package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vibecheck/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "room-playlist",
	Short: "Inspect vibecheck rooms from the command line",
	Long: `room-playlist reads the same environment as the vibecheck server and
talks to the configured room store and search tiers directly.

Examples:
  room-playlist top 4b1c2f7e-9d2a-4c55-8f3e-0a6b7c8d9e10
  room-playlist top party --limit 5 --json
  printf 'current: bohemian\ncurrent: bohemian rhap\n' | room-playlist suggest`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.AddCommand(topCmd, suggestCmd)
}

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration the way the server does
func loadConfig() (*config.Config, error) {
	return config.Load()
}
