package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vibecheck/internal/app"
	"vibecheck/internal/config"
	"vibecheck/internal/handlers"
	"vibecheck/internal/services"
)

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize cache
	sharedCache, err := app.OpenCache(cfg)
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer sharedCache.Close()

	// Initialize room store
	store, err := app.OpenStore(ctx, cfg, sharedCache)
	if err != nil {
		slog.Error("Failed to open room store", "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	tuning := config.LoadTuning(cfg.TuningConfigPath)
	tuning.Watch(ctx, 30*time.Second)

	// Initialize services
	searchChain := app.NewSearchChain(cfg, sharedCache)
	finalizer := app.NewMetadataFinalizer(cfg)
	tokenRelay := services.NewTokenRelay(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyTokenURL)

	router := handlers.NewRouter(handlers.Router{
		Rooms: handlers.NewRoomHandler(store.Rooms, finalizer, func() int {
			return tuning.Current().PlaylistTopN
		}, cfg.BaseURL),
		Search: handlers.NewSearchHandler(searchChain),
		Token:  handlers.NewTokenHandler(tokenRelay),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthChecker{
			"store": store.Rooms,
			"cache": sharedCache,
		}),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
