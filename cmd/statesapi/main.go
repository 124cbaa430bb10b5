// Command statesapi serves US state reference data merged with
// user-contributed fun facts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/talgya/us-states/internal/api"
	"github.com/talgya/us-states/internal/catalog"
	"github.com/talgya/us-states/internal/config"
	"github.com/talgya/us-states/internal/funfacts"
	"github.com/talgya/us-states/internal/persistence"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// ── Static catalog ────────────────────────────────────────────────
	states, err := catalog.Load(cfg.StatesDataPath)
	if err != nil {
		return fmt.Errorf("load states: %w", err)
	}
	source := cfg.StatesDataPath
	if source == "" {
		source = "bundled"
	}
	slog.Info("states loaded", "count", states.Len(), "source", source)

	// ── Fun fact store ────────────────────────────────────────────────
	var store funfacts.Store
	switch cfg.Store {
	case config.StoreMemory:
		store = funfacts.NewMemoryStore()
		slog.Warn("using in-memory fun fact store; data is lost on exit")
	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
		}
		db, err := persistence.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		store = db
		slog.Info("database opened", "path", cfg.DBPath)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	var limiter *api.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		defer limiter.Stop()
	}

	apiServer := &api.Server{
		Catalog:     states,
		Store:       store,
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("API: http://localhost:%d/states/\n", cfg.Port)
	if err := apiServer.ListenAndServe(ctx); err != nil {
		return err
	}
	slog.Info("received signal, shut down cleanly")
	return nil
}
