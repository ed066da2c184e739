// Package main is the entry point for the nutrition tracker server.
//
// The main package stays minimal. Its job is to:
//  1. Read configuration (defaults, .env, optional YAML file, environment)
//  2. Create dependencies (logger, database)
//  3. Start the application
//
// All actual logic lives in the internal/ packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/nutrition-tracker/internal/config"
	"github.com/sakif/nutrition-tracker/internal/repository/sqlstore"
	"github.com/sakif/nutrition-tracker/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Load has already validated the level.
	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// === 3. OPEN THE DATABASE ===
	// A SQLite file needs its directory to exist first, like `mkdir -p`.
	if sqlstore.DriverFor(cfg.Database.URL) == sqlstore.DriverSQLite && cfg.Database.URL != ":memory:" {
		dbDir := filepath.Dir(cfg.Database.URL)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := sqlstore.Open(ctx, cfg.Database.URL)
	cancel()
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, db, logger)
	if err != nil {
		db.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM and closes the database on return.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
