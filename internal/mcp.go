package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/haneul/studydesk/internal/mcpserver"
	"github.com/haneul/studydesk/internal/storage"
	"github.com/haneul/studydesk/internal/store"
)

// RunMCP starts the MCP stdio server over the same database and files
// directory the HTTP server uses. Stdio has no bearer token, so the
// tools run as the local user.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Logs go to stderr; stdout carries the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Files.Path, 0o755); err != nil {
		return fmt.Errorf("create files dir: %w", err)
	}
	files, err := storage.NewFS(cfg.Files.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	if err := seedProfiles(ctx, cfg, db); err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(db, files, LocalUser().ID).ServeStdio()
}
