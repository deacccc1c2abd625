// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/haneul/studydesk/internal/api"
	"github.com/haneul/studydesk/internal/linkservice"
	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/noteservice"
	"github.com/haneul/studydesk/internal/sse"
	"github.com/haneul/studydesk/internal/storage"
	"github.com/haneul/studydesk/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("files_path", cfg.Files.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure files directory exists.
	if err := os.MkdirAll(cfg.Files.Path, 0o755); err != nil {
		return fmt.Errorf("create files dir: %w", err)
	}

	// Initialize storage.
	files, err := storage.NewFS(cfg.Files.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Seed profiles from the configured token map so the approval gate
	// has rows to consult.
	if err := seedProfiles(ctx, cfg, db); err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build services and router.
	notes := noteservice.NewService(db, files, broker, logger)
	links := linkservice.NewService(db, broker, logger)
	apiRouter := api.NewRouter(notes, links, files, broker,
		cfg.Auth.AuthEnabled(), cfg.Auth.UserMap(), LocalUser(), db)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the files directory; out-of-band edits show up on each
	// user's notes change feed.
	g.Go(func() error {
		if err := storage.Watch(gCtx, cfg.Files.Path, logger, func(userID string) {
			broker.PublishChange(store.TableNotes, userID)
		}); err != nil {
			logger.Warn("file watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// seedProfiles upserts a profile row per configured user and applies
// the static approval flags. With auth disabled only the local user is
// seeded, pre-approved.
func seedProfiles(ctx context.Context, cfg *Config, db *store.DB) error {
	if !cfg.Auth.AuthEnabled() {
		local := LocalUser()
		if err := db.UpsertProfile(ctx, local, true); err != nil {
			return err
		}
		return db.SetApproved(ctx, local.ID, true)
	}
	for _, u := range cfg.Auth.Users {
		user := models.User{ID: u.ID, Email: u.Email, Anonymous: u.Anonymous}
		if err := db.UpsertProfile(ctx, user, u.Approved); err != nil {
			return err
		}
		if u.Approved {
			if err := db.SetApproved(ctx, u.ID, true); err != nil {
				return err
			}
		}
	}
	return nil
}
