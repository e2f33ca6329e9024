// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pressroom-io/pressroom/internal/cache"
	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/handler/api"
	"github.com/pressroom-io/pressroom/internal/handler/web"
	"github.com/pressroom-io/pressroom/internal/logging"
	"github.com/pressroom-io/pressroom/internal/middleware"
	"github.com/pressroom-io/pressroom/internal/scheduler"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/session"
	"github.com/pressroom-io/pressroom/internal/store"
)

// Version information injected at build time via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Pressroom - news publishing platform\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PRESSROOM_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		fmt.Fprintf(os.Stderr, "  PRESSROOM_DB_PATH          SQLite database path (default: ./data/pressroom.db)\n")
		fmt.Fprintf(os.Stderr, "  PRESSROOM_SERVER_PORT      Server port (default: 8080)\n")
		fmt.Fprintf(os.Stderr, "  PRESSROOM_ENV              Environment: development|production (default: development)\n")
		fmt.Fprintf(os.Stderr, "  PRESSROOM_REDIS_URL        Redis URL for distributed caching (optional)\n")
		fmt.Fprintf(os.Stderr, "  PRESSROOM_DO_SEED          Seed initial data on startup (default: false)\n")
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("pressroom %s (commit: %s)\n", appVersion, appGitCommit)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("closing database", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// WARN and above also land in the event log.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("database seeded")
	}

	cacheBackend, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	eventService := service.NewEventService(db)

	sched := scheduler.New(db, eventService, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(db, cacheBackend, eventService, api.Options{
		AccessTokenTTL:  time.Duration(cfg.AccessTokenTTL) * time.Second,
		RefreshTokenTTL: time.Duration(cfg.RefreshTokenTTL) * time.Second,
		LoginProtection: loginProtection,
	})
	webHandler := web.NewHandler(db, cacheBackend, sessionManager, loginProtection, eventService)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	// Token API: bearer auth, no cookies, CSRF exempt.
	r.Mount("/api/v1", apiHandler.Routes())

	// Session-cookie surface: admin pages behind CSRF.
	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Mount("/", webHandler.Routes())
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
