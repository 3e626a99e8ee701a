// Package main is the entry point for the Driftboat API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pkordes/driftboat/internal/auth"
	"github.com/pkordes/driftboat/internal/config"
	"github.com/pkordes/driftboat/internal/handler"
	"github.com/pkordes/driftboat/internal/loginlimit"
	"github.com/pkordes/driftboat/internal/middleware"
	"github.com/pkordes/driftboat/internal/repo"
	"github.com/pkordes/driftboat/internal/service"
	"github.com/pkordes/driftboat/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Storage ----------------------------------------------------------
	store, kv, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open document store", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("document store ready", "driver", cfg.DatabaseDriver)

	// --- Services ---------------------------------------------------------
	trips := repo.NewTripRepo(store)
	bookings := repo.NewBookingRepo(store)
	categories := repo.NewCategoryRepo(store)
	resources := repo.NewResourceRepo(store)

	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		slog.Warn("admin credentials not configured; admin login is disabled")
	}
	authSvc := service.NewAuthService(
		auth.Credentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		loginlimit.New(kv),
		logger,
	)

	srv := handler.NewServer(handler.Services{
		Trips:        service.NewTripService(trips, logger),
		Bookings:     service.NewBookingService(bookings, trips, logger),
		Export:       service.NewExportService(bookings, trips),
		Testimonials: service.NewTestimonialService(repo.NewTestimonialRepo(store), logger),
		Resources:    service.NewResourceService(resources, categories, logger),
		Categories:   service.NewCategoryService(categories, resources),
		Auth:         authSvc,
	}, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP, which the
	// login limiter falls back to when no X-Client-ID header is sent.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The lockout event stream lifts the write deadline for itself.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore connects to the configured backend, applies pending migrations
// and returns the document store and key-value store built on it.
func openStore(ctx context.Context, cfg config.Config) (repo.Store, repo.KV, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		// New() does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("connect: %w", err)
		}
		// goose needs database/sql; share the pool instead of opening a second one.
		sqlDB := stdlib.OpenDBFromPool(pool)
		defer sqlDB.Close()
		if err := migrations.Up(ctx, sqlDB, migrations.Postgres); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return repo.NewPgStore(pool), repo.NewPgKV(pool), pool.Close, nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return repo.NewSQLiteStore(db), repo.NewSQLiteKV(db), func() { _ = db.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
}
