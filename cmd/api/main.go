// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the avatar customization API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured, otherwise keep sessions in memory.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/avatarstudio/internal/api"
	"github.com/taibuivan/avatarstudio/internal/avatar"
	"github.com/taibuivan/avatarstudio/internal/platform/config"
	"github.com/taibuivan/avatarstudio/internal/platform/constants"
	"github.com/taibuivan/avatarstudio/internal/platform/middleware"
	"github.com/taibuivan/avatarstudio/internal/platform/migration"
	pgstore "github.com/taibuivan/avatarstudio/internal/platform/postgres"
	redisstore "github.com/taibuivan/avatarstudio/internal/platform/redis"
	"github.com/taibuivan/avatarstudio/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "avatarstudio"))
	slog.SetDefault(log)

	log.Info("[AvatarStudio] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "avatarstudio"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Duration("session_ttl", cfg.SessionTTL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Root context for background workers such as the rate limiter janitor.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.Options{
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		StatementTimeout: cfg.DBStatementTimeout,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Session Store ──────────────────────────────────────────────────
	var (
		sessionStore avatar.SessionStore
		rdb          *goredis.Client
	)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.RedisPoolSize, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		sessionStore = avatar.NewRedisSessionStore(rdb)
	} else {
		log.Warn("redis_not_configured", slog.String("session_store", "memory"))
		sessionStore = avatar.NewMemorySessionStore()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	schema, err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
	must(log, err, "run migrations")
	log.Info("schema_ready", slog.Uint64("version", uint64(schema.To)), slog.Bool("applied", schema.Applied))

	// ── 6. Token Verification ─────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, cfg.JWTIssuer)
	must(log, err, "initialize token verifier")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	checks := []api.HealthCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}}
	if rdb != nil {
		checks = append(checks, api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	}
	liveness, readiness := api.NewHealthHandlers(checks, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	previewHub := avatar.NewPreviewHub(middleware.WebSocketOrigin(cfg), log)
	avatarService := avatar.NewService(
		sessionStore,
		avatar.NewAvatarRepository(pool),
		previewHub,
		avatar.DefaultCatalog(),
		cfg.SessionTTL,
		log,
	)
	avatarHandler := avatar.NewHandler(avatarService, previewHub)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Avatar:    avatarHandler,
	}

	server := api.NewServer(appCtx, cfg, log, verifier, handlers)

	// ── 10. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
