// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the saved-avatar schema with golang-migrate.
//
// # Sources
//
// Migrations are read through the iofs source driver, either from the SQL
// files embedded in the binary or from a directory on disk when an explicit
// path is configured.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/taibuivan/avatarstudio/data/migrations"
)

// Result reports the schema version before and after a run.
type Result struct {
	From    uint
	To      uint
	Applied bool
}

/*
RunUp applies all pending UP migrations.

Parameters:
  - dsn: A postgres:// URL (rewritten to pgx5:// for the driver)
  - dir: Migrations directory on disk; empty uses the embedded files
  - logger: Structured logger for migration events

Returns:
  - Result: Versions before and after the run
  - error: Initialization failures, a dirty schema, or a failed step
*/
func RunUp(dsn, dir string, logger *slog.Logger) (Result, error) {
	var source fs.FS = migrations.Files
	if dir != "" {
		source = os.DirFS(dir)
	}

	driver, err := iofs.New(source, ".")
	if err != nil {
		return Result{}, fmt.Errorf("migration: failed to open source: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", driver, convertToPgx5DSN(dsn))
	if err != nil {
		return Result{}, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		if err := errors.Join(sourceErr, dbErr); err != nil {
			logger.Error("avatar_schema_close_failed", slog.Any("error", err))
		}
	}()
	migrator.Log = &migrateLogger{logger: logger}

	from, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Result{}, fmt.Errorf("migration: failed to read version: %w", err)
	}
	if dirty {
		return Result{From: from}, fmt.Errorf("migration: schema is dirty at version %d", from)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("avatar_schema_up_to_date", slog.Uint64("version", uint64(from)))
			return Result{From: from, To: from}, nil
		}
		return Result{From: from}, fmt.Errorf("migration: up failed: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("avatar_schema_migrated",
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)),
	)
	return Result{From: from, To: to, Applied: true}, nil
}

// convertToPgx5DSN rewrites postgres:// and postgresql:// URLs to pgx5://.
// Keyword DSNs are returned unchanged.
func convertToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger routes golang-migrate output to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
