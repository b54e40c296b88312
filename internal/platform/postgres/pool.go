// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx pool backing the saved-avatar repository.
package postgres

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxConnLifetime   = 60 * time.Minute
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = 1 * time.Minute
	connectTimeout    = 5 * time.Second
)

// Options sizes the pool. Zero values keep the pgxpool defaults.
type Options struct {
	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration
}

/*
NewPool creates the pool and pings it once before returning.

Parameters:
  - context: Bounds the initial connection attempt
  - dsn: A libpq-compatible connection string or postgres:// URL
  - options: Pool size and per-connection statement timeout
  - logger: Structured logger for pool events

Returns:
  - *pgxpool.Pool: A pool that has answered a ping
  - error: DSN parse failures or an unreachable database
*/
func NewPool(context stdctx.Context, dsn string, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	if options.MaxConns > 0 {
		poolConfig.MaxConns = options.MaxConns
	}
	if options.MinConns > 0 {
		poolConfig.MinConns = options.MinConns
	}
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	if options.StatementTimeout > 0 {
		timeoutQuery := fmt.Sprintf("SET statement_timeout = %d", options.StatementTimeout.Milliseconds())
		poolConfig.AfterConnect = func(ctx stdctx.Context, connection *pgx.Conn) error {
			_, err := connection.Exec(ctx, timeoutQuery)
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(context, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Int("min_conns", int(poolConfig.MinConns)),
		slog.Duration("statement_timeout", options.StatementTimeout),
	)
	return pool, nil
}

// Ping checks the pool can reach the database. The caller's context bounds it.
func Ping(context stdctx.Context, pool *pgxpool.Pool) error {
	if err := pool.Ping(context); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}
