// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the go-redis client that stores draft avatar sessions.

Drafts change on every selection and expire when the user walks away, so they
live here with a TTL instead of in PostgreSQL.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
)

/*
NewClient parses redisURL, applies poolSize and pings once.

Parameters:
  - context: Bounds the initial ping
  - redisURL: redis:// or rediss:// URL
  - poolSize: Maximum socket connections
  - logger: Structured logger for connection events
*/
func NewClient(context stdctx.Context, redisURL string, poolSize int, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = max(1, poolSize/5)
	options.MaxIdleConns = max(1, poolSize/2)
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)
	return client, nil
}

// Ping checks the client can reach the server. The caller's context bounds it.
func Ping(context stdctx.Context, client *redis.Client) error {
	if err := client.Ping(context).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
