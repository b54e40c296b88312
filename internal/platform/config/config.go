// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components via constructors.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the avatar API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL) for saved avatars
	DatabaseURL        string        `env:"DATABASE_URL,required"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS"         envDefault:"10"`
	DBMinConns         int32         `env:"DB_MIN_CONNS"         envDefault:"2"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"5s"`

	// MigrationPath overrides the embedded migrations with a directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Key-Value store (Redis) for draft sessions. Empty selects the in-memory store.
	RedisURL      string `env:"REDIS_URL"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Token verification. Tokens are minted by the identity service.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"yomira.app"`

	// SessionTTL bounds how long an untouched customization session survives.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"yomira.app"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.DBMaxConns < 1 || cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return nil, fmt.Errorf("config: DB_MIN_CONNS (%d) must be within 0..DB_MAX_CONNS (%d)", cfg.DBMinConns, cfg.DBMaxConns)
	}
	if cfg.RedisPoolSize < 1 {
		return nil, fmt.Errorf("config: REDIS_POOL_SIZE must be positive, got %d", cfg.RedisPoolSize)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix returns the origin suffix accepted by CORS outside development.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
