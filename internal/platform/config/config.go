// Copyright (c) 2026 CodeTrack. All rights reserved.
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

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Storage Drivers

const (
	// DriverPostgres stores everything in PostgreSQL (production).
	DriverPostgres = "postgres"

	// DriverSQLite stores everything in an embedded SQLite file (local development).
	DriverSQLite = "sqlite"
)

// # Configuration Schema

// Storage holds the settings of the relational store and calendar.
//
// It is embedded in [Config] and can be loaded on its own with [LoadStorage]
// by tools that never touch Redis or tokens.
type Storage struct {
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SQLitePath     string `env:"SQLITE_PATH"     envDefault:"./data/codetrack.db"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Timezone is the IANA zone used to cut coding sessions into calendar days.
	Timezone string `env:"TIMEZONE" envDefault:"UTC"`
}

// Config holds all runtime configuration for the CodeTrack API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational storage
	Storage

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required,notEmpty"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"codetrack.dev"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadStorage parses only the storage settings.
//
// Each override runs after the environment is parsed and before validation,
// which lets command-line flags win over environment variables.
func LoadStorage(overrides ...func(*Storage)) (*Storage, error) {
	storage := &Storage{}
	if err := env.Parse(storage); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	for _, override := range overrides {
		override(storage)
	}

	if err := storage.Validate(); err != nil {
		return nil, err
	}

	return storage, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	return c.Storage.Validate()
}

// Validate checks the driver-specific settings and the time zone.
func (s *Storage) Validate() error {
	switch s.DatabaseDriver {
	case DriverPostgres:
		if strings.TrimSpace(s.DatabaseURL) == "" {
			return fmt.Errorf("config: DATABASE_URL is required when DATABASE_DRIVER=%s", DriverPostgres)
		}
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return fmt.Errorf("config: SQLITE_PATH is required when DATABASE_DRIVER=%s", DriverSQLite)
		}
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", s.DatabaseDriver)
	}

	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("config: TIMEZONE is invalid: %w", err)
	}

	return nil
}

// Location returns the configured calendar time zone.
//
// It falls back to UTC; [Storage.Validate] has already rejected unknown zones.
func (s *Storage) Location() *time.Location {
	location, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return location
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix returns the domain suffix trusted by the CORS middleware.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
