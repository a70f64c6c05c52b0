// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bootstrap opens the storage backend selected by configuration and
hands out the repositories built on it.

Both binaries (cmd/api and cmd/codetrackctl) go through [OpenStores], so the
driver switch lives in one place.
*/
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/config"
	"github.com/taibuivan/codetrack/internal/platform/migration"
	"github.com/taibuivan/codetrack/internal/platform/postgres"
	"github.com/taibuivan/codetrack/internal/platform/sqlite"
	"github.com/taibuivan/codetrack/internal/users/auth"
)

// Stores bundles the relational repositories of one storage backend.
type Stores struct {
	Users    auth.UserRepository
	Sessions session.Repository

	// Ping checks that the backend is reachable.
	Ping func(context context.Context) error

	// Driver is the configured DATABASE_DRIVER.
	Driver string

	close func()
}

// Close releases the underlying connections.
func (stores *Stores) Close() {
	if stores.close != nil {
		stores.close()
	}
}

/*
OpenStores connects to the configured database.

Parameters:
  - context: context.Context (bounds the initial connection)
  - cfg: *config.Storage
  - logger: *slog.Logger
  - migrate: whether to bring the schema up to date first

Returns:
  - *Stores: ready to use repositories
  - error: connection or migration failures
*/
func OpenStores(context context.Context, cfg *config.Storage, logger *slog.Logger, migrate bool) (*Stores, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return openPostgres(context, cfg, logger, migrate)
	case config.DriverSQLite:
		return openSQLite(context, cfg, logger, migrate)
	}
	return nil, fmt.Errorf("bootstrap: unsupported database driver %q", cfg.DatabaseDriver)
}

func openPostgres(ctx context.Context, cfg *config.Storage, logger *slog.Logger, migrate bool) (*Stores, error) {
	if migrate {
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	return &Stores{
		Users:    auth.NewUserRepository(pool),
		Sessions: session.NewPostgresRepository(pool),
		Ping:     func(pingCtx context.Context) error { return postgres.Ping(pingCtx, pool) },
		Driver:   config.DriverPostgres,
		close: func() {
			logger.Info("closing postgres pool")
			pool.Close()
		},
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Storage, logger *slog.Logger, migrate bool) (*Stores, error) {
	db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}

	users := auth.NewSQLiteUserRepository(db)
	sessions := session.NewSQLiteRepository(db)

	if migrate {
		// Sessions reference accounts, so accounts go first.
		if err := users.Migrate(ctx); err != nil {
			closeSQLite(db, logger)
			return nil, err
		}
		if err := sessions.Migrate(ctx); err != nil {
			closeSQLite(db, logger)
			return nil, err
		}
	}

	return &Stores{
		Users:    users,
		Sessions: sessions,
		Ping:     func(pingCtx context.Context) error { return sqlite.Ping(pingCtx, db) },
		Driver:   config.DriverSQLite,
		close:    func() { closeSQLite(db, logger) },
	}, nil
}

func closeSQLite(db *gorm.DB, logger *slog.Logger) {
	logger.Info("closing sqlite database")
	if err := sqlite.Close(db); err != nil {
		logger.Error("sqlite_close_failed", slog.Any("error", err))
	}
}
