// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements codetrackctl, the operator tool that talks to the
CodeTrack database directly.

Commands:

  - migrate: bring the schema up to date
  - seed: create a demo account with a week of sessions
  - stats: print a user's dashboard
  - sessions: list a user's sessions
*/
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/codetrack/internal/bootstrap"
	"github.com/taibuivan/codetrack/internal/platform/config"
	"github.com/taibuivan/codetrack/internal/platform/constants"
)

// storageFlags are the persistent flags that override the environment.
type storageFlags struct {
	driver      string
	sqlitePath  string
	databaseURL string
	timezone    string
	verbose     bool
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package variables.
func newRootCmd() *cobra.Command {
	flags := &storageFlags{}

	rootCmd := &cobra.Command{
		Use:   "codetrackctl",
		Short: "Operate a CodeTrack database",
		Long: `codetrackctl reads and writes the CodeTrack store without going through the API.
Connection settings come from DATABASE_DRIVER, DATABASE_URL, SQLITE_PATH and TIMEZONE
and can be overridden with flags.`,
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.driver, "driver", "", "Storage driver: postgres or sqlite")
	persistent.StringVar(&flags.sqlitePath, "sqlite-path", "", "SQLite database file")
	persistent.StringVar(&flags.databaseURL, "database-url", "", "PostgreSQL connection string")
	persistent.StringVar(&flags.timezone, "timezone", "", "IANA zone used for calendar days")
	persistent.BoolVarP(&flags.verbose, "verbose", "v", false, "Log storage activity to stderr")

	rootCmd.AddCommand(newMigrateCmd(flags))
	rootCmd.AddCommand(newSeedCmd(flags))
	rootCmd.AddCommand(newStatsCmd(flags))
	rootCmd.AddCommand(newSessionsCmd(flags))

	return rootCmd
}

// Execute runs the root command against the process arguments.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

// load merges the environment with the flags that were set.
func (flags *storageFlags) load() (*config.Storage, error) {
	return config.LoadStorage(func(storage *config.Storage) {
		if flags.driver != "" {
			storage.DatabaseDriver = flags.driver
		}
		if flags.sqlitePath != "" {
			storage.SQLitePath = flags.sqlitePath
		}
		if flags.databaseURL != "" {
			storage.DatabaseURL = flags.databaseURL
		}
		if flags.timezone != "" {
			storage.Timezone = flags.timezone
		}
	})
}

func (flags *storageFlags) logger() *slog.Logger {
	if !flags.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With(slog.String("app", "codetrackctl"))
}

// withStores opens the store for the duration of one command.
func withStores(flags *storageFlags, migrate bool, fn func(cmd *cobra.Command, args []string, storage *config.Storage, stores *bootstrap.Stores) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		storage, err := flags.load()
		if err != nil {
			return err
		}

		stores, err := bootstrap.OpenStores(cmd.Context(), storage, flags.logger(), migrate)
		if err != nil {
			return err
		}
		defer stores.Close()

		return fn(cmd, args, storage, stores)
	}
}
