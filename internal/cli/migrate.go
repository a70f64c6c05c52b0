// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/codetrack/internal/bootstrap"
	"github.com/taibuivan/codetrack/internal/platform/config"
)

func newMigrateCmd(flags *storageFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: withStores(flags, true, func(cmd *cobra.Command, _ []string, storage *config.Storage, stores *bootstrap.Stores) error {
			if err := stores.Ping(cmd.Context()); err != nil {
				return err
			}

			target := storage.SQLitePath
			if storage.DatabaseDriver == config.DriverPostgres {
				target = storage.MigrationPath
			}
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("✓ schema up to date"), mutedStyle.Render(stores.Driver+" "+target))
			return nil
		}),
	}
}
