// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/codetrack/internal/bootstrap"
	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/config"
	"github.com/taibuivan/codetrack/internal/users/auth"
	"github.com/taibuivan/codetrack/pkg/daterange"
)

var seedProjects = []string{"codetrack", "api", "docs"}

type seedOptions struct {
	username string
	email    string
	password string
	days     int
}

func newSeedCmd(flags *storageFlags) *cobra.Command {
	options := &seedOptions{}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo account with completed sessions",
		Long:  "Registers a demo account and records one completed session per day, ending today.",
		Args:  cobra.NoArgs,
		RunE: withStores(flags, true, func(cmd *cobra.Command, _ []string, storage *config.Storage, stores *bootstrap.Stores) error {
			if options.days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			email := options.email
			if email == "" {
				email = options.username + "@codetrack.dev"
			}

			logger := flags.logger()
			users := auth.NewService(stores.Users, nil, nil, logger)
			user, err := users.Register(cmd.Context(), auth.RegisterInput{
				Username: options.username,
				Email:    email,
				Password: options.password,
			})
			if err != nil {
				return err
			}

			location := storage.Location()
			now := time.Now()
			clock := now
			sessions := session.NewService(stores.Sessions, logger, session.WithClock(func() time.Time { return clock }))

			// ── Record one session per day ──────────────────────────────
			var total int64
			today := daterange.Today(now, location)
			for offset := options.days - 1; offset >= 0; offset-- {
				duration := time.Duration(25+10*(offset%4)) * time.Minute
				start := daterange.StartOfDay(today.AddDays(-offset), location).Add(9 * time.Hour)
				if !start.Add(duration).Before(now) {
					start = now.Add(-duration)
				}

				clock = start
				started, err := sessions.StartSession(cmd.Context(),
					session.Owner{ID: user.ID, Username: user.Username},
					session.StartInput{
						ProjectName: seedProjects[offset%len(seedProjects)],
						Description: "Seeded session",
					})
				if err != nil {
					return err
				}

				clock = start.Add(duration)
				ended, err := sessions.EndSession(cmd.Context(), started.ID)
				if err != nil {
					return err
				}
				total += ended.Minutes()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("✓ seeded "+user.Username))
			fmt.Fprintln(out, field("User ID", user.ID))
			fmt.Fprintln(out, field("Sessions", options.days))
			fmt.Fprintln(out, field("Coding time", session.FormatDuration(total)))
			return nil
		}),
	}

	seedCmd.Flags().StringVarP(&options.username, "username", "u", "demo", "Account username")
	seedCmd.Flags().StringVar(&options.email, "email", "", "Account email (default <username>@codetrack.dev)")
	seedCmd.Flags().StringVar(&options.password, "password", "codetrack-demo", "Account password")
	seedCmd.Flags().IntVar(&options.days, "days", 7, "Number of days to fill, ending today")

	return seedCmd
}
