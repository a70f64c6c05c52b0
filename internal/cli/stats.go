// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taibuivan/codetrack/internal/bootstrap"
	"github.com/taibuivan/codetrack/internal/core/dashboard"
	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/config"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/users/auth"
)

const barWidth = 30

func newStatsCmd(flags *storageFlags) *cobra.Command {
	var asJSON bool

	statsCmd := &cobra.Command{
		Use:   "stats <username>",
		Short: "Print a user's dashboard statistics",
		Args:  cobra.ExactArgs(1),
		RunE: withStores(flags, false, func(cmd *cobra.Command, args []string, storage *config.Storage, stores *bootstrap.Stores) error {
			user, err := findUser(cmd.Context(), stores.Users, args[0])
			if err != nil {
				return err
			}

			service := dashboard.NewService(stores.Sessions, flags.logger(), storage.Location())
			stats, err := service.GetDashboardStats(cmd.Context(), user.ID)
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(user.Username, stats))
			return nil
		}),
	}

	statsCmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw statistics as JSON")
	return statsCmd
}

// findUser resolves a username or reports a readable error.
func findUser(context context.Context, users auth.UserRepository, username string) (*auth.User, error) {
	user, err := users.FindByUsername(context, strings.TrimSpace(username))
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return user, err
}

func renderStats(username string, stats dashboard.Stats) string {
	hour := "-"
	if stats.MostProductiveHour != nil {
		hour = fmt.Sprintf("%02d:00", *stats.MostProductiveHour)
	}

	summary := strings.Join([]string{
		field("Total sessions", stats.TotalSessions),
		field("Total coding time", session.FormatDuration(stats.TotalCodingTime)),
		field("Average session", session.FormatDuration(stats.AverageSessionDuration)),
		field("Current streak", days(stats.CurrentStreak)),
		field("Longest streak", days(stats.LongestStreak)),
		field("Most productive hour", hour),
		field("This month", session.FormatDuration(stats.CurrentMonthTotal)),
		field("Daily average", session.FormatDuration(stats.CurrentMonthDailyAverage)),
	}, "\n")

	// ── Last seven days ─────────────────────────────────────────────────
	var peak int64
	for _, day := range stats.LastSevenDaysActivity {
		peak = max(peak, day.Minutes)
	}
	week := []string{headerStyle.Render("Last 7 days")}
	for _, day := range stats.LastSevenDaysActivity {
		week = append(week, lipgloss.JoinHorizontal(lipgloss.Top,
			mutedStyle.Width(12).Render(day.Date.String()),
			lipgloss.NewStyle().Width(barWidth+1).Render(bar(day.Minutes, peak, barWidth)),
			valueStyle.Render(fmt.Sprintf("%dm", day.Minutes)),
		))
	}

	// ── Projects, largest first ─────────────────────────────────────────
	projects := []string{headerStyle.Render("Projects")}
	names := slices.SortedFunc(maps.Keys(stats.ProjectTimeDistribution), func(a, b string) int {
		return cmp.Or(
			cmp.Compare(stats.ProjectTimeDistribution[b], stats.ProjectTimeDistribution[a]),
			cmp.Compare(a, b),
		)
	})
	for _, name := range names {
		projects = append(projects, field(truncate(name, 22), session.FormatDuration(stats.ProjectTimeDistribution[name])))
	}
	if len(names) == 0 {
		projects = append(projects, mutedStyle.Render("no completed sessions"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("CodeTrack · "+username),
		boxStyle.Render(summary),
		strings.Join(week, "\n"),
		"",
		strings.Join(projects, "\n"),
	)
}

func days(n int64) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
