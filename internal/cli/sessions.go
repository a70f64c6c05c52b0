// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taibuivan/codetrack/internal/bootstrap"
	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/config"
	"github.com/taibuivan/codetrack/pkg/pagination"
)

// Column widths of the session table.
var sessionColumns = []struct {
	title string
	width int
}{
	{"STARTED", 18},
	{"STATUS", 13},
	{"PROJECT", 20},
	{"DURATION", 10},
	{"ID", 36},
}

func newSessionsCmd(flags *storageFlags) *cobra.Command {
	var page, limit int

	sessionsCmd := &cobra.Command{
		Use:     "sessions <username>",
		Aliases: []string{"ls"},
		Short:   "List a user's coding sessions, newest first",
		Args:    cobra.ExactArgs(1),
		RunE: withStores(flags, false, func(cmd *cobra.Command, args []string, storage *config.Storage, stores *bootstrap.Stores) error {
			user, err := findUser(cmd.Context(), stores.Users, args[0])
			if err != nil {
				return err
			}

			params := pagination.New(page, limit)
			service := session.NewService(stores.Sessions, flags.logger())
			sessions, total, err := service.GetUserSessions(cmd.Context(), user.ID, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if total == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No sessions recorded for "+user.Username+"."))
				return nil
			}

			fmt.Fprintln(out, renderSessions(sessions, storage.Location()))
			meta := pagination.NewMeta(params.Page, params.Limit, total)
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("page %d of %d · %d sessions", meta.Page, meta.TotalPages, meta.Total)))
			return nil
		}),
	}

	sessionsCmd.Flags().IntVarP(&page, "page", "p", pagination.DefaultPage, "Page number")
	sessionsCmd.Flags().IntVarP(&limit, "limit", "n", pagination.DefaultLimit, "Sessions per page")
	return sessionsCmd
}

func renderSessions(sessions []*session.CodingSession, location *time.Location) string {
	header := make([]string, 0, len(sessionColumns))
	for _, column := range sessionColumns {
		header = append(header, headerStyle.Width(column.width).Render(column.title))
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}
	for _, s := range sessions {
		duration := "-"
		statusStyle := mutedStyle
		switch {
		case s.IsCompleted():
			duration = session.FormatDuration(s.Minutes())
			statusStyle = barStyle
		case s.IsActive():
			duration = session.FormatDuration(session.WholeMinutes(s.StartTime, time.Now())) + "+"
			statusStyle = activeStyle
		}

		cells := []string{
			s.StartTime.In(location).Format("2006-01-02 15:04"),
			string(s.Status),
			truncate(s.Project(), sessionColumns[2].width-2),
			duration,
			s.ID,
		}
		styles := []lipgloss.Style{valueStyle, statusStyle, valueStyle, valueStyle, mutedStyle}

		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = styles[i].Width(sessionColumns[i].width).Render(cell)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return strings.Join(rows, "\n")
}
