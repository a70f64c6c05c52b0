// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
const (
	colorAccent    = "#7C3AED"
	colorPrimary   = "#E6EAF2"
	colorSecondary = "#B1B8C7"
	colorMuted     = "#6D7383"
	colorSuccess   = "#22C55E"
	colorWarning   = "#F59E0B"
	colorBorder    = "#3A3F55"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSecondary)).
			Width(24)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarning))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(colorBorder))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)
)

// field renders one "label  value" line.
func field(label string, value any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
}

// bar draws a proportional bar of at most width cells.
func bar(value, peak int64, width int) string {
	if peak <= 0 || value <= 0 {
		return ""
	}
	cells := int(value * int64(width) / peak)
	if cells == 0 {
		cells = 1
	}
	return barStyle.Render(strings.Repeat("█", cells))
}

// truncate shortens text to max runes, marking the cut with an ellipsis.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
