// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/hittu-tui/internal/ui/styles"
)

// Shared styles for command output. lipgloss drops the colors on its own
// when stdout is not a terminal or NO_COLOR is set.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Indigo)

	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.Teal)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Rose)

	indexStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// renderMarkdown renders markdown for a terminal of the given width.
// It returns the input unchanged when rendering fails.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}
