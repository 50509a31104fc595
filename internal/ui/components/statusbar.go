// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/hittu-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom line: key hints on the left, the input counter on
// the right.
type StatusBar struct {
	Shortcuts []key.Binding
	Counter   string // rendered by Counter, empty when hidden
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a StatusBar.
func NewStatusBar(theme *styles.Theme, shortcuts []key.Binding) *StatusBar {
	return &StatusBar{
		Shortcuts: shortcuts,
		Width:     80,
		theme:     theme,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the bar. Hints that do not fit are cut; the counter never is.
func (s *StatusBar) View() string {
	left := s.renderShortcuts()
	if s.Counter == "" {
		return s.theme.StatusBar.Render(clip(left, s.Width-2))
	}

	room := s.Width - lipgloss.Width(s.Counter) - 3
	left = clip(left, room)
	gap := max(s.Width-lipgloss.Width(left)-lipgloss.Width(s.Counter)-2, 1)
	return s.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + s.Counter)
}

func (s *StatusBar) renderShortcuts() string {
	hints := make([]string, 0, len(s.Shortcuts))
	for _, b := range s.Shortcuts {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hints = append(hints, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
	}
	return strings.Join(hints, "  ")
}

// clip cuts styled text to width columns.
func clip(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(max(width, 0)).Render(s)
}
