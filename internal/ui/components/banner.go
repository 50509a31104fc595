// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/hittu-tui/internal/ui/styles"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// BannerKind selects the banner's appearance.
type BannerKind int

const (
	// BannerError is the chat error banner. It gates input until dismissed.
	BannerError BannerKind = iota
	// BannerStatus is a short informational notice, e.g. "Transcript saved".
	BannerStatus
)

// StatusBannerDuration is how long a status notice stays up.
const StatusBannerDuration = 3 * time.Second

// Banner is a one-line notice rendered above the input.
type Banner struct {
	Kind    BannerKind
	Message string
	// Gen identifies the event that raised the banner so a late expiry timer
	// only clears the banner it was started for.
	Gen uint64
}

// Visible reports whether there is anything to render.
func (b Banner) Visible() bool {
	return b.Message != ""
}

// View renders the banner at the given width.
func (b Banner) View(theme *styles.Theme, width int) string {
	if !b.Visible() {
		return ""
	}

	inner := max(width-4, 1)
	switch b.Kind {
	case BannerStatus:
		return theme.StatusBar.Render(util.TruncateWidth(b.Message, width-2))
	default:
		title := theme.ErrorTitle.Render("Error ")
		hint := theme.ErrorHint.Render("  esc to dismiss")
		room := inner - lipgloss.Width(title) - lipgloss.Width(hint)
		line := title + util.TruncateWidth(b.Message, max(room, 1)) + hint
		return theme.ErrorBanner.Width(inner).Render(line)
	}
}
