// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/hittu-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar above the message list.
type Header struct {
	Title   string
	Backend string // e.g. "mock" or the API host
	Typing  bool   // a reply is pending
	Width   int
	theme   *styles.Theme
}

// NewHeader creates a Header.
func NewHeader(theme *styles.Theme, title string) *Header {
	return &Header{
		Title: title,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header. On narrow terminals the backend is dropped and
// only the typing indicator is kept next to the title.
func (h *Header) View() string {
	title := h.theme.HeaderTitle.Render(h.Title)

	var sub []string
	if h.Backend != "" && h.theme.GetLayoutMode() != styles.LayoutNarrow {
		sub = append(sub, h.Backend)
	}
	if h.Typing {
		sub = append(sub, "typing...")
	}

	line := title
	if len(sub) > 0 {
		line += "  " + h.theme.HeaderSubtitle.Render(strings.Join(sub, " · "))
	}
	return h.theme.Header.Width(max(h.Width, 1)).Render(line)
}
