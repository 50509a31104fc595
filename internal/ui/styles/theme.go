// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles of every part of the chat screen.
type Theme struct {
	IsDark bool

	Width  int
	Height int

	// Header
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// Messages
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	BotAvatar  lipgloss.Style
	Timestamp  lipgloss.Style
	Loading    lipgloss.Style
	Cursor     lipgloss.Style

	// Input
	InputContainer   lipgloss.Style
	InputDisabled    lipgloss.Style
	CharCount        lipgloss.Style
	CharCountWarning lipgloss.Style
	CharCountDanger  lipgloss.Style

	// Suggestion chips
	Chip         lipgloss.Style
	ChipSelected lipgloss.Style
	ChipIndex    lipgloss.Style
	ChipLabel    lipgloss.Style

	// Error banner
	ErrorBanner lipgloss.Style
	ErrorTitle  lipgloss.Style
	ErrorHint   lipgloss.Style

	// Footer
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a theme for the current terminal background.
func NewTheme() *Theme {
	t := &Theme{IsDark: lipgloss.HasDarkBackground()}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Indigo)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)
	t.BotBubble = lipgloss.NewStyle().
		Foreground(BotBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BotBubbleBorder).
		Padding(0, 1)
	t.BotAvatar = lipgloss.NewStyle().Bold(true).Foreground(Teal)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Loading = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Cursor = lipgloss.NewStyle().Foreground(Teal)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(0, 1)
	t.InputDisabled = t.InputContainer.BorderForeground(TextMuted)
	t.CharCount = lipgloss.NewStyle().Foreground(TextMuted)
	t.CharCountWarning = lipgloss.NewStyle().Foreground(Amber)
	t.CharCountDanger = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.Chip = lipgloss.NewStyle().
		Foreground(Teal).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(0, 1)
	t.ChipSelected = t.Chip.
		Foreground(Indigo).
		Background(IndigoDeep).
		BorderForeground(Indigo).
		Bold(true)
	t.ChipIndex = lipgloss.NewStyle().Foreground(TextMuted)
	t.ChipLabel = lipgloss.NewStyle().Foreground(TextSecondary)

	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(Rose).
		Background(RoseDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)
	t.ErrorTitle = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.ErrorHint = lipgloss.NewStyle().Foreground(TextSecondary)

	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Indigo)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth is the widest a message bubble may be at the current width.
func (t *Theme) BubbleWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return max(t.Width-4, 10)
	case LayoutMedium:
		return t.Width * 3 / 4
	default:
		return t.Width * 2 / 3
	}
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
