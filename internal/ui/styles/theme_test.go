// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme()

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"BotBubble", theme.BotBubble},
		{"InputContainer", theme.InputContainer},
		{"Chip", theme.Chip},
		{"ChipSelected", theme.ChipSelected},
		{"ErrorBanner", theme.ErrorBanner},
	}
	for _, s := range styles {
		if s.style.Render("test") == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 30)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestBubbleWidth(t *testing.T) {
	theme := NewTheme()

	theme.SetSize(8, 20)
	if got := theme.BubbleWidth(); got != 10 {
		t.Errorf("narrow BubbleWidth() = %d, want floor of 10", got)
	}

	theme.SetSize(120, 40)
	if got := theme.BubbleWidth(); got != 80 {
		t.Errorf("wide BubbleWidth() = %d, want 80", got)
	}
}

func TestTypingSpinner(t *testing.T) {
	if len(TypingSpinner.Frames) == 0 || TypingSpinner.FPS <= 0 {
		t.Error("TypingSpinner must have frames and a positive frame interval")
	}
}
