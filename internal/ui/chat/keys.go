// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat screen.
type KeyMap struct {
	Submit   key.Binding
	NextChip key.Binding
	PrevChip key.Binding
	PickChip key.Binding
	Dismiss  key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Clear    key.Binding
	Save     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NextChip: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next suggestion"),
		),
		PrevChip: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev suggestion"),
		),
		PickChip: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("M-1..9", "pick suggestion"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextChip, k.PickChip, k.Clear, k.Save, k.Quit}
}

// FullHelp returns every binding, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Dismiss},
		{k.NextChip, k.PrevChip, k.PickChip},
		{k.PageUp, k.PageDown},
		{k.Clear, k.Save, k.Quit},
	}
}

// chipShortcut returns n for "alt+n", n in 1..9, or 0.
func chipShortcut(keyStr string) int {
	if len(keyStr) == len("alt+1") && keyStr[:4] == "alt+" && keyStr[4] >= '1' && keyStr[4] <= '9' {
		return int(keyStr[4] - '0')
	}
	return 0
}
