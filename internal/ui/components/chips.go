// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/ui/styles"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// MaxChipWidth caps a single chip's label.
const MaxChipWidth = 32

// Chips is a row of selectable suggestion chips. The zero value is an empty
// row with nothing selected.
type Chips struct {
	items    []model.Suggestion
	selected int // -1 when nothing is selected
}

// NewChips returns a row showing items with nothing selected.
func NewChips(items []model.Suggestion) Chips {
	return Chips{items: items, selected: -1}
}

// Items returns the chips in display order.
func (c Chips) Items() []model.Suggestion { return c.items }

// Len returns the number of chips.
func (c Chips) Len() int { return len(c.items) }

// SetItems replaces the chips. The selection survives only when the selected
// content is still present.
func (c Chips) SetItems(items []model.Suggestion) Chips {
	prev, ok := c.Selected()
	c.items = items
	c.selected = -1
	if ok {
		for i, s := range items {
			if s.Content == prev.Content {
				c.selected = i
				break
			}
		}
	}
	return c
}

// Next moves the selection right, wrapping to the first chip.
func (c Chips) Next() Chips {
	if len(c.items) == 0 {
		return c
	}
	c.selected = (c.selected + 1) % len(c.items)
	return c
}

// Prev moves the selection left, wrapping to the last chip.
func (c Chips) Prev() Chips {
	if len(c.items) == 0 {
		return c
	}
	if c.selected <= 0 {
		c.selected = len(c.items) - 1
	} else {
		c.selected--
	}
	return c
}

// Deselect clears the selection.
func (c Chips) Deselect() Chips {
	c.selected = -1
	return c
}

// Selected returns the selected chip.
func (c Chips) Selected() (model.Suggestion, bool) {
	if c.selected < 0 || c.selected >= len(c.items) {
		return model.Suggestion{}, false
	}
	return c.items[c.selected], true
}

// At returns the chip shown with the 1-based shortcut n.
func (c Chips) At(n int) (model.Suggestion, bool) {
	if n < 1 || n > len(c.items) {
		return model.Suggestion{}, false
	}
	return c.items[n-1], true
}

// View renders the chips, wrapping onto new lines when they do not fit.
// focused controls whether the selection is highlighted.
func (c Chips) View(theme *styles.Theme, label string, width int, focused bool) string {
	if len(c.items) == 0 {
		return ""
	}

	var lines []string
	row := theme.ChipLabel.Render(label)
	for i, s := range c.items {
		style := theme.Chip
		if focused && i == c.selected {
			style = theme.ChipSelected
		}
		text := util.TruncateWidth(s.Content, MaxChipWidth)
		if i < 9 {
			text = theme.ChipIndex.Render(strconv.Itoa(i+1)+" ") + text
		}
		chip := style.Render(text)

		if lipgloss.Width(row)+lipgloss.Width(chip)+1 > width && lipgloss.Width(row) > 0 {
			lines = append(lines, row)
			row = ""
		}
		if row != "" {
			row = lipgloss.JoinHorizontal(lipgloss.Center, row, " ", chip)
		} else {
			row = chip
		}
	}
	lines = append(lines, row)
	return strings.Join(lines, "\n")
}
