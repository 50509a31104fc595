// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownCache renders completed bot replies with glamour. Output is cached
// per message; a width change invalidates everything.
type markdownCache struct {
	dark     bool
	width    int
	renderer *glamour.TermRenderer
	out      map[string]string
}

func newMarkdownCache(dark bool) *markdownCache {
	return &markdownCache{dark: dark, out: make(map[string]string)}
}

// render returns text rendered as markdown at width, or text unchanged when
// glamour fails.
func (c *markdownCache) render(id, text string, width int) string {
	if width != c.width || c.renderer == nil {
		style := "light"
		if c.dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		c.renderer = r
		c.width = width
		c.out = make(map[string]string)
	}

	if out, ok := c.out[id]; ok {
		return out
	}
	out, err := c.renderer.Render(text)
	if err != nil {
		return text
	}
	out = strings.Trim(out, "\n")
	c.out[id] = out
	return out
}

func (c *markdownCache) reset() {
	c.out = make(map[string]string)
}
