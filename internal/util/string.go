// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across hittu.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// UNICODE: every length in hittu is a character (rune) count, never bytes.
// Replies are frequently Japanese, and a byte-based typewriter would emit
// broken UTF-8 halfway through a character.

// RuneLen returns the number of runes (characters) in a string.
func RuneLen(s string) int {
	return len([]rune(s))
}

// RunePrefix returns the first n characters of s.
// n is clamped to [0, RuneLen(s)].
func RunePrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if n >= len(runes) {
		return s
	}
	return string(runes[:n])
}

// TruncateWidth truncates a string to a maximum display width, appending "…"
// when something was cut. Double-width characters count as two columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// StringWidth returns the display width of a string.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// NormalizeInput trims surrounding whitespace and converts the text to NFC so
// that composed and decomposed forms of the same character compare equal.
func NormalizeInput(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
