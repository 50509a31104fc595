// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Suggestion is one predicted next question. Suggestions are immutable and
// kept in the order the server returned them.
type Suggestion struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// NewSuggestions wraps prediction strings in Suggestions, preserving order.
// Blank entries are skipped.
func NewSuggestions(contents []string) []Suggestion {
	out := make([]Suggestion, 0, len(contents))
	for _, c := range contents {
		if c == "" {
			continue
		}
		out = append(out, Suggestion{ID: NewID(), Content: c})
	}
	return out
}

// SuggestionContents returns the content strings of a suggestion list.
func SuggestionContents(list []Suggestion) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Content
	}
	return out
}

// Without returns a new list holding every suggestion whose content differs
// from chosen. A nil list yields an empty, non-nil result.
func Without(list []Suggestion, chosen string) []Suggestion {
	out := make([]Suggestion, 0, len(list))
	for _, s := range list {
		if s.Content != chosen {
			out = append(out, s)
		}
	}
	return out
}
