// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Turn is one exchange: the text the user sent plus the suggestion
// bookkeeping captured at send time. A Turn never changes after it is created.
type Turn struct {
	ID       string    `json:"id"`
	UserText string    `json:"user_text"`
	SentAt   time.Time `json:"sent_at"`

	// Offered is the suggestion list in effect when the user sent.
	// Remaining is Offered minus the clicked suggestion, and is what gets
	// attached to the bot reply.
	Offered   []Suggestion `json:"offered,omitempty"`
	Remaining []Suggestion `json:"remaining,omitempty"`

	UserMessageID string `json:"user_message_id"`
	BotMessageID  string `json:"bot_message_id"` // loading placeholder
}

// FromSuggestion reports whether the turn was produced by clicking a
// suggestion rather than by typing.
func (t Turn) FromSuggestion() bool {
	for _, s := range t.Offered {
		if s.Content == t.UserText {
			return true
		}
	}
	return false
}
