// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for messages, suggestions and turns.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/hittu-tui/internal/util"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Bot"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one rendered entry in the chat history.
//
// Messages are values. The turn manager replaces the whole slice whenever
// anything changes, so a Message held by the UI never changes underneath it.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`

	// Content is the full text. For bot messages this is the reveal target.
	Content string `json:"content"`

	// IsLoading marks the "bot is typing" placeholder.
	IsLoading bool `json:"-"`

	// Reveal state (bot messages only, not persisted)
	Revealed       int  `json:"-"` // characters revealed so far
	RevealComplete bool `json:"-"`

	// Follow-up suggestions attached to a bot reply. They are hidden until the
	// reply has been fully revealed.
	Suggestions        []Suggestion `json:"suggestions,omitempty"`
	SuggestionsVisible bool         `json:"-"`
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// NewUserMessage creates a user message stamped with now.
func NewUserMessage(content string, now time.Time) Message {
	return Message{
		ID:        NewID(),
		Sender:    SenderUser,
		Content:   content,
		Timestamp: now,
	}
}

// NewLoadingMessage creates the placeholder shown while a reply is pending.
func NewLoadingMessage(now time.Time) Message {
	return Message{
		ID:        NewID(),
		Sender:    SenderBot,
		Timestamp: now,
		IsLoading: true,
	}
}

// NewBotMessage creates a bot reply that starts unrevealed.
func NewBotMessage(content string, pending []Suggestion, now time.Time) Message {
	return Message{
		ID:          NewID(),
		Sender:      SenderBot,
		Content:     content,
		Timestamp:   now,
		Suggestions: pending,
	}
}

// NewRevealedBotMessage creates a bot message that is already fully shown,
// such as the greeting.
func NewRevealedBotMessage(content string, now time.Time) Message {
	return Message{
		ID:             NewID(),
		Sender:         SenderBot,
		Content:        content,
		Timestamp:      now,
		Revealed:       util.RuneLen(content),
		RevealComplete: content != "",
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot reports whether the message was written by the bot.
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}

// RevealedPrefix returns the part of a bot reply that has been revealed.
func (m Message) RevealedPrefix() string {
	return util.RunePrefix(m.Content, m.Revealed)
}

// DisplayContent returns the text the UI should show right now.
func (m Message) DisplayContent() string {
	if m.IsLoading {
		return ""
	}
	if m.IsUser() || m.RevealComplete {
		return m.Content
	}
	return m.RevealedPrefix()
}

// IsRevealing reports whether a bot reply is part-way through its reveal.
func (m Message) IsRevealing() bool {
	return m.IsBot() && !m.IsLoading && !m.RevealComplete && m.Content != ""
}

// VisibleSuggestions returns the follow-ups the UI may render.
func (m Message) VisibleSuggestions() []Suggestion {
	if !m.SuggestionsVisible {
		return nil
	}
	return m.Suggestions
}

// Preview returns a truncated single-line preview of the message content.
func (m Message) Preview(maxLen int) string {
	content := m.Content
	if util.RuneLen(content) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return util.RunePrefix(content, maxLen)
	}
	return util.RunePrefix(content, maxLen-3) + "..."
}
