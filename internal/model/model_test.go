// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_DisplayContent(t *testing.T) {
	now := time.Now()

	user := NewUserMessage("hello", now)
	assert.Equal(t, "hello", user.DisplayContent())
	assert.True(t, user.IsUser())

	loading := NewLoadingMessage(now)
	assert.Equal(t, "", loading.DisplayContent())
	assert.False(t, loading.IsRevealing())

	bot := NewBotMessage("こんにちは", nil, now)
	assert.Equal(t, "", bot.DisplayContent())
	assert.True(t, bot.IsRevealing())

	bot.Revealed = 2
	assert.Equal(t, "こん", bot.DisplayContent())

	bot.Revealed = 5
	bot.RevealComplete = true
	assert.Equal(t, "こんにちは", bot.DisplayContent())
	assert.False(t, bot.IsRevealing())
}

func TestNewRevealedBotMessage(t *testing.T) {
	msg := NewRevealedBotMessage("Hello!", time.Now())
	assert.True(t, msg.RevealComplete)
	assert.Equal(t, 6, msg.Revealed)
	assert.Equal(t, "Hello!", msg.DisplayContent())

	empty := NewRevealedBotMessage("", time.Now())
	assert.False(t, empty.RevealComplete, "empty text never counts as revealed")
}

func TestMessage_VisibleSuggestions(t *testing.T) {
	pending := NewSuggestions([]string{"weekend forecast?"})
	msg := NewBotMessage("Rain is likely.", pending, time.Now())

	assert.Nil(t, msg.VisibleSuggestions(), "hidden until reveal completes")

	msg.SuggestionsVisible = true
	require.Len(t, msg.VisibleSuggestions(), 1)
	assert.Equal(t, "weekend forecast?", msg.VisibleSuggestions()[0].Content)
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("what is the weather tomorrow?", time.Now())
	assert.Equal(t, "what is...", msg.Preview(10))
	assert.Equal(t, msg.Content, msg.Preview(100))
	assert.Equal(t, "wh", msg.Preview(2))
}

func TestSender_DisplayName(t *testing.T) {
	assert.Equal(t, "You", SenderUser.DisplayName())
	assert.Equal(t, "Bot", SenderBot.DisplayName())
	assert.Equal(t, "other", Sender("other").DisplayName())
}

// =============================================================================
// SUGGESTION TESTS
// =============================================================================

func TestNewSuggestions_PreservesOrder(t *testing.T) {
	list := NewSuggestions([]string{"b", "", "a", "c"})
	assert.Equal(t, []string{"b", "a", "c"}, SuggestionContents(list))

	ids := map[string]bool{}
	for _, s := range list {
		assert.NotEmpty(t, s.ID)
		ids[s.ID] = true
	}
	assert.Len(t, ids, 3, "ids are unique")
}

func TestWithout(t *testing.T) {
	list := NewSuggestions([]string{"rain chance?", "weekend forecast?", "rain chance?"})

	tests := []struct {
		name   string
		list   []Suggestion
		chosen string
		want   []string
	}{
		{"removes every match by content", list, "rain chance?", []string{"weekend forecast?"}},
		{"typed text not in list", list, "hello", []string{"rain chance?", "weekend forecast?", "rain chance?"}},
		{"nil list", nil, "anything", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Without(tt.list, tt.chosen)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, SuggestionContents(got))
		})
	}

	// source list is untouched
	assert.Len(t, list, 3)
}

func TestTurn_FromSuggestion(t *testing.T) {
	offered := NewSuggestions([]string{"rain chance?", "weekend forecast?"})
	clicked := Turn{UserText: "rain chance?", Offered: offered}
	typed := Turn{UserText: "something else"}

	assert.True(t, clicked.FromSuggestion())
	assert.False(t, typed.FromSuggestion())
}
