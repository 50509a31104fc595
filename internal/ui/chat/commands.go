// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/hittu-tui/internal/api"
	"github.com/jeranaias/hittu-tui/internal/cancel"
	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/storage"
	"github.com/jeranaias/hittu-tui/internal/suggest"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// scheduler delivers msg after d. The model schedules every timer through
// one so tests can observe timers without sleeping.
type scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

func tickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// predictCmd issues a prediction request. The request's context is cancelled
// when a newer request supersedes it.
func predictCmd(svc api.Service, req suggest.Request) tea.Cmd {
	return func() tea.Msg {
		preds, err := svc.Predict(req.Context(), req.Query)
		return predictionResultMsg{token: req.Token, predictions: preds, err: err}
	}
}

// sendChatCmd issues the chat request for a turn.
func sendChatCmd(svc api.Service, t model.Turn, tok cancel.Token) tea.Cmd {
	return func() tea.Msg {
		reply, err := svc.SendMessage(tok.Context(), t.UserText)
		return chatResultMsg{turnID: t.ID, token: tok, reply: reply, err: err}
	}
}

// saveTranscriptCmd writes the conversation to the transcript store.
func saveTranscriptCmd(store *storage.TranscriptStore, msgs []model.Message) tea.Cmd {
	return func() tea.Msg {
		id, err := store.Save(storage.NewTranscript(msgs))
		return transcriptSavedMsg{id: id, err: err}
	}
}
