// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn owns the conversation state: the message list, the turn in
// flight and the user-facing error.
//
// All changes go through the reducer methods on Manager. Each one validates
// the transition and replaces the message slice wholesale, so a slice
// returned by Messages is never modified afterwards.
package turn

import (
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/suggest"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger.Named("turn")
		}
	}
}

// Manager coordinates sends, replies and failures for one conversation.
// It is owned by a single event loop and is not safe for concurrent use.
type Manager struct {
	pipeline *suggest.Pipeline
	logger   *zap.Logger
	now      func() time.Time

	messages []model.Message
	inFlight *model.Turn

	errText string
	errGen  uint64

	closed bool
}

// New creates a Manager that routes suggestion bookkeeping through pipeline.
func New(pipeline *suggest.Pipeline, opts ...Option) *Manager {
	m := &Manager{
		pipeline: pipeline,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// =============================================================================
// QUERIES
// =============================================================================

// Messages returns the current message list.
func (m *Manager) Messages() []model.Message {
	return m.messages
}

// Message returns the message with the given ID.
func (m *Manager) Message(id string) (model.Message, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return model.Message{}, false
	}
	return m.messages[i], true
}

// LastBot returns the newest bot message that is not a loading placeholder.
func (m *Manager) LastBot() (model.Message, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.IsBot() && !msg.IsLoading {
			return msg, true
		}
	}
	return model.Message{}, false
}

// InFlight returns the turn awaiting its reply, if any.
func (m *Manager) InFlight() (model.Turn, bool) {
	if m.inFlight == nil {
		return model.Turn{}, false
	}
	return *m.inFlight, true
}

// IsSending reports whether a reply is pending.
func (m *Manager) IsSending() bool {
	return m.inFlight != nil
}

// Error returns the active user-facing error and its generation.
// An empty string means no error is shown.
func (m *Manager) Error() (string, uint64) {
	return m.errText, m.errGen
}

// CanSend reports whether a new send would be accepted.
func (m *Manager) CanSend() bool {
	return !m.closed && m.inFlight == nil && m.errText == ""
}

// Closed reports whether Close has been called.
func (m *Manager) Closed() bool {
	return m.closed
}

// =============================================================================
// SENDING
// =============================================================================

// Send starts a turn for text. source is the suggestion list the text was
// picked from, or nil for typed input.
//
// The pending prediction timer and request are cancelled and the displayed
// suggestions cleared before any state changes. The user's message and a
// loading placeholder are appended; the caller issues the chat request for
// the returned Turn and reports back via ApplyBotReply or ApplyChatFailure.
func (m *Manager) Send(text string, source []model.Suggestion) (model.Turn, error) {
	if m.closed {
		return model.Turn{}, ErrClosed
	}
	text = util.NormalizeInput(text)
	if text == "" {
		return model.Turn{}, ErrEmptyMessage
	}
	if m.inFlight != nil {
		return model.Turn{}, ErrTurnInFlight
	}
	if m.errText != "" {
		return model.Turn{}, ErrInputBlocked
	}

	remaining := m.pipeline.SendTurn(text, source)

	now := m.now()
	user := model.NewUserMessage(text, now)
	placeholder := model.NewLoadingMessage(now)

	t := model.Turn{
		ID:            model.NewID(),
		UserText:      text,
		SentAt:        now,
		Offered:       append([]model.Suggestion(nil), source...),
		Remaining:     remaining,
		UserMessageID: user.ID,
		BotMessageID:  placeholder.ID,
	}
	m.inFlight = &t

	m.ApplyUserMessage(user)
	m.messages = appendMessage(m.messages, placeholder)

	m.logger.Debug("turn started",
		zap.String("turn", t.ID),
		zap.Int("remaining", len(remaining)),
		zap.Bool("from_suggestion", source != nil))
	return t, nil
}

// Click sends a suggestion picked from list. It is a no-op while a turn is
// in flight.
func (m *Manager) Click(s model.Suggestion, list []model.Suggestion) (model.Turn, error) {
	if m.inFlight != nil {
		return model.Turn{}, ErrTurnInFlight
	}
	if list == nil {
		list = []model.Suggestion{}
	}
	return m.Send(s.Content, list)
}

// =============================================================================
// REDUCERS
// =============================================================================

// ApplyUserMessage appends a user message.
func (m *Manager) ApplyUserMessage(msg model.Message) bool {
	if m.closed || !msg.IsUser() {
		return false
	}
	m.messages = appendMessage(m.messages, msg)
	return true
}

// ApplyBotReply completes the turn: its loading placeholder is replaced by a
// bot message that starts unrevealed and carries the turn's remaining
// suggestions, hidden until ApplyRevealComplete.
func (m *Manager) ApplyBotReply(turnID, reply string) (model.Message, bool) {
	t, ok := m.takeTurn(turnID)
	if !ok {
		return model.Message{}, false
	}

	msg := model.NewBotMessage(reply, t.Remaining, m.now())
	i := m.indexOf(t.BotMessageID)
	if i < 0 {
		m.messages = appendMessage(m.messages, msg)
	} else {
		m.messages = replaceMessage(m.messages, i, msg)
	}
	return msg, true
}

// ApplySuggestions replaces the follow-ups attached to a bot message. They
// become visible only once the message is fully revealed.
func (m *Manager) ApplySuggestions(messageID string, list []model.Suggestion) bool {
	i := m.indexOf(messageID)
	if m.closed || i < 0 || !m.messages[i].IsBot() {
		return false
	}
	msg := m.messages[i]
	msg.Suggestions = list
	msg.SuggestionsVisible = msg.RevealComplete && len(list) > 0
	m.messages = replaceMessage(m.messages, i, msg)
	return true
}

// ApplyChatFailure ends the turn with an error. The placeholder is removed,
// the user's message stays, and the error banner is raised. The returned
// generation identifies this error for the auto-clear timer.
func (m *Manager) ApplyChatFailure(turnID string, err error) (uint64, bool) {
	t, ok := m.takeTurn(turnID)
	if !ok {
		return 0, false
	}

	if i := m.indexOf(t.BotMessageID); i >= 0 {
		m.messages = removeMessage(m.messages, i)
	}

	m.errGen++
	m.errText = ErrorText(err)
	m.logger.Error("chat request failed",
		zap.String("turn", t.ID),
		zap.Error(err))
	return m.errGen, true
}

// ApplyRevealProgress records how many characters of a bot message are
// visible. The count never decreases and never exceeds the text length.
func (m *Manager) ApplyRevealProgress(messageID string, revealed int) bool {
	i := m.indexOf(messageID)
	if m.closed || i < 0 {
		return false
	}
	msg := m.messages[i]
	if revealed > util.RuneLen(msg.Content) {
		revealed = util.RuneLen(msg.Content)
	}
	if revealed <= msg.Revealed {
		return false
	}
	msg.Revealed = revealed
	m.messages = replaceMessage(m.messages, i, msg)
	return true
}

// ApplyRevealComplete marks a bot message fully revealed and makes its
// follow-up suggestions visible. It applies once per message.
func (m *Manager) ApplyRevealComplete(messageID string) bool {
	i := m.indexOf(messageID)
	if m.closed || i < 0 {
		return false
	}
	msg := m.messages[i]
	if msg.RevealComplete || msg.Content == "" {
		return false
	}
	msg.Revealed = util.RuneLen(msg.Content)
	msg.RevealComplete = true
	msg.SuggestionsVisible = len(msg.Suggestions) > 0
	m.messages = replaceMessage(m.messages, i, msg)
	return true
}

// DismissError clears the error banner. gen 0 dismisses whatever is shown;
// any other value only clears that exact error, so an expired timer for an
// older error leaves a newer one in place.
func (m *Manager) DismissError(gen uint64) bool {
	if m.errText == "" || (gen != 0 && gen != m.errGen) {
		return false
	}
	m.errText = ""
	return true
}

// Clear removes every message and abandons the turn in flight.
func (m *Manager) Clear() {
	if m.closed {
		return
	}
	m.messages = nil
	m.inFlight = nil
	m.errText = ""
	m.pipeline.Reset()
}

// Welcome appends a fully revealed bot greeting.
func (m *Manager) Welcome(text string) {
	if m.closed || text == "" {
		return
	}
	m.messages = appendMessage(m.messages, model.NewRevealedBotMessage(text, m.now()))
}

// Restore replaces the history with previously saved messages.
func (m *Manager) Restore(msgs []model.Message) {
	if m.closed {
		return
	}
	restored := make([]model.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsLoading {
			continue
		}
		if msg.IsBot() {
			msg.Revealed = util.RuneLen(msg.Content)
			msg.RevealComplete = msg.Content != ""
			msg.SuggestionsVisible = msg.RevealComplete && len(msg.Suggestions) > 0
		}
		restored = append(restored, msg)
	}
	m.messages = restored
	m.inFlight = nil
}

// Close tears the manager down. Reducers called afterwards do nothing.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.inFlight = nil
	m.pipeline.Close()
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Manager) takeTurn(turnID string) (model.Turn, bool) {
	if m.closed || m.inFlight == nil || m.inFlight.ID != turnID {
		m.logger.Debug("ignoring result for stale turn", zap.String("turn", turnID))
		return model.Turn{}, false
	}
	t := *m.inFlight
	m.inFlight = nil
	return t, true
}

func (m *Manager) indexOf(id string) int {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func appendMessage(list []model.Message, msg model.Message) []model.Message {
	out := make([]model.Message, len(list), len(list)+1)
	copy(out, list)
	return append(out, msg)
}

func replaceMessage(list []model.Message, i int, msg model.Message) []model.Message {
	out := make([]model.Message, len(list))
	copy(out, list)
	out[i] = msg
	return out
}

func removeMessage(list []model.Message, i int) []model.Message {
	out := make([]model.Message, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
