// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/storage"
	"github.com/jeranaias/hittu-tui/internal/suggest"
	"github.com/jeranaias/hittu-tui/internal/turn"
	"github.com/jeranaias/hittu-tui/internal/ui/components"
)

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m.shutdown()

	case key.Matches(msg, m.keyMap.Dismiss):
		switch {
		case m.turns.DismissError(0):
		case m.chips.Len() > 0:
			m.chips = m.chips.Deselect()
		default:
			m.status = components.Banner{}
		}
		return nil

	case key.Matches(msg, m.keyMap.Clear):
		m.clearConversation()
		return nil

	case key.Matches(msg, m.keyMap.Save):
		return m.saveTranscript()

	case key.Matches(msg, m.keyMap.NextChip):
		m.chips = m.chips.Next()
		return nil

	case key.Matches(msg, m.keyMap.PrevChip):
		m.chips = m.chips.Prev()
		return nil

	case key.Matches(msg, m.keyMap.PickChip):
		if s, ok := m.chips.At(chipShortcut(msg.String())); ok {
			return m.click(s)
		}
		return nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return nil

	case key.Matches(msg, m.keyMap.Submit):
		if s, ok := m.chips.Selected(); ok {
			return m.click(s)
		}
		return m.submit()
	}

	if !m.turns.CanSend() {
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return cmd
	}
	m.chips = m.chips.Deselect()
	return tea.Batch(cmd, m.onTyping(m.input.Value()))
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// onTyping feeds the pipeline and schedules the debounce window it asks for.
func (m *Model) onTyping(text string) tea.Cmd {
	ticket, ok := m.pipeline.OnTyping(text)
	if !ok {
		return nil
	}
	return m.schedule(m.pipeline.Delay(), debounceFiredMsg{ticket: ticket})
}

func (m *Model) handleDebounceFired(msg debounceFiredMsg) tea.Cmd {
	req, ok := m.pipeline.Fire(msg.ticket)
	if !ok {
		return nil
	}
	return predictCmd(m.svc, req)
}

// chipList returns the full list the active chips were taken from, which is
// the source a click's remainder is computed against.
func (m *Model) chipList() []model.Suggestion {
	switch m.chipSource {
	case chipsInput:
		return m.pipeline.Suggestions()
	case chipsFollowUp:
		if msg, ok := m.turns.Message(m.chipMessageID); ok {
			return msg.Suggestions
		}
	}
	return nil
}

// syncChips points the chip row at input predictions when there are any,
// otherwise at the visible follow-ups of the newest bot reply.
func (m *Model) syncChips() {
	source, items, msgID := chipsNone, []model.Suggestion(nil), ""
	if preds := m.pipeline.Suggestions(); len(preds) > 0 {
		source, items = chipsInput, preds
	} else if last, ok := m.turns.LastBot(); ok && len(last.VisibleSuggestions()) > 0 {
		source, items, msgID = chipsFollowUp, last.VisibleSuggestions(), last.ID
	}

	if source != m.chipSource || msgID != m.chipMessageID {
		m.chips = components.NewChips(items)
	} else {
		m.chips = m.chips.SetItems(items)
	}
	m.chipSource, m.chipMessageID = source, msgID
}

// =============================================================================
// TURNS
// =============================================================================

func (m *Model) submit() tea.Cmd {
	t, err := m.turns.Send(m.input.Value(), nil)
	if err != nil {
		m.logSendRejected(err)
		return nil
	}
	m.input.Reset()
	return m.startTurn(t)
}

func (m *Model) click(s model.Suggestion) tea.Cmd {
	t, err := m.turns.Click(s, m.chipList())
	if err != nil {
		m.logSendRejected(err)
		return nil
	}
	m.input.Reset()
	return m.startTurn(t)
}

func (m *Model) logSendRejected(err error) {
	if errors.Is(err, turn.ErrEmptyMessage) {
		return
	}
	m.logger.Debug("send rejected", zap.Error(err))
}

// startTurn issues the chat request for t and starts the typing spinner.
func (m *Model) startTurn(t model.Turn) tea.Cmd {
	tok := m.chatReqs.Next(context.Background())
	return tea.Batch(sendChatCmd(m.svc, t, tok), m.spinner.Tick)
}

func (m *Model) handleChatResult(msg chatResultMsg) tea.Cmd {
	if !m.chatReqs.Current(msg.token) {
		m.logger.Debug("dropping stale chat result", zap.String("turn", msg.turnID))
		return nil
	}
	m.chatReqs.Release(msg.token)

	if msg.err != nil {
		gen, ok := m.turns.ApplyChatFailure(msg.turnID, msg.err)
		if !ok || m.errorDisplay <= 0 {
			return nil
		}
		return m.schedule(m.errorDisplay, errorExpiredMsg{gen: gen})
	}

	bot, ok := m.turns.ApplyBotReply(msg.turnID, msg.reply)
	if !ok {
		return nil
	}
	return m.startReveal(bot)
}

// =============================================================================
// REVEAL
// =============================================================================

// startReveal points the reveal engine at a new bot reply. A reply still
// being revealed is finished at once so its follow-ups are not stranded.
func (m *Model) startReveal(bot model.Message) tea.Cmd {
	if snap := m.reveal.Snapshot(); snap.ID != "" && snap.ID != bot.ID && !snap.IsComplete {
		m.turns.ApplyRevealComplete(snap.ID)
	}

	seq, start := m.reveal.Attach(bot.ID, bot.Content)
	if !start {
		return nil
	}
	return m.schedule(m.revealInterval, revealTickMsg{seq: seq})
}

func (m *Model) handleRevealTick(msg revealTickMsg) tea.Cmd {
	step := m.reveal.Tick(msg.seq)
	if step.Stale {
		return nil
	}

	m.turns.ApplyRevealProgress(step.ID, step.Revealed)
	if step.Completed {
		m.turns.ApplyRevealComplete(step.ID)
	}
	if !step.Continue {
		return nil
	}
	return m.schedule(m.revealInterval, revealTickMsg{seq: msg.seq})
}

// =============================================================================
// CONVERSATION ACTIONS
// =============================================================================

func (m *Model) clearConversation() {
	m.chatReqs.Invalidate()
	m.turns.Clear()
	m.reveal.Detach()
	m.input.Reset()
	m.markdown.reset()
}

func (m *Model) saveTranscript() tea.Cmd {
	if m.store == nil {
		return m.setStatus("History is disabled")
	}
	if !hasUserMessages(m.turns.Messages()) {
		return m.setStatus("Nothing to save yet")
	}
	return saveTranscriptCmd(m.store, m.turns.Messages())
}

func (m *Model) handleTranscriptSaved(msg transcriptSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Error("failed to save transcript", zap.Error(msg.err))
		return m.setStatus("Could not save transcript")
	}
	m.logger.Info("transcript saved", zap.String("id", msg.id))
	return m.setStatus(fmt.Sprintf("Transcript saved as %s", shortID(msg.id)))
}

func (m *Model) handleConfigReloaded(msg ConfigReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.logger.Warn("config reload failed", zap.Error(msg.Err))
		return m.setStatus("Config reload failed; keeping current settings")
	}

	cfg := msg.Config
	m.cfg = cfg
	m.pipeline.SetOptions(suggest.Options{
		Delay:     cfg.DebounceDelay(),
		Threshold: cfg.Suggest.Threshold,
		Enabled:   cfg.Suggest.Enabled,
	})
	m.revealInterval = cfg.RevealInterval()
	m.errorDisplay = cfg.ErrorDisplay()
	m.input.CharLimit = cfg.UI.MaxInputChars
	m.input.Placeholder = cfg.UI.Placeholder
	m.markdown.reset()

	m.logger.Info("config reloaded",
		zap.Duration("debounce", cfg.DebounceDelay()),
		zap.Int("threshold", cfg.Suggest.Threshold),
		zap.Duration("reveal_tick", cfg.RevealInterval()))
	return m.setStatus("Config reloaded")
}

// setStatus shows a transient notice.
func (m *Model) setStatus(text string) tea.Cmd {
	m.statusGen++
	m.status = components.Banner{Kind: components.BannerStatus, Message: text, Gen: m.statusGen}
	return m.schedule(components.StatusBannerDuration, statusExpiredMsg{gen: m.statusGen})
}

// shutdown tears everything down and quits. An auto-save, when enabled,
// happens first and synchronously.
func (m *Model) shutdown() tea.Cmd {
	if m.quitting {
		return nil
	}
	m.quitting = true

	if m.cfg.History.AutoSave && m.store != nil && hasUserMessages(m.turns.Messages()) {
		id, err := m.store.Save(storage.NewTranscript(m.turns.Messages()))
		if err != nil {
			m.logger.Error("auto-save failed", zap.Error(err))
		} else {
			m.logger.Info("transcript auto-saved", zap.String("id", id))
		}
	}

	m.Close()
	return tea.Quit
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.theme.SetSize(msg.Width, msg.Height)

	const promptLen = 2
	m.input.Width = max(m.width-4-promptLen-1, 10)
}

// sync brings derived state in line after every message: the chip row, the
// input's enabled state and the viewport.
func (m *Model) sync(follow bool) tea.Cmd {
	m.syncChips()

	var cmd tea.Cmd
	if m.turns.CanSend() {
		if !m.input.Focused() {
			cmd = m.input.Focus()
		}
	} else if m.input.Focused() {
		m.input.Blur()
	}

	if !m.ready {
		return cmd
	}

	headerHeight := lipgloss.Height(m.renderHeader())
	bottomHeight := lipgloss.Height(m.renderBottom())
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-bottomHeight, 1)
	m.viewport.SetContent(m.renderMessages())
	if follow {
		m.viewport.GotoBottom()
	}
	return cmd
}

func hasUserMessages(msgs []model.Message) bool {
	for _, msg := range msgs {
		if msg.IsUser() {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
