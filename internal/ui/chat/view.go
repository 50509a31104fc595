// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/ui/components"
	"github.com/jeranaias/hittu-tui/internal/ui/styles"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderBottom(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	h := components.NewHeader(m.theme, m.cfg.UI.Title)
	h.SetWidth(m.width)
	h.Backend = m.backend
	h.Typing = m.turns.IsSending()
	return h.View()
}

// =============================================================================
// MESSAGES
// =============================================================================

func (m Model) renderMessages() string {
	msgs := m.turns.Messages()
	lastBot, _ := m.turns.LastBot()

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsUser() {
			blocks = append(blocks, m.renderUserMessage(msg))
			continue
		}
		blocks = append(blocks, m.renderBotMessage(msg, msg.ID == lastBot.ID))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderUserMessage(msg model.Message) string {
	bubble := m.bubble(m.theme.UserBubble, msg.Content)
	meta := m.theme.Timestamp.Render(util.FormatMessageTime(msg.Timestamp, m.now()))
	block := lipgloss.JoinVertical(lipgloss.Right, bubble, meta)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
}

func (m Model) renderBotMessage(msg model.Message, newest bool) string {
	header := m.theme.BotAvatar.Render("◆ "+msg.Sender.DisplayName()) + "  " +
		m.theme.Timestamp.Render(util.FormatMessageTime(msg.Timestamp, m.now()))

	var body string
	switch {
	case msg.IsLoading:
		body = m.spinner.View() + m.theme.Loading.Render(" typing")
	case msg.IsRevealing():
		body = m.bubble(m.theme.BotBubble, msg.RevealedPrefix()+m.theme.Cursor.Render(styles.RevealCursor))
	case m.cfg.UI.RenderMarkdown && msg.Content != "":
		md := m.markdown.render(msg.ID, msg.Content, m.bubbleMax()-2)
		body = m.bubble(m.theme.BotBubble, md)
	default:
		body = m.bubble(m.theme.BotBubble, msg.DisplayContent())
	}

	parts := []string{header, body}
	if newest {
		if chips := m.followUpChips(msg); chips != "" {
			parts = append(parts, chips)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// followUpChips renders the visible follow-ups of msg, highlighting the
// selection when they are the active chip row.
func (m Model) followUpChips(msg model.Message) string {
	visible := msg.VisibleSuggestions()
	if len(visible) == 0 {
		return ""
	}
	if m.chipSource == chipsFollowUp && m.chipMessageID == msg.ID {
		return m.chips.View(m.theme, "", m.bubbleMax(), true)
	}
	return components.NewChips(visible).View(m.theme, "", m.bubbleMax(), false)
}

func (m Model) bubbleMax() int {
	return max(m.theme.BubbleWidth(), 12)
}

// bubble renders text in style, as narrow as the text allows.
func (m Model) bubble(style lipgloss.Style, text string) string {
	if text == "" {
		text = " "
	}
	const padding = 2
	width := min(lipgloss.Width(text)+padding, m.bubbleMax()-padding)
	return style.Width(width).Render(text)
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderBottom renders everything below the message list.
func (m Model) renderBottom() string {
	var parts []string

	if text, gen := m.turns.Error(); text != "" {
		banner := components.Banner{Kind: components.BannerError, Message: text, Gen: gen}
		parts = append(parts, banner.View(m.theme, m.width))
	} else if m.status.Visible() {
		parts = append(parts, m.status.View(m.theme, m.width))
	}

	if m.chipSource == chipsInput {
		parts = append(parts, m.chips.View(m.theme, "Suggestions ", m.width, true))
	}

	box := m.theme.InputContainer
	if !m.turns.CanSend() {
		box = m.theme.InputDisabled
	}
	parts = append(parts, box.Width(max(m.width-2, 1)).Render(m.input.View()))
	parts = append(parts, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderFooter() string {
	bar := components.NewStatusBar(m.theme, m.keyMap.ShortHelp())
	bar.SetWidth(m.width)
	bar.Counter = components.Counter(m.theme,
		util.RuneLen(m.input.Value()), m.cfg.UI.MaxInputChars, m.cfg.UI.CounterThreshold)
	return bar.View()
}
