// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/api"
	"github.com/jeranaias/hittu-tui/internal/cancel"
	"github.com/jeranaias/hittu-tui/internal/config"
	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/reveal"
	"github.com/jeranaias/hittu-tui/internal/storage"
	"github.com/jeranaias/hittu-tui/internal/suggest"
	"github.com/jeranaias/hittu-tui/internal/turn"
	"github.com/jeranaias/hittu-tui/internal/ui/components"
	"github.com/jeranaias/hittu-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// chipSource says which list the active chip row was taken from.
type chipSource int

const (
	chipsNone     chipSource = iota
	chipsInput               // predictions for the text being typed
	chipsFollowUp            // follow-ups of the newest bot reply
)

// Options configures a Model.
type Options struct {
	Config  *config.Config
	Service api.Service
	// Store receives transcripts on Ctrl+S. Nil disables saving.
	Store  *storage.TranscriptStore
	Logger *zap.Logger
	Theme  *styles.Theme
	Clock  func() time.Time
	// Backend is shown in the header, e.g. "mock" or the API host.
	Backend string
	// Restore seeds the history from a saved transcript instead of the
	// welcome message.
	Restore []model.Message
}

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	cfg     *config.Config
	theme   *styles.Theme
	logger  *zap.Logger
	now     func() time.Time
	backend string

	svc   api.Service
	store *storage.TranscriptStore

	pipeline *suggest.Pipeline
	turns    *turn.Manager
	reveal   *reveal.Engine
	chatReqs *cancel.Source

	revealInterval time.Duration
	errorDisplay   time.Duration
	schedule       scheduler

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	chips         components.Chips
	chipSource    chipSource
	chipMessageID string

	status    components.Banner
	statusGen uint64

	markdown *markdownCache

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates the chat model and seeds the welcome message.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	svc := opts.Service
	if svc == nil {
		svc = api.NewMock(api.MockOptions{}, logger)
	}

	pipeline := suggest.New(suggest.Options{
		Delay:     cfg.DebounceDelay(),
		Threshold: cfg.Suggest.Threshold,
		Enabled:   cfg.Suggest.Enabled,
	}, logger)
	turns := turn.New(pipeline, turn.WithClock(now), turn.WithLogger(logger))
	if len(opts.Restore) > 0 {
		turns.Restore(opts.Restore)
	} else {
		turns.Welcome(cfg.UI.WelcomeMessage)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = cfg.UI.Placeholder
	ti.CharLimit = cfg.UI.MaxInputChars
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = styles.TypingSpinner
	sp.Style = theme.Loading

	return Model{
		cfg:            cfg,
		theme:          theme,
		logger:         logger.Named("chat"),
		now:            now,
		backend:        opts.Backend,
		svc:            svc,
		store:          opts.Store,
		pipeline:       pipeline,
		turns:          turns,
		reveal:         reveal.New(),
		chatReqs:       cancel.NewSource(),
		revealInterval: cfg.RevealInterval(),
		errorDisplay:   cfg.ErrorDisplay(),
		schedule:       tickScheduler,
		viewport:       vp,
		input:          ti,
		spinner:        sp,
		keyMap:         DefaultKeyMap(),
		chips:          components.NewChips(nil),
		markdown:       newMarkdownCache(theme.IsDark),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	follow := true

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)

	case tea.KeyMsg:
		if key := msg.String(); key == "pgup" || key == "pgdown" {
			follow = false
		}
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		follow = false
		m.viewport, cmd = m.viewport.Update(msg)

	case debounceFiredMsg:
		cmd = m.handleDebounceFired(msg)

	case predictionResultMsg:
		m.pipeline.Resolve(msg.token, msg.predictions, msg.err)

	case chatResultMsg:
		cmd = m.handleChatResult(msg)

	case revealTickMsg:
		cmd = m.handleRevealTick(msg)

	case errorExpiredMsg:
		m.turns.DismissError(msg.gen)

	case statusExpiredMsg:
		if msg.gen == m.statusGen {
			m.status = components.Banner{}
		}

	case transcriptSavedMsg:
		cmd = m.handleTranscriptSaved(msg)

	case ConfigReloadedMsg:
		cmd = m.handleConfigReloaded(msg)

	case spinner.TickMsg:
		if m.turns.IsSending() {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	default:
		follow = false
	}

	if m.quitting {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.sync(follow))
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns the current conversation.
func (m Model) Messages() []model.Message {
	return m.turns.Messages()
}

// Close tears down the pipeline, the turn manager, the reveal engine and any
// chat request in flight. Results that arrive later are ignored. Safe to call
// more than once.
func (m Model) Close() {
	m.chatReqs.Close()
	m.turns.Close()
	m.reveal.Close()
}
