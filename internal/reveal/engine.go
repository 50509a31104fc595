// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal implements the typewriter effect for bot replies.
//
// An Engine tracks one message at a time. Attach starts (or extends) a reveal
// and returns a tick sequence; the driver delivers ticks carrying that
// sequence at a fixed cadence and each tick discloses one more character.
// Attaching a different message bumps the sequence, so ticks still queued for
// the old message are recognised as stale and dropped instead of writing to a
// superseded target.
//
// Engine is driven either by a Bubble Tea loop (tea.Tick carrying the
// sequence) or by a Runner, which owns a ticker goroutine.
package reveal

import (
	"strings"
	"sync"
	"time"
)

// DefaultInterval is one character every 50ms.
const DefaultInterval = 50 * time.Millisecond

// State is the engine's position in the reveal state machine.
type State int

const (
	// StateIdle means there is nothing to reveal.
	StateIdle State = iota
	// StateRevealing means ticks are disclosing characters.
	StateRevealing
	// StateComplete means the whole text has been shown.
	StateComplete
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRevealing:
		return "revealing"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Snapshot is the reveal state of the tracked message.
type Snapshot struct {
	ID         string
	FullText   string
	Revealed   int
	IsComplete bool
	State      State
}

// Prefix returns the revealed part of the text.
func (s Snapshot) Prefix() string {
	return prefix([]rune(s.FullText), s.Revealed)
}

// Step is the outcome of one tick.
type Step struct {
	ID       string
	Prefix   string
	Revealed int
	Total    int

	// Stale is set when the tick belonged to a superseded sequence.
	// Nothing changed and the driver must not schedule another tick.
	Stale bool

	// Completed is set on the single tick that finished the text.
	Completed bool

	// Continue tells the driver to schedule the next tick.
	Continue bool
}

// Option configures an Engine.
type Option func(*Engine)

// OnProgress registers a callback receiving each newly revealed prefix.
func OnProgress(fn func(id, prefix string)) Option {
	return func(e *Engine) { e.onProgress = fn }
}

// OnScroll registers a callback invoked after every character. Line-mode
// callers flush buffered output here; the TUI follows the reveal through its
// viewport instead.
func OnScroll(fn func()) Option {
	return func(e *Engine) { e.onScroll = fn }
}

// OnComplete registers a callback invoked once per message when the whole
// text has been revealed. Later growth of the same message does not fire
// it again.
func OnComplete(fn func(id string)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// Engine reveals one message at a time. It is safe for concurrent use;
// callbacks run on the caller of Tick, after the engine's lock is released.
type Engine struct {
	mu       sync.Mutex
	id       string
	text     []rune
	revealed int
	notified bool // OnComplete already fired for id
	ticking  bool
	seq      uint64
	closed   bool

	onProgress func(id, prefix string)
	onScroll   func()
	onComplete func(id string)
}

// New creates an idle Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attach points the engine at a message.
//
// A new id resets the reveal to zero and returns a fresh sequence; ticks for
// the previous message become stale. The same id with longer text extends
// the target and keeps the current progress. The same id with text that
// does not extend the current target is ignored.
//
// start reports whether the caller must begin delivering ticks for seq. It
// is false when ticks are already running for seq or there is nothing to
// reveal.
func (e *Engine) Attach(id, fullText string) (seq uint64, start bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, false
	}

	if id != e.id {
		e.seq++
		e.id = id
		e.text = []rune(fullText)
		e.revealed = 0
		e.notified = false
		e.ticking = len(e.text) > 0
		return e.seq, e.ticking
	}

	if len([]rune(fullText)) <= len(e.text) || !strings.HasPrefix(fullText, string(e.text)) {
		return e.seq, false
	}

	e.text = []rune(fullText)
	if e.ticking {
		return e.seq, false
	}
	e.seq++
	e.ticking = true
	return e.seq, true
}

// Tick advances the reveal by one character if seq is current.
func (e *Engine) Tick(seq uint64) Step {
	e.mu.Lock()
	if e.closed || seq != e.seq || !e.ticking {
		e.mu.Unlock()
		return Step{Stale: true}
	}

	var advanced bool
	if e.revealed < len(e.text) {
		e.revealed++
		advanced = true
	}

	step := Step{
		ID:       e.id,
		Prefix:   prefix(e.text, e.revealed),
		Revealed: e.revealed,
		Total:    len(e.text),
	}
	if e.doneLocked() && !e.notified {
		e.notified = true
		step.Completed = true
	}
	if e.revealed >= len(e.text) {
		e.ticking = false
	}
	step.Continue = e.ticking

	onProgress, onScroll, onComplete := e.onProgress, e.onScroll, e.onComplete
	e.mu.Unlock()

	if advanced {
		if onProgress != nil {
			onProgress(step.ID, step.Prefix)
		}
		if onScroll != nil {
			onScroll()
		}
	}
	if step.Completed && onComplete != nil {
		onComplete(step.ID)
	}
	return step
}

// Snapshot returns the current reveal state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		ID:         e.id,
		FullText:   string(e.text),
		Revealed:   e.revealed,
		IsComplete: e.doneLocked(),
		State:      e.stateLocked(),
	}
}

// State returns the engine's state machine position.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Seq returns the current tick sequence.
func (e *Engine) Seq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

// Detach forgets the tracked message. Pending ticks become stale.
func (e *Engine) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.id = ""
	e.text = nil
	e.revealed = 0
	e.notified = false
	e.ticking = false
}

// Close stops the engine for good. Every later tick is stale and Attach
// does nothing.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.ticking = false
	e.seq++
}

func (e *Engine) stateLocked() State {
	switch {
	case e.ticking:
		return StateRevealing
	case e.doneLocked():
		return StateComplete
	default:
		return StateIdle
	}
}

// doneLocked reports whether the whole current text is shown. Growth after
// completion makes it false again until the new tail is revealed.
func (e *Engine) doneLocked() bool {
	return len(e.text) > 0 && e.revealed == len(e.text)
}

func prefix(text []rune, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(text) {
		return string(text)
	}
	return string(text[:n])
}
