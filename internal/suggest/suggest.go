// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package suggest implements the predictive next-question pipeline.
//
// Keystrokes are debounced; when the input has been quiet for the configured
// delay, exactly one prediction request is issued for the text at that moment.
// Each request carries a generation token and only the most recently issued
// request may update the suggestion list, regardless of the order in which
// responses come back.
//
// The pipeline is owned by a single event loop and is not safe for concurrent
// use. Network calls happen elsewhere; they receive a Request and report back
// through Resolve.
package suggest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/cancel"
	"github.com/jeranaias/hittu-tui/internal/debounce"
	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// Default tuning.
const (
	DefaultDelay     = 500 * time.Millisecond
	DefaultThreshold = 3
)

// Options tunes the pipeline.
type Options struct {
	// Delay is the debounce quiet period.
	Delay time.Duration

	// Threshold is the trimmed length the query must exceed before a
	// prediction is requested. With 3, "abc" does nothing and "abcd" fires.
	Threshold int

	// Enabled turns predictions off entirely when false.
	Enabled bool
}

// DefaultOptions returns the standard pipeline tuning.
func DefaultOptions() Options {
	return Options{
		Delay:     DefaultDelay,
		Threshold: DefaultThreshold,
		Enabled:   true,
	}
}

// Request is a prediction request ready to be sent. Query is the text at
// fire time; Token must be handed back to Resolve with the result.
type Request struct {
	Query string
	Token cancel.Token
}

// Context returns the context the transport should use. It is cancelled when
// the request is superseded or the pipeline is closed.
func (r Request) Context() context.Context {
	return r.Token.Context()
}

// Pipeline tracks the query, the debounce window, the in-flight prediction
// and the suggestions currently on display.
type Pipeline struct {
	opts     Options
	timer    *debounce.Debouncer
	requests *cancel.Source
	logger   *zap.Logger

	query       string
	suggestions []model.Suggestion
	closed      bool
}

// New creates a pipeline. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Threshold < 0 {
		opts.Threshold = DefaultThreshold
	}
	return &Pipeline{
		opts:     opts,
		timer:    debounce.New(opts.Delay),
		requests: cancel.NewSource(),
		logger:   logger.Named("suggest"),
	}
}

// Options returns the current tuning.
func (p *Pipeline) Options() Options {
	return p.opts
}

// SetOptions replaces the tuning. It applies to the next keystroke; an open
// debounce window keeps the delay it was scheduled with.
func (p *Pipeline) SetOptions(opts Options) {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Threshold < 0 {
		opts.Threshold = DefaultThreshold
	}
	p.opts = opts
	p.timer.SetDelay(opts.Delay)
	if !opts.Enabled {
		p.reset()
	}
}

// Delay returns the debounce delay to schedule a returned ticket with.
func (p *Pipeline) Delay() time.Duration {
	return p.opts.Delay
}

// Query returns the most recently recorded input text.
func (p *Pipeline) Query() string {
	return p.query
}

// Suggestions returns the list currently on display. The slice is never
// modified in place, so callers may keep it.
func (p *Pipeline) Suggestions() []model.Suggestion {
	return p.suggestions
}

// OnTyping records the latest input text.
//
// Short input (trimmed length at or below the threshold) clears the timer,
// the displayed suggestions and any in-flight request, and schedules nothing.
// Longer input restarts the debounce window; the caller must arrange for
// Fire to be called with the returned ticket after Delay.
func (p *Pipeline) OnTyping(text string) (debounce.Ticket, bool) {
	if p.closed {
		return 0, false
	}
	p.query = text

	if !p.opts.Enabled || util.RuneLen(util.NormalizeInput(text)) <= p.opts.Threshold {
		p.reset()
		return 0, false
	}

	t := p.timer.Trigger()
	return t, t != 0
}

// Fire is called when a debounce window elapses. For the live ticket it
// supersedes any in-flight request and returns exactly one new Request for
// the current query. Stale tickets return false.
func (p *Pipeline) Fire(t debounce.Ticket) (Request, bool) {
	if p.closed || !p.timer.Fire(t) {
		return Request{}, false
	}

	query := util.NormalizeInput(p.query)
	if util.RuneLen(query) <= p.opts.Threshold {
		return Request{}, false
	}

	tok := p.requests.Next(context.Background())
	p.logger.Debug("prediction requested",
		zap.Uint64("generation", tok.Generation()),
		zap.Int("query_len", util.RuneLen(query)))
	return Request{Query: query, Token: tok}, true
}

// Resolve commits the outcome of a prediction request. It returns false when
// the result was dropped because a newer request has been issued, the request
// was cancelled by a send, or the pipeline was closed.
//
// Failures are never surfaced: they clear the suggestions and are logged.
func (p *Pipeline) Resolve(tok cancel.Token, predictions []string, err error) bool {
	if p.closed || !p.requests.Current(tok) {
		p.logger.Debug("dropping stale prediction",
			zap.Uint64("generation", tok.Generation()))
		return false
	}
	p.requests.Release(tok)

	if err != nil {
		p.logger.Warn("prediction failed",
			zap.Uint64("generation", tok.Generation()),
			zap.Error(err))
		p.suggestions = nil
		return true
	}

	p.suggestions = model.NewSuggestions(predictions)
	return true
}

// SendTurn prepares for a send: the debounce window and in-flight request
// are cancelled and the displayed list is cleared. It returns source minus
// every suggestion whose content equals chosen. A nil source (typed send)
// yields an empty remainder.
func (p *Pipeline) SendTurn(chosen string, source []model.Suggestion) []model.Suggestion {
	p.reset()
	return model.Without(source, chosen)
}

// Click sends a displayed suggestion against the current list.
func (p *Pipeline) Click(s model.Suggestion) []model.Suggestion {
	return p.SendTurn(s.Content, p.suggestions)
}

// Pending reports whether a debounce window or a request is outstanding.
func (p *Pipeline) Pending() bool {
	return p.timer.Pending() || p.requests.Pending()
}

// Reset clears the query, timer, request and suggestions.
func (p *Pipeline) Reset() {
	p.query = ""
	p.reset()
}

// Close tears the pipeline down. Every later call is a no-op and every
// outstanding ticket or token is stale.
func (p *Pipeline) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.timer.Close()
	p.requests.Close()
	p.suggestions = nil
}

// Closed reports whether Close has been called.
func (p *Pipeline) Closed() bool {
	return p.closed
}

func (p *Pipeline) reset() {
	p.timer.Stop()
	p.requests.Invalidate()
	p.suggestions = nil
}
