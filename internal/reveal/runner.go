// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"context"
	"sync"
	"time"
)

// Runner drives an Engine from a ticker goroutine for callers that have no
// event loop of their own. At most one tick goroutine is alive at a time:
// starting a reveal for a new message stops and joins the previous one first.
type Runner struct {
	engine   *Engine
	interval time.Duration

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// NewRunner creates a Runner ticking engine every interval.
func NewRunner(engine *Engine, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		engine:   engine,
		interval: interval,
	}
}

// Reveal attaches text to the engine and makes sure ticks are flowing.
// It returns a channel closed when the reveal loop for this text exits.
func (r *Runner) Reveal(id, text string) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return closedChan()
	}

	seq, start := r.engine.Attach(id, text)
	if !start {
		if r.done != nil {
			return r.done
		}
		return closedChan()
	}

	r.stopLocked()
	stop := make(chan struct{})
	done := make(chan struct{})
	r.stop, r.done = stop, done
	go r.loop(seq, stop, done)
	return done
}

// Wait blocks until the current reveal finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the tick goroutine, waits for it to exit and closes the engine.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.stopLocked()
	r.engine.Close()
}

func (r *Runner) loop(seq uint64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			step := r.engine.Tick(seq)
			if step.Stale || !step.Continue {
				return
			}
		}
	}
}

func (r *Runner) stopLocked() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.stop = nil
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
