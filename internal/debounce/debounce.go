// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package debounce delays an action until input has been quiet for a fixed
// duration. Every new trigger supersedes the previous one, so only the
// trailing call within the window ever fires.
//
// Two drivers are supported. Event-loop code calls Trigger, schedules its own
// timer message carrying the returned Ticket, and asks Fire when that message
// arrives. Code without an event loop uses Schedule, which owns a real timer.
package debounce

import (
	"sync"
	"time"
)

// Ticket identifies one debounce window. The zero Ticket never fires.
type Ticket uint64

// Debouncer coalesces bursts of triggers into a single firing.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	seq    Ticket
	live   Ticket
	timer  *time.Timer
	closed bool
}

// New creates a Debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the current quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// SetDelay changes the quiet period for subsequent triggers.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

// Trigger opens a new window and returns its ticket. Any earlier ticket is
// now stale. After Close, Trigger returns the zero Ticket.
func (d *Debouncer) Trigger() Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.triggerLocked()
}

func (d *Debouncer) triggerLocked() Ticket {
	d.stopTimerLocked()
	if d.closed {
		d.live = 0
		return 0
	}
	d.seq++
	d.live = d.seq
	return d.live
}

// Fire reports whether t is still the live ticket and consumes it.
// A ticket fires at most once.
func (d *Debouncer) Fire(t Ticket) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t == 0 || d.closed || t != d.live {
		return false
	}
	d.live = 0
	d.timer = nil
	return true
}

// Pending reports whether a window is open.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live != 0
}

// Schedule runs fn once the debouncer has been quiet for delay. Each call
// replaces the previously scheduled fn. fn runs on the timer goroutine.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.triggerLocked()
	if t == 0 {
		return 0
	}
	d.timer = time.AfterFunc(delay, func() {
		if d.Fire(t) {
			fn()
		}
	})
	return t
}

// Stop cancels the open window, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
	d.live = 0
}

// Close stops the debouncer permanently. Outstanding tickets never fire.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopTimerLocked()
	d.live = 0
	d.closed = true
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
