// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cancel issues generation tokens for asynchronous requests.
//
// Each Token carries a strictly increasing generation and a context that is
// cancelled as soon as the token is superseded. Results are committed only
// when Source.Current still recognises the token that produced them; stale
// results are dropped without error.
package cancel

import (
	"context"
	"sync"
)

// Token identifies one issued request.
type Token struct {
	gen uint64
	ctx context.Context
}

// Generation returns the token's generation. Zero means "no request".
func (t Token) Generation() uint64 {
	return t.gen
}

// IsZero reports whether the token was never issued.
func (t Token) IsZero() bool {
	return t.gen == 0
}

// Context returns the context that is cancelled when the token goes stale.
// The zero Token returns an already-cancelled context.
func (t Token) Context() context.Context {
	if t.ctx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return t.ctx
}

// Source hands out tokens. Only the most recently issued token is ever
// current. A Source is safe for concurrent use: requests run on other
// goroutines and may cancel themselves via the token context while the
// owner issues or checks tokens.
type Source struct {
	mu       sync.Mutex
	gen      uint64
	active   uint64
	cancelFn context.CancelFunc
	closed   bool
}

// NewSource creates an empty Source.
func NewSource() *Source {
	return &Source{}
}

// Next supersedes the current token, if any, and issues a new one whose
// context derives from parent. After Close the new token is born cancelled
// and is never current.
func (s *Source) Next(parent context.Context) Token {
	if parent == nil {
		parent = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.gen++
	ctx, cancel := context.WithCancel(parent)
	if s.closed {
		cancel()
		return Token{gen: s.gen, ctx: ctx}
	}
	s.active = s.gen
	s.cancelFn = cancel
	return Token{gen: s.gen, ctx: ctx}
}

// Current reports whether t is the live token.
func (s *Source) Current(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && t.gen != 0 && t.gen == s.active
}

// Pending reports whether a token is live.
func (s *Source) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != 0
}

// Invalidate cancels the live token. Its result, if it ever arrives, will
// not be current.
func (s *Source) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Release retires t after its result has been handled. It is a no-op when t
// is not the live token.
func (s *Source) Release(t Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.gen != 0 && t.gen == s.active {
		s.cancelLocked()
	}
}

// Close flips the source into its torn-down state: the live token is
// cancelled and no token issued afterwards is ever current.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Source) cancelLocked() {
	if s.cancelFn != nil {
		s.cancelFn()
		s.cancelFn = nil
	}
	s.active = 0
}
