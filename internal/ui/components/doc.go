// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the hittu chat screen.
//
//   - Banner: the error banner (dismissible, auto-expiring) and status notices
//   - Chips: a selectable row of suggestion chips with 1-9 shortcuts
//   - Counter: the input character counter shown near the limit
//
// Components are plain values; the chat model owns them and re-renders them
// from its state on every View.
package components
