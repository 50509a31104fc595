// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for messages, suggestions and turns.
//
// # Key Types
//
//   - Message: one rendered chat entry with its reveal state and follow-ups
//   - Sender: user or bot
//   - Suggestion: an immutable predicted next question
//   - Turn: one user send plus the suggestions offered and remaining
//
// # Usage
//
//	offered := model.NewSuggestions([]string{"rain chance?", "weekend forecast?"})
//	remaining := model.Without(offered, "rain chance?")
//	reply := model.NewBotMessage("Light rain after noon.", remaining, time.Now())
package model
