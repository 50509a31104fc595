// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat screen of hittu.

The Model owns the three moving parts of a conversation and drives them from
the single-threaded Update loop:

  - suggest.Pipeline: predictions for the text being typed, debounced with
    tea.Tick tickets and cancelled through generation tokens
  - turn.Manager: the message list, the turn in flight and the error banner
  - reveal.Engine: the typewriter reveal of the newest bot reply

Network calls run inside tea.Cmd goroutines and only return messages; every
state change happens in Update.

# Files

  - model.go: Model, construction and the Update dispatch
  - update.go: handlers for keys, timers and service results
  - commands.go: tea.Cmd creators wrapping the chat service
  - messages.go: message types carried through the loop
  - view.go: rendering (header, messages, chips, input, footer)
  - keys.go: key bindings

# Usage

	m := chat.New(chat.Options{
		Config:  cfg,
		Service: api.New(apiOpts, logger),
		Logger:  logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
*/
package chat
