// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/hittu-tui/internal/cancel"
	"github.com/jeranaias/hittu-tui/internal/config"
	"github.com/jeranaias/hittu-tui/internal/debounce"
)

// =============================================================================
// SUGGESTION MESSAGES
// =============================================================================

// debounceFiredMsg is delivered when a debounce window started for ticket
// elapses. Stale tickets are ignored by the pipeline.
type debounceFiredMsg struct {
	ticket debounce.Ticket
}

// predictionResultMsg carries the outcome of a prediction request.
type predictionResultMsg struct {
	token       cancel.Token
	predictions []string
	err         error
}

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// chatResultMsg carries the outcome of a chat request for a turn.
type chatResultMsg struct {
	turnID string
	token  cancel.Token
	reply  string
	err    error
}

// revealTickMsg advances the reveal of the current bot reply. seq ties the
// tick to the message it was scheduled for.
type revealTickMsg struct {
	seq uint64
}

// =============================================================================
// BANNER MESSAGES
// =============================================================================

// errorExpiredMsg clears the error banner raised with gen, if it is still up.
type errorExpiredMsg struct {
	gen uint64
}

// statusExpiredMsg clears the status notice raised with gen.
type statusExpiredMsg struct {
	gen uint64
}

// transcriptSavedMsg reports the result of Ctrl+S.
type transcriptSavedMsg struct {
	id  string
	err error
}

// =============================================================================
// EXTERNAL MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent by the config watcher when the config file
// changes. Err is set when the new file failed to load; the running config
// is kept in that case.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
