// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package turn

import "errors"

// Errors returned by Send and Click.
var (
	// ErrEmptyMessage indicates the text was blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTurnInFlight indicates a reply is still pending.
	ErrTurnInFlight = errors.New("a reply is still pending")

	// ErrInputBlocked indicates an error banner is active and must be
	// dismissed before sending again.
	ErrInputBlocked = errors.New("input blocked until the error is dismissed")

	// ErrClosed indicates the manager has been torn down.
	ErrClosed = errors.New("conversation closed")
)

// UnexpectedErrorText is shown for failures that carry no user-facing text.
const UnexpectedErrorText = "An unexpected error occurred."

// userFacing is implemented by errors that know how to describe themselves
// to the user.
type userFacing interface {
	UserMessage() string
}

// ErrorText returns the text to show the user for a chat failure.
func ErrorText(err error) string {
	var uf userFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	return UnexpectedErrorText
}
