// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is(err, ErrTimeout) and friends to classify a
// ServiceError.
var (
	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrNetwork indicates the server could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrStatus indicates a non-2xx response.
	ErrStatus = errors.New("unexpected status")

	// ErrMalformed indicates the body could not be decoded or failed validation.
	ErrMalformed = errors.New("malformed response")

	// ErrCanceled indicates the caller abandoned the request.
	ErrCanceled = errors.New("request canceled")
)

// User-facing messages, one per kind.
const (
	msgTimeout    = "The request timed out."
	msgStatus     = "A server error occurred: %d"
	msgMalformed  = "The server returned an invalid response."
	msgNetwork    = "A network error occurred. Please check your connection."
	msgUnexpected = "An unexpected error occurred."
)

// ServiceError is returned by every Service method.
type ServiceError struct {
	Kind    error  // one of the Err* kinds above
	Status  int    // HTTP status for ErrStatus
	Message string // text suitable for the error banner
	Err     error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Kind, e.Status)
	}
	return e.Kind.Error()
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches the error's kind.
func (e *ServiceError) Is(target error) bool {
	return e.Kind == target
}

// UserMessage returns the text to show the user.
func (e *ServiceError) UserMessage() string {
	return e.Message
}

func timeoutError(err error) *ServiceError {
	return &ServiceError{Kind: ErrTimeout, Message: msgTimeout, Err: err}
}

func networkError(err error) *ServiceError {
	return &ServiceError{Kind: ErrNetwork, Message: msgNetwork, Err: err}
}

func statusError(status int) *ServiceError {
	return &ServiceError{Kind: ErrStatus, Status: status, Message: fmt.Sprintf(msgStatus, status)}
}

func malformedError(err error) *ServiceError {
	return &ServiceError{Kind: ErrMalformed, Message: msgMalformed, Err: err}
}

func canceledError(err error) *ServiceError {
	return &ServiceError{Kind: ErrCanceled, Message: msgUnexpected, Err: err}
}

// contextError classifies a context failure. parent is the caller's context;
// a deadline set by the client itself counts as a timeout, a cancelled
// parent counts as cancellation.
func contextError(parent context.Context, err error) *ServiceError {
	if parent.Err() != nil && !errors.Is(parent.Err(), context.DeadlineExceeded) {
		return canceledError(err)
	}
	return timeoutError(err)
}
