// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the chat and prediction services.
//
// Service is what the rest of the program talks to. Client implements it over
// HTTP against a real backend; Mock implements it in-process with simulated
// latency for development. Every failure is a *ServiceError whose Kind can be
// tested with errors.Is and whose UserMessage is ready for display.
package api

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Service is the chat backend as seen by the client.
type Service interface {
	// SendMessage returns the bot's reply to message.
	SendMessage(ctx context.Context, message string) (string, error)

	// Predict returns suggested next questions for a partial query, in the
	// order the backend ranked them.
	Predict(ctx context.Context, query string) ([]string, error)

	// HealthCheck returns nil when the backend is reachable and healthy.
	HealthCheck(ctx context.Context) error
}

// Options selects and tunes a Service.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration

	// UseMock selects the in-process Mock instead of the HTTP client.
	UseMock bool
	Mock    MockOptions
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HealthTimeout <= 0 {
		o.HealthTimeout = DefaultHealthTimeout
	}
	return o
}

// New returns the Service selected by opts.
func New(opts Options, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.UseMock {
		logger.Warn("using mock chat service")
		return NewMock(opts.Mock, logger)
	}
	return NewClient(opts, logger)
}

// Compile-time interface checks.
var (
	_ Service = (*Client)(nil)
	_ Service = (*Mock)(nil)
)
