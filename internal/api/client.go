// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Configuration constants for the chat backend.
const (
	// DefaultBaseURL is the development backend.
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout applies to chat and prediction requests.
	DefaultTimeout = 10 * time.Second

	// DefaultHealthTimeout applies to health checks.
	DefaultHealthTimeout = 3 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 1 << 20 // 1MB
)

// Shared HTTP client with connection pooling. Timeouts are applied per
// request through the context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// Client talks to the chat backend over JSON/HTTP.
type Client struct {
	baseURL       string
	timeout       time.Duration
	healthTimeout time.Duration
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient creates a Client. Zero option values fall back to the defaults.
func NewClient(opts Options, logger *zap.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		timeout:       opts.Timeout,
		healthTimeout: opts.HealthTimeout,
		httpClient:    sharedHTTPClient,
		logger:        logger.Named("api"),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage posts a user message and returns the bot's reply.
func (c *Client) SendMessage(ctx context.Context, message string) (string, error) {
	var env chatEnvelope
	if err := c.postJSON(ctx, "/chat", ChatRequest{Message: message}, &env); err != nil {
		return "", err
	}
	if env.Response == nil {
		return "", malformedError(errors.New(`missing "response" field`))
	}
	return *env.Response, nil
}

// Predict asks for next-question suggestions for a partial query.
func (c *Client) Predict(ctx context.Context, query string) ([]string, error) {
	var env predictEnvelope
	if err := c.postJSON(ctx, "/predict", PredictRequest{Query: query}, &env); err != nil {
		return nil, err
	}
	if env.Predictions == nil {
		return nil, malformedError(errors.New(`missing "predictions" field`))
	}
	return *env.Predictions, nil
}

// HealthCheck reports whether the backend answers GET /health with a 2xx.
func (c *Client) HealthCheck(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return networkError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, reqCtx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return &ServiceError{Kind: ErrMalformed, Message: msgUnexpected, Err: err}
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, reqCtx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return c.transportError(ctx, reqCtx, err)
	}

	c.logger.Debug("api request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode)
	}
	if len(data) > MaxResponseSize {
		return malformedError(fmt.Errorf("response exceeds %d bytes", MaxResponseSize))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformedError(err)
	}
	return nil
}

// transportError classifies a failure of the HTTP round trip itself.
func (c *Client) transportError(parent, reqCtx context.Context, err error) error {
	if reqCtx.Err() != nil {
		return contextError(parent, err)
	}
	return networkError(err)
}
