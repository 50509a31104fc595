// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the development chat backend.
//
// Endpoints:
//   - POST /api/chat     - {message} -> {response}
//   - POST /api/predict  - {query} -> {predictions}
//   - GET  /api/health   - 200 when the backend is healthy
//   - GET  /metrics      - Prometheus metrics
//
// Requests pass through request ID, real IP, zap request logging, panic
// recovery and CORS middleware. Chat and predict are additionally rate
// limited per client and have their bodies capped.
package server
