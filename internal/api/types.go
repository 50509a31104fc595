// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// Wire types shared by the client and the development server.

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Query string `json:"query"`
}

// PredictResponse is the reply to POST /predict.
type PredictResponse struct {
	Predictions []string `json:"predictions"`
}

// HealthResponse is the reply to GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body the server sends with 4xx/5xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// chatEnvelope and predictEnvelope use pointers so a missing field can be
// told apart from an empty one.
type chatEnvelope struct {
	Response *string `json:"response"`
}

type predictEnvelope struct {
	Predictions *[]string `json:"predictions"`
}
