// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hittu-tui/internal/api"
)

// stubBackend is a scripted api.Service.
type stubBackend struct {
	reply       string
	predictions []string
	err         error
	healthErr   error
	panicOnChat bool
}

func (b *stubBackend) SendMessage(ctx context.Context, message string) (string, error) {
	if b.panicOnChat {
		panic("boom")
	}
	if b.err != nil {
		return "", b.err
	}
	if b.reply != "" {
		return b.reply, nil
	}
	return "echo: " + message, nil
}

func (b *stubBackend) Predict(ctx context.Context, query string) ([]string, error) {
	return b.predictions, b.err
}

func (b *stubBackend) HealthCheck(ctx context.Context) error {
	return b.healthErr
}

func newTestServer(t *testing.T, backend api.Service) (*Server, *httptest.Server) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RatePerSecond = 1000
	cfg.Burst = 1000
	s := New(cfg, backend, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Chat(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{})

	resp := post(t, ts.URL+"/api/chat", `{"message":"  hello  "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "echo: hello", out.Response)
}

func TestServer_ChatValidation(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty message", `{"message":"   "}`, http.StatusBadRequest},
		{"too long", `{"message":"` + strings.Repeat("あ", 1001) + `"}`, http.StatusBadRequest},
		{"at the limit", `{"message":"` + strings.Repeat("あ", 1000) + `"}`, http.StatusOK},
		{"invalid json", `{"message":`, http.StatusBadRequest},
		{"body too large", `{"message":"` + strings.Repeat("a", MaxRequestBodySize) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/chat", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestServer_Predict(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{predictions: []string{"rain chance?", "weekend forecast?"}})

	resp := post(t, ts.URL+"/api/predict", `{"query":"weather tomorrow?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.PredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"rain chance?", "weekend forecast?"}, out.Predictions)

	resp = post(t, ts.URL+"/api/predict", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_PredictNilBecomesEmptyArray(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{})

	resp := post(t, ts.URL+"/api/predict", `{"query":"something"}`)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"predictions":[]}`, string(body))
}

func TestServer_BackendErrors(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{err: &api.ServiceError{Kind: api.ErrNetwork, Err: errors.New("down")}})
	resp := post(t, ts.URL+"/api/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	_, ts = newTestServer(t, &stubBackend{err: &api.ServiceError{Kind: api.ErrTimeout}})
	resp = post(t, ts.URL+"/api/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{})
	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, ts = newTestServer(t, &stubBackend{healthErr: errors.New("sick")})
	resp2, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func TestServer_RecoversFromPanic(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{panicOnChat: true})
	resp := post(t, ts.URL+"/api/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestServer_RateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RatePerSecond = 0.001
	cfg.Burst = 2
	s := New(cfg, &stubBackend{}, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.RemoteAddr = "203.0.113.8:5555"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	s := New(cfg, &stubBackend{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig_AllowOrigin(t *testing.T) {
	c := &CORSConfig{AllowedOrigins: []string{"https://app.example.com", "*.widgets.test"}}
	assert.Equal(t, "https://app.example.com", c.allowOrigin("https://app.example.com"))
	assert.Equal(t, "https://a.widgets.test", c.allowOrigin("https://a.widgets.test"))
	assert.Equal(t, "", c.allowOrigin("https://other.test"))
	assert.Equal(t, "", c.allowOrigin(""))

	star := &CORSConfig{AllowedOrigins: []string{"*"}}
	assert.Equal(t, "*", star.allowOrigin(""))
}

func TestServer_Metrics(t *testing.T) {
	_, ts := newTestServer(t, &stubBackend{})
	post(t, ts.URL+"/api/chat", `{"message":"hello"}`)
	post(t, ts.URL+"/api/chat", `{"message":""}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	text := string(body)
	assert.Contains(t, text, `hittu_http_requests_total{method="POST",route="/api/chat",status="200"} 1`)
	assert.Contains(t, text, `hittu_rejected_requests_total{reason="empty_message"} 1`)
	assert.Contains(t, text, "hittu_http_request_duration_seconds")
}

func TestServer_WithMockBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	s := New(cfg, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"query":"weather tomorrow?"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"predictions":["rain chance?","weekend forecast?"]}`, rec.Body.String())
}

func TestServer_RunShutsDownOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	s := New(cfg, &stubBackend{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
