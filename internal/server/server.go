// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/hittu-tui/internal/api"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is where the development backend listens.
	DefaultAddr = ":5000"

	// DefaultMaxInputChars is the longest message accepted.
	DefaultMaxInputChars = 1000

	// MaxRequestBodySize caps request bodies (64KB).
	MaxRequestBodySize = 64 * 1024

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 5 * time.Second
)

// Config configures the development backend.
type Config struct {
	Addr string

	// Latency simulation for the built-in backend.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Per-client rate limit.
	RatePerSecond float64
	Burst         int

	AllowedOrigins []string
	MaxInputChars  int
}

// DefaultConfig returns the standard development settings.
func DefaultConfig() Config {
	return Config{
		Addr:           DefaultAddr,
		MinDelay:       api.DefaultMockMinDelay,
		MaxDelay:       api.DefaultMockMaxDelay,
		RatePerSecond:  5,
		Burst:          10,
		AllowedOrigins: []string{"*"},
		MaxInputChars:  DefaultMaxInputChars,
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the development chat backend. It answers the same endpoints the
// client consumes, backed by an api.Service (the mock by default).
type Server struct {
	cfg        Config
	backend    api.Service
	logger     *zap.Logger
	metrics    *Metrics
	limiter    *RateLimiter
	handler    http.Handler
	httpServer *http.Server
}

// New creates a Server. A nil backend uses the mock service with the
// configured latency.
func New(cfg Config, backend api.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if backend == nil {
		backend = api.NewMock(api.MockOptions{MinDelay: cfg.MinDelay, MaxDelay: cfg.MaxDelay}, logger)
	}

	s := &Server{
		cfg:     cfg,
		backend: backend,
		logger:  logger.Named("server"),
		metrics: NewMetrics(),
		limiter: NewRateLimiter(cfg.RatePerSecond, cfg.Burst),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

func (s *Server) routes() http.Handler {
	cors := DefaultCORSConfig()
	cors.AllowedOrigins = s.cfg.AllowedOrigins

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(CORSMiddleware(cors))

	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.metrics.Middleware)
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.limiter, s.metrics))
			r.Use(BodyLimitMiddleware(MaxRequestBodySize))
			r.Post("/chat", s.handleChat)
			r.Post("/predict", s.handlePredict)
		})
	})
	return r
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	msg := util.NormalizeInput(req.Message)
	if msg == "" {
		s.reject(w, "empty_message", "message is required")
		return
	}
	if util.RuneLen(msg) > s.cfg.MaxInputChars {
		s.reject(w, "message_too_long", "message is too long")
		return
	}

	reply, err := s.backend.SendMessage(r.Context(), msg)
	if err != nil {
		s.backendError(w, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, api.ChatResponse{Response: reply})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req api.PredictRequest
	if !s.decode(w, r, &req) {
		return
	}

	query := util.NormalizeInput(req.Query)
	if query == "" {
		s.reject(w, "empty_query", "query is required")
		return
	}
	if util.RuneLen(query) > s.cfg.MaxInputChars {
		s.reject(w, "query_too_long", "query is too long")
		return
	}

	preds, err := s.backend.Predict(r.Context(), query)
	if err != nil {
		s.backendError(w, "predict", err)
		return
	}
	if preds == nil {
		preds = []string{}
	}
	writeJSON(w, http.StatusOK, api.PredictResponse{Predictions: preds})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.HealthCheck(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// decode reads a JSON body into v, writing a 4xx and returning false on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.rejected.WithLabelValues("body_too_large").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.reject(w, "invalid_json", "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) reject(w http.ResponseWriter, reason, message string) {
	s.metrics.rejected.WithLabelValues(reason).Inc()
	writeError(w, http.StatusBadRequest, message)
}

func (s *Server) backendError(w http.ResponseWriter, endpoint string, err error) {
	if errors.Is(err, api.ErrCanceled) {
		// Client went away; nobody is listening for a reply.
		s.logger.Debug("request abandoned by client", zap.String("endpoint", endpoint))
		return
	}
	s.logger.Error("backend failed", zap.String("endpoint", endpoint), zap.Error(err))
	status := http.StatusBadGateway
	if errors.Is(err, api.ErrTimeout) {
		status = http.StatusGatewayTimeout
	}
	writeError(w, status, "backend unavailable")
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: strings.TrimSpace(message)})
}
