// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/util"
)

// Mock latency defaults: replies take between one and three seconds.
const (
	DefaultMockMinDelay = 1 * time.Second
	DefaultMockMaxDelay = 3 * time.Second
)

// MockOptions tunes the Mock service.
type MockOptions struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	// PredictDelayFactor scales prediction latency relative to chat latency.
	// Zero means 0.25.
	PredictDelayFactor float64

	// Seed makes replies and delays reproducible. Zero seeds from the clock.
	Seed uint64
}

// Mock is an in-process Service with canned replies and simulated latency.
// It is safe for concurrent use.
type Mock struct {
	opts   MockOptions
	logger *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// replyTemplates echo the user's message back.
var replyTemplates = []string{
	"Hello! I received your message: \"%s\".",
	"Could you tell me a little more about \"%s\"?",
	"I see, \"%s\". That's interesting!",
	"Do you have any other questions about \"%s\"?",
}

// topicPredictions map keywords to canned follow-ups.
var topicPredictions = []struct {
	keyword     string
	predictions []string
}{
	{"weather", []string{"rain chance?", "weekend forecast?"}},
	{"forecast", []string{"rain chance?", "weekend forecast?"}},
	{"rain", []string{"do I need an umbrella?", "weekend forecast?"}},
	{"recipe", []string{"vegetarian options?", "how long does it take?"}},
	{"time", []string{"what time zone?", "set a reminder?"}},
}

// genericPredictions are used when no keyword matches.
var genericPredictions = []string{
	"Can you tell me more about %s?",
	"How does %s work?",
	"What are the alternatives to %s?",
}

// NewMock creates a Mock.
func NewMock(opts MockOptions, logger *zap.Logger) *Mock {
	if opts.MinDelay < 0 {
		opts.MinDelay = 0
	}
	if opts.MinDelay == 0 && opts.MaxDelay == 0 {
		opts.MinDelay, opts.MaxDelay = DefaultMockMinDelay, DefaultMockMaxDelay
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	if opts.PredictDelayFactor <= 0 {
		opts.PredictDelayFactor = 0.25
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mock{
		opts:   opts,
		logger: logger.Named("mock"),
		rnd:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SendMessage waits for the simulated latency and returns a canned echo.
func (m *Mock) SendMessage(ctx context.Context, message string) (string, error) {
	if err := m.sleep(ctx, m.delay(1)); err != nil {
		return "", err
	}
	return m.Reply(message), nil
}

// Predict waits for a shorter simulated latency and returns follow-ups.
func (m *Mock) Predict(ctx context.Context, query string) ([]string, error) {
	if err := m.sleep(ctx, m.delay(m.opts.PredictDelayFactor)); err != nil {
		return nil, err
	}
	return Predictions(query), nil
}

// HealthCheck always succeeds unless ctx is already done.
func (m *Mock) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return contextError(ctx, err)
	}
	return nil
}

// Reply picks a canned reply for message without waiting.
func (m *Mock) Reply(message string) string {
	m.mu.Lock()
	tmpl := replyTemplates[m.rnd.IntN(len(replyTemplates))]
	m.mu.Unlock()
	return fmt.Sprintf(tmpl, message)
}

// Predictions returns canned follow-ups for a query. Keyword matches come
// first; otherwise generic follow-ups quote the query.
func Predictions(query string) []string {
	q := util.NormalizeInput(query)
	if q == "" {
		return []string{}
	}
	lower := strings.ToLower(q)
	for _, tp := range topicPredictions {
		if strings.Contains(lower, tp.keyword) {
			return append([]string(nil), tp.predictions...)
		}
	}

	subject := util.TruncateWidth(strings.TrimRight(q, "?!. "), 24)
	out := make([]string, len(genericPredictions))
	for i, tmpl := range genericPredictions {
		out[i] = fmt.Sprintf(tmpl, subject)
	}
	return out
}

func (m *Mock) delay(factor float64) time.Duration {
	span := m.opts.MaxDelay - m.opts.MinDelay
	d := m.opts.MinDelay
	if span > 0 {
		m.mu.Lock()
		d += time.Duration(m.rnd.Int64N(int64(span)))
		m.mu.Unlock()
	}
	return time.Duration(float64(d) * factor)
}

func (m *Mock) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return contextError(ctx, err)
		}
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		m.logger.Debug("mock request abandoned", zap.Error(ctx.Err()))
		if ctx.Err() == context.DeadlineExceeded {
			return timeoutError(ctx.Err())
		}
		return canceledError(ctx.Err())
	}
}
