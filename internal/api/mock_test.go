// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastMock() *Mock {
	return NewMock(MockOptions{MaxDelay: time.Millisecond, Seed: 42}, nil)
}

func TestMock_SendMessageEchoes(t *testing.T) {
	m := fastMock()
	reply, err := m.SendMessage(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Contains(t, reply, "hello there")
}

func TestMock_PredictWeather(t *testing.T) {
	m := fastMock()
	preds, err := m.Predict(context.Background(), "weather tomorrow?")
	require.NoError(t, err)
	assert.Equal(t, []string{"rain chance?", "weekend forecast?"}, preds)
}

func TestPredictions_Generic(t *testing.T) {
	preds := Predictions("golang generics?")
	require.Len(t, preds, 3)
	for _, p := range preds {
		assert.True(t, strings.Contains(p, "golang generics"), p)
	}
	assert.Empty(t, Predictions("   "))
}

func TestMock_HonorsCancellation(t *testing.T) {
	m := NewMock(MockOptions{MinDelay: time.Hour, MaxDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.SendMessage(ctx, "hello")
	assert.ErrorIs(t, err, ErrCanceled)

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err = m.Predict(ctx, "weather")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestMock_DelayWithinBounds(t *testing.T) {
	m := NewMock(MockOptions{MinDelay: time.Second, MaxDelay: 3 * time.Second, Seed: 7}, nil)
	for i := 0; i < 100; i++ {
		d := m.delay(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}

func TestMock_HealthCheck(t *testing.T) {
	m := fastMock()
	assert.NoError(t, m.HealthCheck(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.HealthCheck(ctx), ErrCanceled)
}
