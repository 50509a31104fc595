// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_OnlyLastTicketFires(t *testing.T) {
	d := New(500 * time.Millisecond)

	t1 := d.Trigger()
	t2 := d.Trigger()
	t3 := d.Trigger()

	assert.False(t, d.Fire(t1))
	assert.False(t, d.Fire(t2))
	assert.True(t, d.Fire(t3))
	assert.False(t, d.Fire(t3), "a ticket fires at most once")
	assert.False(t, d.Pending())
}

func TestDebouncer_ZeroTicketNeverFires(t *testing.T) {
	d := New(time.Millisecond)
	assert.False(t, d.Fire(0))
}

func TestDebouncer_Stop(t *testing.T) {
	d := New(time.Second)
	tk := d.Trigger()
	require.True(t, d.Pending())

	d.Stop()
	assert.False(t, d.Pending())
	assert.False(t, d.Fire(tk))

	// A new window works after Stop.
	assert.True(t, d.Fire(d.Trigger()))
}

func TestDebouncer_Close(t *testing.T) {
	d := New(time.Second)
	tk := d.Trigger()
	d.Close()

	assert.False(t, d.Fire(tk))
	assert.Equal(t, Ticket(0), d.Trigger())
	assert.Equal(t, Ticket(0), d.Schedule(time.Millisecond, func() {}))
}

func TestDebouncer_ScheduleCoalesces(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Close()

	var calls atomic.Int32
	var last atomic.Value
	for _, q := range []string{"w", "we", "wea", "weather tomorrow?"} {
		q := q
		d.Schedule(d.Delay(), func() {
			calls.Add(1)
			last.Store(q)
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "weather tomorrow?", last.Load())
}

func TestDebouncer_StopCancelsScheduled(t *testing.T) {
	d := New(10 * time.Millisecond)

	var fired atomic.Bool
	d.Schedule(10*time.Millisecond, func() { fired.Store(true) })
	d.Stop()

	time.Sleep(40 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestDebouncer_SetDelay(t *testing.T) {
	d := New(500 * time.Millisecond)
	d.SetDelay(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, d.Delay())
}
