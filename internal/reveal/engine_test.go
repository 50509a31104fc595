// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain ticks seq until the engine asks to stop and returns every step.
func drain(e *Engine, seq uint64) []Step {
	var steps []Step
	for i := 0; i < 10000; i++ {
		st := e.Tick(seq)
		steps = append(steps, st)
		if st.Stale || !st.Continue {
			break
		}
	}
	return steps
}

func TestEngine_RevealsOneCharacterPerTick(t *testing.T) {
	var prefixes []string
	scrolls := 0
	e := New(
		OnProgress(func(id, p string) { prefixes = append(prefixes, p) }),
		OnScroll(func() { scrolls++ }),
	)

	seq, start := e.Attach("m1", "héllo")
	require.True(t, start)
	assert.Equal(t, StateRevealing, e.State())

	drain(e, seq)
	assert.Equal(t, []string{"h", "hé", "hél", "héll", "héllo"}, prefixes)
	assert.Equal(t, 5, scrolls)
	assert.Equal(t, StateComplete, e.State())
}

func TestEngine_CompletionFiresExactlyOnce(t *testing.T) {
	completions := 0
	e := New(OnComplete(func(string) { completions++ }))

	seq, _ := e.Attach("m1", "ok")
	steps := drain(e, seq)

	require.Len(t, steps, 2)
	assert.False(t, steps[0].Completed)
	assert.True(t, steps[1].Completed)
	assert.Equal(t, 2, steps[1].Revealed)
	assert.False(t, steps[1].Continue)
	assert.Equal(t, 1, completions)

	// Extra ticks on the finished sequence do nothing.
	assert.True(t, e.Tick(seq).Stale)
	assert.Equal(t, 1, completions)
}

func TestEngine_EmptyTextNeverCompletes(t *testing.T) {
	completions := 0
	e := New(OnComplete(func(string) { completions++ }))

	seq, start := e.Attach("placeholder", "")
	assert.False(t, start)
	assert.True(t, e.Tick(seq).Stale)
	assert.Equal(t, 0, completions)
	assert.Equal(t, StateIdle, e.State())
	assert.False(t, e.Snapshot().IsComplete)
}

func TestEngine_GrowthContinuesWithoutRestart(t *testing.T) {
	e := New()
	seq, _ := e.Attach("m1", "abc")
	e.Tick(seq)
	e.Tick(seq)

	seq2, start := e.Attach("m1", "abcdef")
	assert.False(t, start, "ticks already running")
	assert.Equal(t, seq, seq2)

	steps := drain(e, seq)
	last := steps[len(steps)-1]
	assert.Equal(t, "abcdef", last.Prefix)
	assert.True(t, last.Completed)
	assert.Len(t, steps, 4, "continues from 2, not from 0")
}

func TestEngine_GrowthAfterCompletionRestartsTicking(t *testing.T) {
	completions := 0
	e := New(OnComplete(func(string) { completions++ }))

	seq, _ := e.Attach("m1", "ab")
	drain(e, seq)
	require.Equal(t, 1, completions)

	seq2, start := e.Attach("m1", "abcd")
	require.True(t, start)
	assert.NotEqual(t, seq, seq2)

	snap := e.Snapshot()
	assert.Equal(t, 2, snap.Revealed)
	assert.False(t, snap.IsComplete, "complete only when the whole text is shown")
	assert.Equal(t, StateRevealing, snap.State)

	steps := drain(e, seq2)
	assert.Equal(t, "abcd", steps[len(steps)-1].Prefix)
	for _, st := range steps {
		assert.False(t, st.Completed, "completion is once per message")
	}
	assert.Equal(t, 1, completions)

	snap = e.Snapshot()
	assert.True(t, snap.IsComplete)
	assert.Equal(t, 4, snap.Revealed)
	assert.Equal(t, StateComplete, snap.State)
}

func TestEngine_NonExtendingTextIgnored(t *testing.T) {
	e := New()
	seq, _ := e.Attach("m1", "hello")
	e.Tick(seq)

	_, start := e.Attach("m1", "help me")
	assert.False(t, start)
	_, start = e.Attach("m1", "he")
	assert.False(t, start)
	assert.Equal(t, "hello", e.Snapshot().FullText)
}

func TestEngine_NewIdentityAbandonsOldReveal(t *testing.T) {
	var targets []string
	e := New(OnProgress(func(id, _ string) { targets = append(targets, id) }))

	seqA, _ := e.Attach("A", "first reply")
	e.Tick(seqA)
	e.Tick(seqA)

	seqB, start := e.Attach("B", "second")
	require.True(t, start)

	// A tick queued for A arrives after B took over.
	stale := e.Tick(seqA)
	assert.True(t, stale.Stale)

	steps := drain(e, seqB)
	last := steps[len(steps)-1]
	assert.Equal(t, "second", last.Prefix)
	assert.True(t, last.Completed)

	assert.Equal(t, []string{"A", "A", "B", "B", "B", "B", "B", "B"}, targets)
	assert.Equal(t, "B", e.Snapshot().ID)
}

func TestEngine_RevealedIsMonotonicAndBounded(t *testing.T) {
	e := New()
	seq, _ := e.Attach("m1", "日本語のテキスト")

	prev := 0
	for _, st := range drain(e, seq) {
		assert.GreaterOrEqual(t, st.Revealed, prev)
		assert.LessOrEqual(t, st.Revealed, st.Total)
		prev = st.Revealed
	}
	assert.Equal(t, 8, prev)
}

func TestEngine_DetachAndClose(t *testing.T) {
	e := New()
	seq, _ := e.Attach("m1", "hello")
	e.Detach()
	assert.True(t, e.Tick(seq).Stale)
	assert.Equal(t, StateIdle, e.State())

	seq, _ = e.Attach("m2", "hello")
	e.Close()
	assert.True(t, e.Tick(seq).Stale)

	_, start := e.Attach("m3", "hello")
	assert.False(t, start)
}

func TestSnapshot_Prefix(t *testing.T) {
	s := Snapshot{FullText: "こんにちは", Revealed: 3}
	assert.Equal(t, "こんに", s.Prefix())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "revealing", StateRevealing.String())
	assert.Equal(t, "complete", StateComplete.String())
}
