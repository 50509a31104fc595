// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/hittu-tui/internal/model"
)

func newStore(t *testing.T, max int) *TranscriptStore {
	t.Helper()
	store, err := NewTranscriptStore(t.TempDir(), max)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

// tick returns a clock that advances one minute per call.
func tick(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

func sampleMessages() []model.Message {
	now := time.Date(2025, 6, 4, 14, 30, 0, 0, time.UTC)
	reply := model.NewBotMessage("Light rain after noon.", model.NewSuggestions([]string{"weekend forecast?"}), now)
	return []model.Message{
		model.NewRevealedBotMessage("Hello! Is there anything I can help you with?", now),
		model.NewUserMessage("rain chance?", now),
		reply,
		model.NewLoadingMessage(now),
	}
}

// =============================================================================
// TRANSCRIPT STORE TESTS
// =============================================================================

func TestTranscriptStore_SaveAndLoad(t *testing.T) {
	store := newStore(t, 10)

	tr := NewTranscript(sampleMessages())
	if len(tr.Messages) != 3 {
		t.Fatalf("Loading placeholder should be skipped, got %d messages", len(tr.Messages))
	}

	id, err := store.Save(tr)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected non-empty ID")
	}
	if tr.Title != "rain chance?" {
		t.Errorf("Title = %q, want first user message", tr.Title)
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Messages) != 3 {
		t.Fatalf("Loaded %d messages, want 3", len(loaded.Messages))
	}
	if got := loaded.Messages[2].Suggestions; len(got) != 1 || got[0] != "weekend forecast?" {
		t.Errorf("Suggestions = %v", got)
	}

	msgs := loaded.ToMessages()
	if msgs[1].Sender != model.SenderUser || msgs[1].Content != "rain chance?" {
		t.Errorf("Round trip lost the user message: %+v", msgs[1])
	}
	if len(msgs[2].Suggestions) != 1 {
		t.Errorf("Round trip lost suggestions")
	}
}

func TestTranscriptStore_LoadNotFound(t *testing.T) {
	store := newStore(t, 10)

	_, err := store.Load("missing")
	if !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrTranscriptNotFound", err)
	}
	if err := store.Delete("missing"); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrTranscriptNotFound", err)
	}
}

func TestTranscriptStore_RejectsPathTraversal(t *testing.T) {
	store := newStore(t, 10)
	for _, id := range []string{"../etc/passwd", `a\b`, "a/b", ""} {
		if _, err := store.Load(id); err == nil || errors.Is(err, ErrTranscriptNotFound) {
			t.Errorf("Load(%q) should fail validation, got %v", id, err)
		}
	}
}

func TestTranscriptStore_ListNewestFirst(t *testing.T) {
	store := newStore(t, 10)
	store.now = tick(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		id, err := store.Save(NewTranscript([]model.Message{model.NewUserMessage(text, time.Now())}))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, id)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("List returned %d, want 3", len(metas))
	}
	if metas[0].ID != ids[2] || metas[2].ID != ids[0] {
		t.Errorf("List not newest first: %v", metas)
	}
	if metas[0].Preview != "third" || metas[0].MessageCount != 1 {
		t.Errorf("Unexpected meta: %+v", metas[0])
	}
}

func TestTranscriptStore_EnforcesLimit(t *testing.T) {
	store := newStore(t, 2)
	store.now = tick(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	var ids []string
	for i := 0; i < 4; i++ {
		id, err := store.Save(NewTranscript([]model.Message{model.NewUserMessage("msg", time.Now())}))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, id)
	}

	metas, _ := store.List()
	if len(metas) != 2 {
		t.Fatalf("Expected 2 transcripts after limit, got %d", len(metas))
	}
	if _, err := store.Load(ids[0]); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Oldest transcript should have been evicted")
	}
	if _, err := store.Load(ids[3]); err != nil {
		t.Errorf("Newest transcript missing: %v", err)
	}
}

func TestTranscriptStore_SkipsCorruptFiles(t *testing.T) {
	store := newStore(t, 10)
	if err := os.WriteFile(filepath.Join(store.BaseDir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(NewTranscript(sampleMessages())); err != nil {
		t.Fatal(err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("Expected corrupt file to be skipped, got %d entries", len(metas))
	}
}

func TestTranscriptStore_Resolve(t *testing.T) {
	store := newStore(t, 10)
	store.now = tick(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	older, _ := store.Save(&Transcript{ID: "aaaa1111", Messages: []StoredMessage{{Sender: "user", Content: "old"}}})
	newer, _ := store.Save(&Transcript{ID: "bbbb2222", Messages: []StoredMessage{{Sender: "user", Content: "new"}}})

	tests := []struct {
		ref  string
		want string
	}{
		{"aaaa1111", older},
		{"bbbb", newer},
		{"1", newer},
		{"2", older},
	}
	for _, tt := range tests {
		got, err := store.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q) failed: %v", tt.ref, err)
			continue
		}
		if got.ID != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got.ID, tt.want)
		}
	}

	if _, err := store.Resolve("zzz"); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Resolve(zzz) error = %v", err)
	}
	if _, err := store.Resolve("9"); !errors.Is(err, ErrTranscriptNotFound) {
		t.Errorf("Resolve(9) error = %v", err)
	}
}

func TestTranscriptStore_Search(t *testing.T) {
	store := newStore(t, 10)
	store.Save(NewTranscript([]model.Message{model.NewUserMessage("Weather tomorrow?", time.Now())}))
	store.Save(NewTranscript([]model.Message{model.NewUserMessage("Pasta recipe", time.Now())}))

	results, err := store.Search("weather")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Weather tomorrow?" {
		t.Errorf("Search results = %+v", results)
	}
}

func TestGenerateTitle(t *testing.T) {
	long := strings.Repeat("長", 60)
	tr := &Transcript{Messages: []StoredMessage{{Sender: "bot", Content: "hi"}, {Sender: "user", Content: long}}}
	title := generateTitle(tr)
	if !strings.HasSuffix(title, "...") || len([]rune(title)) != 50 {
		t.Errorf("generateTitle = %q", title)
	}

	if got := generateTitle(&Transcript{}); got != "New conversation" {
		t.Errorf("generateTitle(empty) = %q", got)
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestWriteMarkdown(t *testing.T) {
	tr := NewTranscript(sampleMessages())
	tr.Title = "Rain"

	var sb strings.Builder
	if err := WriteMarkdown(&sb, tr); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"# Rain", "**You**", "**Bot**", "Light rain after noon.", "- weekend forecast?"} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown missing %q:\n%s", want, out)
		}
	}
}

func TestFormatList(t *testing.T) {
	if got := FormatList(nil, time.Now()); got != "No transcripts found." {
		t.Errorf("FormatList(nil) = %q", got)
	}

	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	out := FormatList([]TranscriptMeta{{
		ID:           "0123456789abcdef",
		Title:        "Weather tomorrow?",
		UpdatedAt:    now.Add(-5 * time.Minute),
		MessageCount: 4,
	}}, now)
	for _, want := range []string{"01234567", "5m ago", "Weather tomorrow?"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatList missing %q:\n%s", want, out)
		}
	}
}
