// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides transcript persistence for hittu.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// DefaultMaxTranscripts is how many transcripts are kept by default.
const DefaultMaxTranscripts = 100

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript is a saved conversation.
type Transcript struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []StoredMessage `json:"messages"`
}

// StoredMessage is a persisted chat message. Loading placeholders and reveal
// progress are never stored.
type StoredMessage struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"` // "user" or "bot"
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// TranscriptMeta contains metadata for listing transcripts.
type TranscriptMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // first user message, truncated
}

// NewTranscript builds a transcript from the message list, skipping loading
// placeholders.
func NewTranscript(msgs []model.Message) *Transcript {
	t := &Transcript{Messages: make([]StoredMessage, 0, len(msgs))}
	for _, m := range msgs {
		if m.IsLoading {
			continue
		}
		t.Messages = append(t.Messages, StoredMessage{
			ID:          m.ID,
			Sender:      m.Sender.String(),
			Content:     m.Content,
			Timestamp:   m.Timestamp,
			Suggestions: model.SuggestionContents(m.Suggestions),
		})
	}
	return t
}

// ToMessages converts the stored messages back into chat messages.
func (t *Transcript) ToMessages() []model.Message {
	out := make([]model.Message, 0, len(t.Messages))
	for _, sm := range t.Messages {
		msg := model.Message{
			ID:        sm.ID,
			Sender:    model.Sender(sm.Sender),
			Content:   sm.Content,
			Timestamp: sm.Timestamp,
		}
		if len(sm.Suggestions) > 0 {
			msg.Suggestions = model.NewSuggestions(sm.Suggestions)
		}
		out = append(out, msg)
	}
	return out
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore keeps one JSON file per transcript.
type TranscriptStore struct {
	// BaseDir is the directory holding transcripts.
	// Default: ~/.hittu/transcripts/
	BaseDir string

	// MaxTranscripts limits stored transcripts (0 = unlimited).
	MaxTranscripts int

	index *SearchIndex // optional full-text index
	now   func() time.Time
}

// NewTranscriptStore creates a store in baseDir, creating it if needed.
func NewTranscriptStore(baseDir string, maxTranscripts int) (*TranscriptStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".hittu", "transcripts")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	return &TranscriptStore{
		BaseDir:        baseDir,
		MaxTranscripts: maxTranscripts,
		now:            time.Now,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a transcript and returns its ID.
func (s *TranscriptStore) Save(t *Transcript) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := validateID(t.ID); err != nil {
		return "", err
	}
	if t.Title == "" {
		t.Title = generateTitle(t)
	}

	t.UpdatedAt = s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	if err := util.AtomicWriteFile(s.filePath(t.ID), data, 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	if s.index != nil {
		if err := s.index.Put(t); err != nil {
			return t.ID, fmt.Errorf("index transcript: %w", err)
		}
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}
	return t.ID, nil
}

// generateTitle uses the first user message as the title.
func generateTitle(t *Transcript) string {
	for _, msg := range t.Messages {
		if msg.Sender == model.SenderUser.String() && msg.Content != "" {
			title := strings.Join(strings.Fields(msg.Content), " ")
			if util.RuneLen(title) > 50 {
				title = util.RunePrefix(title, 47) + "..."
			}
			return title
		}
	}
	return "New conversation"
}

// enforceLimit removes the oldest transcripts beyond the limit.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}
	for _, meta := range metas[s.MaxTranscripts:] {
		_ = s.Delete(meta.ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a transcript by ID.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transcript %s: %w", id, err)
	}
	return &t, nil
}

// LoadByIndex loads a transcript by its position in List (0 = most recent).
func (s *TranscriptStore) LoadByIndex(index int) (*Transcript, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrTranscriptNotFound
	}
	return s.Load(metas[index].ID)
}

// Resolve loads a transcript by ID, unique ID prefix, or 1-based list index.
func (s *TranscriptStore) Resolve(ref string) (*Transcript, error) {
	if t, err := s.Load(ref); err == nil {
		return t, nil
	}

	var index int
	if _, err := fmt.Sscanf(ref, "%d", &index); err == nil && fmt.Sprint(index) == ref {
		return s.LoadByIndex(index - 1)
	}

	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	var match string
	for _, m := range metas {
		if strings.HasPrefix(m.ID, ref) {
			if match != "" {
				return nil, &TranscriptError{Message: "ambiguous transcript id " + ref}
			}
			match = m.ID
		}
	}
	if match == "" {
		return nil, ErrTranscriptNotFound
	}
	return s.Load(match)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved transcripts, most recent first.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, fmt.Errorf("list transcripts: %w", err)
	}

	metas := make([]TranscriptMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // skip corrupted files
		}

		preview := ""
		for _, msg := range t.Messages {
			if msg.Sender == model.SenderUser.String() {
				preview = msg.Content
				if util.RuneLen(preview) > 80 {
					preview = util.RunePrefix(preview, 77) + "..."
				}
				break
			}
		}

		metas = append(metas, TranscriptMeta{
			ID:           t.ID,
			Title:        t.Title,
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
			MessageCount: len(t.Messages),
			Preview:      preview,
		})
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds transcripts whose title or preview contains query.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	var results []TranscriptMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a transcript by ID.
func (s *TranscriptStore) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return fmt.Errorf("delete transcript: %w", err)
	}
	if s.index != nil {
		if err := s.index.Remove(id); err != nil {
			return fmt.Errorf("unindex transcript: %w", err)
		}
	}
	return nil
}

// =============================================================================
// SEARCH INDEX
// =============================================================================

// EnableIndex opens the full-text index in the store directory and keeps it
// in sync from then on. An index found empty is rebuilt from the files.
func (s *TranscriptStore) EnableIndex() error {
	if s.index != nil {
		return nil
	}
	idx, err := OpenSearchIndex(filepath.Join(s.BaseDir, IndexFileName))
	if err != nil {
		return err
	}
	if n, err := idx.Count(); err == nil && n == 0 {
		if _, err := idx.Rebuild(s); err != nil {
			idx.Close()
			return err
		}
	}
	s.index = idx
	return nil
}

// Index returns the full-text index, or nil when it is not enabled.
func (s *TranscriptStore) Index() *SearchIndex {
	return s.index
}

// SearchMessages runs a full-text query over message content.
func (s *TranscriptStore) SearchMessages(query string, limit int) ([]SearchHit, error) {
	if s.index == nil {
		return nil, ErrIndexDisabled
	}
	return s.index.Search(query, limit)
}

// Reindex rebuilds the full-text index from the transcript files.
func (s *TranscriptStore) Reindex() (int, error) {
	if s.index == nil {
		return 0, ErrIndexDisabled
	}
	return s.index.Rebuild(s)
}

// Close releases the index, if any.
func (s *TranscriptStore) Close() error {
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// validateID rejects IDs that could escape the store directory.
func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return &TranscriptError{Message: "invalid transcript id " + id}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrTranscriptNotFound is returned when a transcript doesn't exist.
// Use errors.Is(err, ErrTranscriptNotFound) to check for this error.
var ErrTranscriptNotFound = &TranscriptError{Message: "transcript not found"}

// ErrIndexDisabled is returned by full-text operations when the store has
// no search index.
var ErrIndexDisabled = &TranscriptError{Message: "search index is disabled"}

// TranscriptError represents a transcript-related error.
type TranscriptError struct {
	Message string
}

// Error implements the error interface.
func (e *TranscriptError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing transcript errors.
func (e *TranscriptError) Is(target error) bool {
	t, ok := target.(*TranscriptError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
