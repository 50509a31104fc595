// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// IndexFileName is the search index file inside the transcript directory.
const IndexFileName = "index.db"

// =============================================================================
// SEARCH INDEX
// =============================================================================

// SearchIndex is a full-text index over saved transcript messages, kept in
// a SQLite FTS5 table next to the transcript files.
type SearchIndex struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// SearchHit is one matching message.
type SearchHit struct {
	TranscriptID string
	Title        string
	Sender       string
	Snippet      string // matched terms wrapped in [brackets]
	UpdatedAt    time.Time
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
	transcript_id UNINDEXED,
	sender UNINDEXED,
	content,
	tokenize = 'unicode61'
);
`

// OpenSearchIndex opens or creates the index at path.
func OpenSearchIndex(path string) (*SearchIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}

	return &SearchIndex{db: db, path: path}, nil
}

// Path returns the index file path.
func (x *SearchIndex) Path() string {
	return x.path
}

// Close closes the database.
func (x *SearchIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return nil
	}
	err := x.db.Close()
	x.db = nil
	return err
}

// Put indexes t, replacing any earlier version of it.
func (x *SearchIndex) Put(t *Transcript) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages_fts WHERE transcript_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clear indexed messages: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO transcripts (id, title, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		t.ID, t.Title, t.UpdatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("index transcript: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages_fts (transcript_id, sender, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare message insert: %w", err)
	}
	defer stmt.Close()
	for _, msg := range t.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if _, err := stmt.Exec(t.ID, msg.Sender, msg.Content); err != nil {
			return fmt.Errorf("index message: %w", err)
		}
	}

	return tx.Commit()
}

// Remove drops a transcript from the index. Unknown IDs are not an error.
func (x *SearchIndex) Remove(id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages_fts WHERE transcript_id = ?`, id); err != nil {
		return fmt.Errorf("remove indexed messages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM transcripts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove indexed transcript: %w", err)
	}
	return tx.Commit()
}

// Count returns how many transcripts are indexed.
func (x *SearchIndex) Count() (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	var n int
	if err := x.db.QueryRow(`SELECT COUNT(*) FROM transcripts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count indexed transcripts: %w", err)
	}
	return n, nil
}

// Search returns messages matching every word of query, best match first.
// The last word matches as a prefix.
func (x *SearchIndex) Search(query string, limit int) ([]SearchHit, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	rows, err := x.db.Query(`
		SELECT messages_fts.transcript_id, t.title, messages_fts.sender,
		       snippet(messages_fts, 2, '[', ']', '...', 10), t.updated_at
		FROM messages_fts
		JOIN transcripts t ON t.id = messages_fts.transcript_id
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var updated int64
		if err := rows.Scan(&h.TranscriptID, &h.Title, &h.Sender, &h.Snippet, &updated); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		h.UpdatedAt = time.UnixMilli(updated)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Rebuild clears the index and re-adds every transcript in store. It
// returns how many transcripts were indexed.
func (x *SearchIndex) Rebuild(store *TranscriptStore) (int, error) {
	metas, err := store.List()
	if err != nil {
		return 0, err
	}

	x.mu.Lock()
	for _, q := range []string{`DELETE FROM messages_fts`, `DELETE FROM transcripts`} {
		if _, err = x.db.Exec(q); err != nil {
			break
		}
	}
	x.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}

	n := 0
	for _, meta := range metas {
		t, err := store.Load(meta.ID)
		if err != nil {
			continue
		}
		if err := x.Put(t); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// buildMatchQuery turns free text into an FTS5 expression. Every word is
// quoted so operators and punctuation in user input are matched literally.
func buildMatchQuery(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}
	terms := make([]string, 0, len(words))
	for i, w := range words {
		term := `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
		if i == len(words)-1 {
			term += "*"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, " ")
}
