// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides transcript persistence for hittu.
//
// Each transcript is one JSON file under ~/.hittu/transcripts/, written
// atomically. The store keeps at most MaxTranscripts files and evicts the
// least recently updated ones first. EnableIndex adds a SQLite FTS5 index
// over message text (index.db in the same directory) that Save and Delete
// keep current.
//
//	store, _ := storage.NewTranscriptStore("", storage.DefaultMaxTranscripts)
//	id, _ := store.Save(storage.NewTranscript(messages))
//	t, _ := store.Load(id)
//	_ = storage.WriteMarkdown(os.Stdout, t)
package storage
