// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "updated" {
		t.Errorf("Content = %q, want %q", string(content), "updated")
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 file in dir, got %d", len(entries))
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestRuneLen(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"hello", 5},
		{"こんにちは", 5},
		{"a日b", 3},
	}
	for _, tt := range tests {
		if got := RuneLen(tt.input); got != tt.want {
			t.Errorf("RuneLen(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestRunePrefix(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 0, ""},
		{"hello", -1, ""},
		{"hello", 2, "he"},
		{"hello", 5, "hello"},
		{"hello", 10, "hello"},
		{"こんにちは", 3, "こんに"},
	}
	for _, tt := range tests {
		if got := RunePrefix(tt.input, tt.n); got != tt.want {
			t.Errorf("RunePrefix(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	if got := TruncateWidth("short", 10); got != "short" {
		t.Errorf("TruncateWidth kept = %q", got)
	}
	got := TruncateWidth("weekend forecast?", 8)
	if StringWidth(got) > 8 {
		t.Errorf("TruncateWidth result %q is wider than 8", got)
	}
	// CJK characters are two columns wide
	got = TruncateWidth("天気予報です", 5)
	if StringWidth(got) > 5 {
		t.Errorf("TruncateWidth CJK result %q is wider than 5", got)
	}
	if got := TruncateWidth("x", 0); got != "" {
		t.Errorf("TruncateWidth with zero width = %q, want empty", got)
	}
}

func TestNormalizeInput(t *testing.T) {
	// "é" as e + combining acute accent
	decomposed := "  cafe\u0301  "
	if got := NormalizeInput(decomposed); got != "caf\u00e9" {
		t.Errorf("NormalizeInput = %q, want composed form", got)
	}
	if got := NormalizeInput("   "); got != "" {
		t.Errorf("NormalizeInput(blank) = %q, want empty", got)
	}
}

// =============================================================================
// TIME FORMAT TESTS
// =============================================================================

func TestFormatMessageTime(t *testing.T) {
	now := time.Date(2025, 6, 4, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"today", time.Date(2025, 6, 4, 9, 5, 0, 0, time.UTC), "09:05"},
		{"yesterday", time.Date(2025, 6, 3, 23, 59, 0, 0, time.UTC), "Yesterday 23:59"},
		{"this year", time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC), "1/2 08:00"},
		{"older", time.Date(2023, 12, 25, 14, 30, 0, 0, time.UTC), "2023/12/25 14:30"},
		{"zero", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMessageTime(tt.t, now); got != tt.want {
				t.Errorf("FormatMessageTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 4, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
		{10 * 24 * time.Hour, "5/25 14:30"},
	}
	for _, tt := range tests {
		if got := FormatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
