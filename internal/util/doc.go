// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across hittu.
//
// # Key Functions
//
// String Utilities:
//   - RuneLen, RunePrefix: character-based length and prefix (used by the reveal engine)
//   - TruncateWidth: display-width truncation for chips and banners
//   - NormalizeInput: NFC normalization and trimming of user input
//
// Time Formatting:
//   - FormatMessageTime: chat timestamp ("15:04", "Yesterday 15:04", ...)
//   - FormatRelativeTime: "just now", "5m ago", ...
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
