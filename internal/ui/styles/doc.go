// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the lipgloss palette and theme of the hittu TUI.
// All colors use AdaptiveColor so light and dark terminals both read well.
package styles
