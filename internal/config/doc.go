// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for hittu.
//
// # Configuration Precedence
//
// Configuration is resolved in this order, later sources winning:
//   - Built-in defaults
//   - ~/.hittu/config.toml (or the path given with --config)
//   - .env in the working directory, loaded into the process environment
//   - Environment variables (HITTU_*)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	delay := cfg.DebounceDelay()
//
// Watch delivers a freshly validated Config every time the file changes,
// which the TUI uses to retune debounce and reveal timings while running.
package config
