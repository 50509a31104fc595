// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the hittu command line.
//
// Commands:
//
//	hittu                      Start the chat UI (default)
//	hittu ask MESSAGE          Send one message and print the reply
//	hittu serve                Run the development backend
//	hittu health               Check the backend
//	hittu history list|show|delete|search|reindex
//	hittu config show|path|init
//
// Global flags --config, --api-url, --mock and --verbose apply to every
// command and override the config file and the environment.
package cli
