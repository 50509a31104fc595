// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/hittu-tui/internal/debounce"
)

// WatchDebounce coalesces the burst of events editors produce on save.
const WatchDebounce = 100 * time.Millisecond

// Watch reloads the config file at path whenever it changes and hands the
// result to fn. A reload that fails to parse or validate is delivered as a
// non-nil error and the caller keeps its previous config.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename are still seen. Watch blocks until ctx is
// done and returns ctx.Err(); fn is never called after Watch returns.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	reloads := make(chan struct{}, 1)
	timer := debounce.New(WatchDebounce)
	defer timer.Close()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Schedule(WatchDebounce, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})

		case <-reloads:
			cfg, err := LoadFromPath(path)
			fn(cfg, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("config watcher: %w", err))
		}
	}
}
