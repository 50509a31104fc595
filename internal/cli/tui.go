// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/config"
	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/storage"
	"github.com/jeranaias/hittu-tui/internal/ui/chat"
)

// runTUI starts the interactive chat. The terminal belongs to the UI, so
// logs go to the configured log file.
func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	cfg, path, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger, err := a.newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var store *storage.TranscriptStore
	if cfg.History.Enabled {
		store, err = openStore(cfg)
		if err != nil {
			logger.Warn("transcript history unavailable", zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	var restore []model.Message
	if a.resume != "" {
		if store == nil {
			return errors.New("cannot resume: history is disabled or unavailable")
		}
		t, err := store.Resolve(a.resume)
		if err != nil {
			return err
		}
		restore = t.ToMessages()
		logger.Info("resuming transcript", zap.String("id", t.ID))
	}

	m := chat.New(chat.Options{
		Config:  cfg,
		Service: newService(cfg, logger),
		Store:   store,
		Logger:  logger,
		Backend: backendLabel(cfg),
		Restore: restore,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.watchConfig(ctx, path, p, logger)
	}()

	final, runErr := p.Run()
	cancel()
	wg.Wait()

	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	}
	if runErr != nil {
		return fmt.Errorf("chat UI failed: %w", runErr)
	}
	return nil
}

// watchConfig forwards config file changes to the running program. The
// command-line overrides are reapplied to every reload.
func (a *app) watchConfig(ctx context.Context, path string, p *tea.Program, logger *zap.Logger) {
	err := config.Watch(ctx, path, func(next *config.Config, err error) {
		if err == nil {
			err = a.applyFlags(next)
		}
		if err != nil {
			next = nil
		} else {
			config.SetGlobal(next)
		}
		p.Send(chat.ConfigReloadedMsg{Config: next, Err: err})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("config watch stopped", zap.String("path", path), zap.Error(err))
	}
}
