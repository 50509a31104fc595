// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/hittu-tui/internal/config"
	"github.com/jeranaias/hittu-tui/internal/server"
)

func (a *app) newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development chat backend",
		Long: `Run a local backend that answers /api/chat, /api/predict and /api/health
with canned replies and simulated latency. Prometheus metrics are served
on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger, err := a.newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv := server.New(serverConfig(cfg), nil, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				successStyle.Render("Serving on"), srv.Addr(), mutedStyle.Render("(Ctrl+C to stop)"))
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serverConfig maps the [server] section onto server.Config.
func serverConfig(cfg *config.Config) server.Config {
	lo, hi := cfg.ServerDelays()
	return server.Config{
		Addr:           cfg.Server.Addr,
		MinDelay:       lo,
		MaxDelay:       hi,
		RatePerSecond:  cfg.Server.RatePerSecond,
		Burst:          cfg.Server.Burst,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxInputChars:  cfg.UI.MaxInputChars,
	}
}

func (a *app) newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the chat backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger, err := a.newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HealthTimeout()+time.Second)
			defer cancel()

			label := backendLabel(cfg)
			start := time.Now()
			if err := newService(cfg, logger).HealthCheck(ctx); err != nil {
				return fmt.Errorf("backend %s is unhealthy: %w", label, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				successStyle.Render("✓"), label,
				mutedStyle.Render(fmt.Sprintf("(%s)", time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}
}
