// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/api"
	"github.com/jeranaias/hittu-tui/internal/config"
	"github.com/jeranaias/hittu-tui/internal/logging"
	"github.com/jeranaias/hittu-tui/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app holds the global flags shared by every command.
type app struct {
	configPath string
	apiURL     string
	mock       bool
	verbose    bool
	resume     string
}

// NewRootCommand builds the hittu command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "hittu",
		Short: "Terminal chat client with predictive suggestions",
		Long: `hittu is a terminal chat client.

While you type it suggests likely next questions. Replies are revealed
character by character, and follow-up suggestions appear under each reply
once it has been fully revealed.

Run without arguments to start the interactive chat.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (default ~/.hittu/config.toml)")
	pf.StringVar(&a.apiURL, "api-url", "", "chat API base URL")
	pf.BoolVar(&a.mock, "mock", false, "use the built-in mock service")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.Flags().StringVarP(&a.resume, "resume", "r", "", "resume a saved transcript by ID, ID prefix or list number")

	root.AddCommand(
		a.newAskCommand(),
		a.newServeCommand(),
		a.newHealthCommand(),
		a.newHistoryCommand(),
		a.newConfigCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// resolveConfigPath returns --config or the default location.
func (a *app) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPath()
}

// loadConfig loads the config file and applies the command-line overrides,
// which take precedence over both the file and the environment.
func (a *app) loadConfig() (*config.Config, string, error) {
	path, err := a.resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := a.applyFlags(cfg); err != nil {
		return nil, path, err
	}
	config.SetGlobal(cfg)
	return cfg, path, nil
}

func (a *app) applyFlags(cfg *config.Config) error {
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.mock {
		cfg.API.UseMock = true
	}
	return cfg.Validate()
}

func (a *app) newLogger(cfg *config.Config, toFile bool) (*zap.Logger, error) {
	logger, err := logging.New(logging.FromConfig(cfg, a.verbose, toFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// newService returns the chat backend selected by cfg.
func newService(cfg *config.Config, logger *zap.Logger) api.Service {
	lo, hi := cfg.ServerDelays()
	return api.New(api.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.RequestTimeout(),
		HealthTimeout: cfg.HealthTimeout(),
		UseMock:       cfg.API.UseMock,
		Mock:          api.MockOptions{MinDelay: lo, MaxDelay: hi},
	}, logger)
}

// backendLabel names the backend for headers and messages.
func backendLabel(cfg *config.Config) string {
	if cfg.API.UseMock {
		return "mock"
	}
	if u, err := url.Parse(cfg.API.BaseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return cfg.API.BaseURL
}

// openStore opens the transcript store, or fails when history is disabled.
// Callers must Close the store.
func openStore(cfg *config.Config) (*storage.TranscriptStore, error) {
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("history is disabled (set history.enabled = true in the config)")
	}
	store, err := storage.NewTranscriptStore(cfg.History.Dir, cfg.History.MaxTranscripts)
	if err != nil {
		return nil, err
	}
	if cfg.History.Index {
		if err := store.EnableIndex(); err != nil {
			return nil, fmt.Errorf("open search index: %w", err)
		}
	}
	return store, nil
}
