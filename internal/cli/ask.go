// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/hittu-tui/internal/api"
	"github.com/jeranaias/hittu-tui/internal/config"
	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/reveal"
	"github.com/jeranaias/hittu-tui/internal/suggest"
	"github.com/jeranaias/hittu-tui/internal/turn"
	"github.com/jeranaias/hittu-tui/internal/util"
)

type askOptions struct {
	suggest   bool
	noAnimate bool
}

func (a *app) newAskCommand() *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask MESSAGE",
		Short: "Send one message and print the reply",
		Long: `Send one message and print the reply.

On a terminal the reply is revealed character by character. With --suggest,
follow-up questions are fetched for the message and printed once the reply
has been fully revealed.`,
		Example: `  hittu ask "weather tomorrow?"
  hittu ask --suggest "weather tomorrow?"
  hittu ask --mock --no-animate "hello" > reply.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.suggest, "suggest", "s", false, "print follow-up suggestions after the reply")
	cmd.Flags().BoolVar(&opts.noAnimate, "no-animate", false, "print the reply at once")
	return cmd
}

func (a *app) runAsk(ctx context.Context, out io.Writer, message string, opts askOptions) error {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger, err := a.newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc := newService(cfg, logger)
	pipeline := suggest.New(suggest.Options{
		Delay:     cfg.DebounceDelay(),
		Threshold: cfg.Suggest.Threshold,
		Enabled:   opts.suggest,
	}, logger)
	turns := turn.New(pipeline, turn.WithLogger(logger))
	defer turns.Close()

	var followUps []model.Suggestion
	if opts.suggest {
		followUps = predictOnce(ctx, svc, pipeline, message)
	}

	t, err := turns.Send(message, nil)
	if err != nil {
		return err
	}
	reply, err := svc.SendMessage(ctx, t.UserText)
	if err != nil {
		turns.ApplyChatFailure(t.ID, err)
		text, _ := turns.Error()
		return errors.New(text)
	}

	bot, _ := turns.ApplyBotReply(t.ID, reply)
	turns.ApplySuggestions(bot.ID, followUps)

	if err := printReply(ctx, out, cfg, bot, !opts.noAnimate && isTerminal(out), logger); err != nil {
		return err
	}
	turns.ApplyRevealComplete(bot.ID)

	if done, ok := turns.Message(bot.ID); ok {
		printFollowUps(out, done.VisibleSuggestions())
	}
	return nil
}

// predictOnce runs one prediction for text through the pipeline, skipping the
// debounce wait since there is no further typing to coalesce.
func predictOnce(ctx context.Context, svc api.Service, p *suggest.Pipeline, text string) []model.Suggestion {
	ticket, ok := p.OnTyping(text)
	if !ok {
		return nil
	}
	req, ok := p.Fire(ticket)
	if !ok {
		return nil
	}

	rctx, stop := context.WithCancel(req.Context())
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-rctx.Done():
		}
	}()

	preds, err := svc.Predict(rctx, req.Query)
	p.Resolve(req.Token, preds, err)
	return p.Suggestions()
}

// printReply writes a bot reply to out. When animate is set the reply is
// revealed through a reveal.Runner; otherwise it is printed at once, as
// rendered markdown on a terminal.
func printReply(ctx context.Context, out io.Writer, cfg *config.Config, bot model.Message, animate bool, logger *zap.Logger) error {
	if !animate {
		text := bot.Content
		if isTerminal(out) && cfg.UI.RenderMarkdown {
			text = strings.TrimRight(renderMarkdown(text, terminalWidth(out)), "\n")
		}
		_, err := fmt.Fprintln(out, text)
		return err
	}

	w := newRevealWriter(out)
	engine := reveal.New(reveal.OnProgress(w.progress), reveal.OnScroll(w.scroll))
	runner := reveal.NewRunner(engine, cfg.RevealInterval())
	defer runner.Close()

	runner.Reveal(bot.ID, bot.Content)
	if err := runner.Wait(ctx); err != nil {
		// Interrupted: show the whole reply, then report why.
		logger.Debug("reveal interrupted", zap.Error(err))
		runner.Close()
		w.flush(bot.Content)
		fmt.Fprintln(out)
		return err
	}
	w.flush(bot.Content)
	_, err := fmt.Fprintln(out)
	return err
}

// revealWriter prints the newly revealed part of each prefix. Output is
// buffered and pushed to the terminal on every scroll step.
type revealWriter struct {
	mu      sync.Mutex
	buf     *bufio.Writer
	written int
}

func newRevealWriter(out io.Writer) *revealWriter {
	return &revealWriter{buf: bufio.NewWriter(out)}
}

func (w *revealWriter) progress(_ string, prefix string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	runes := []rune(prefix)
	if len(runes) <= w.written {
		return
	}
	_, _ = w.buf.WriteString(string(runes[w.written:]))
	w.written = len(runes)
}

func (w *revealWriter) scroll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.buf.Flush()
}

// flush prints whatever of text has not been written yet.
func (w *revealWriter) flush(text string) {
	w.progress("", text)
	w.scroll()
}

func printFollowUps(out io.Writer, list []model.Suggestion) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Suggested follow-ups"))
	for i, s := range list {
		fmt.Fprintf(out, "  %s %s\n", indexStyle.Render(fmt.Sprintf("%d.", i+1)), util.TruncateWidth(s.Content, 72))
	}
}

