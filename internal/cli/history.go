// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/hittu-tui/internal/storage"
	"github.com/jeranaias/hittu-tui/internal/util"
)

func (a *app) newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "Manage saved transcripts",
		Long: `Manage transcripts saved from the chat with Ctrl+S or on exit.

A transcript can be referred to by its ID, an ID prefix or its number in
"hittu history list".`,
	}
	cmd.AddCommand(
		a.newHistoryListCommand(),
		a.newHistoryShowCommand(),
		a.newHistoryDeleteCommand(),
		a.newHistorySearchCommand(),
		a.newHistoryReindexCommand(),
	)
	return cmd
}

func (a *app) newHistoryListCommand() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved transcripts, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			defer store.Close()
			var metas []storage.TranscriptMeta
			if query != "" {
				metas, err = store.Search(query)
			} else {
				metas, err = store.List()
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), storage.FormatList(metas, time.Now()))
			if len(metas) == 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "only list transcripts containing this text")
	return cmd
}

func (a *app) newHistoryShowCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show REF",
		Short: "Print a transcript as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			defer store.Close()
			t, err := store.Resolve(args[0])
			if err != nil {
				return err
			}

			var sb strings.Builder
			if err := storage.WriteMarkdown(&sb, t); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			text := sb.String()
			if !raw && isTerminal(out) {
				text = renderMarkdown(text, terminalWidth(out))
			}
			_, err = fmt.Fprint(out, text)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown source even on a terminal")
	return cmd
}

func (a *app) newHistoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete REF",
		Aliases: []string{"rm"},
		Short:   "Delete a saved transcript",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			defer store.Close()
			t, err := store.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				successStyle.Render("Deleted"), t.ID[:min(8, len(t.ID))], mutedStyle.Render(t.Title))
			return nil
		},
	}
}

func (a *app) newHistorySearchCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search message text across saved transcripts",
		Long: `Search the text of every saved message. All words must match; the last
word also matches as a prefix. Requires history.index = true.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.SearchMessages(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHits(hits, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of matches")
	return cmd
}

func (a *app) newHistoryReindexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the transcript files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Reindex()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d transcripts\n", successStyle.Render("Indexed"), n)
			return nil
		},
	}
}

// formatHits groups search hits under their transcript.
func formatHits(hits []storage.SearchHit, now time.Time) string {
	if len(hits) == 0 {
		return "No matches.\n"
	}
	var sb strings.Builder
	last := ""
	for _, h := range hits {
		if h.TranscriptID != last {
			if last != "" {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%s %s %s\n",
				indexStyle.Render(h.TranscriptID[:min(8, len(h.TranscriptID))]),
				titleStyle.Render(h.Title),
				mutedStyle.Render(util.FormatRelativeTime(h.UpdatedAt, now)))
			last = h.TranscriptID
		}
		fmt.Fprintf(&sb, "  %s: %s\n", h.Sender, strings.Join(strings.Fields(h.Snippet), " "))
	}
	return sb.String()
}

func (a *app) historyStore() (*storage.TranscriptStore, error) {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}
