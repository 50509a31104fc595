// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jeranaias/hittu-tui/internal/model"
	"github.com/jeranaias/hittu-tui/internal/util"
)

// WriteMarkdown renders a transcript as Markdown.
func WriteMarkdown(w io.Writer, t *Transcript) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", t.Title)
	fmt.Fprintf(&sb, "_Saved %s_\n\n", t.UpdatedAt.Format("2006-01-02 15:04"))

	for _, msg := range t.Messages {
		name := model.Sender(msg.Sender).DisplayName()
		fmt.Fprintf(&sb, "**%s** (%s)\n\n", name, msg.Timestamp.Format("15:04"))
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
		if len(msg.Suggestions) > 0 {
			sb.WriteString("Suggested follow-ups:\n\n")
			for _, s := range msg.Suggestions {
				fmt.Fprintf(&sb, "- %s\n", s)
			}
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatList renders transcript metadata as an aligned table.
func FormatList(metas []TranscriptMeta, now time.Time) string {
	if len(metas) == 0 {
		return "No transcripts found."
	}

	var sb strings.Builder
	sb.WriteString(pad("#", 4) + pad("ID", 10) + pad("Updated", 18) + pad("Msgs", 6) + "Title\n")
	for i, m := range metas {
		id := m.ID
		if len(id) > 8 {
			id = id[:8]
		}
		sb.WriteString(pad(fmt.Sprint(i+1), 4) +
			pad(id, 10) +
			pad(util.FormatRelativeTime(m.UpdatedAt, now), 18) +
			pad(fmt.Sprint(m.MessageCount), 6) +
			util.TruncateWidth(m.Title, 40) + "\n")
	}
	return sb.String()
}

// pad right-pads s to width display columns.
func pad(s string, width int) string {
	w := util.StringWidth(s)
	if w >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-w)
}
