// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"time"
)

// FormatMessageTime formats a message timestamp relative to now:
//
//	today        "15:04"
//	yesterday    "Yesterday 15:04"
//	this year    "1/2 15:04"
//	older        "2006/1/2 15:04"
//
// A zero time formats as "".
func FormatMessageTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	clock := t.Format("15:04")

	switch {
	case sameDay(t, now):
		return clock
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday " + clock
	case t.Year() == now.Year():
		return fmt.Sprintf("%d/%d %s", int(t.Month()), t.Day(), clock)
	default:
		return fmt.Sprintf("%d/%d/%d %s", t.Year(), int(t.Month()), t.Day(), clock)
	}
}

// FormatRelativeTime renders short relative times ("just now", "5m ago",
// "3h ago", "2d ago") and falls back to FormatMessageTime after a week.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	default:
		return FormatMessageTime(t, now)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
