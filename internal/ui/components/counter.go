// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/jeranaias/hittu-tui/internal/ui/styles"
)

// Counter renders "n/limit" once the input is longer than threshold, and
// nothing before that. It turns amber in the last tenth of the limit and red
// at the limit.
func Counter(theme *styles.Theme, n, limit, threshold int) string {
	if n <= threshold || limit <= 0 {
		return ""
	}

	text := fmt.Sprintf("%d/%d", n, limit)
	switch {
	case n >= limit:
		return theme.CharCountDanger.Render(text)
	case n >= limit-limit/10:
		return theme.CharCountWarning.Render(text)
	default:
		return theme.CharCount.Render(text)
	}
}
