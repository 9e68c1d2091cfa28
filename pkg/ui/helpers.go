package ui

import (
	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// truncate truncates s to maxWidth cells with an ellipsis.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// columnWidth picks a table column width from the header and the widest
// cell, capped at limit.
func columnWidth(header string, cells []string, limit int) int {
	w := runewidth.StringWidth(header)
	for _, c := range cells {
		if cw := runewidth.StringWidth(c); cw > w {
			w = cw
		}
	}
	if w > limit {
		w = limit
	}
	return w
}
