// Package common contains small utilities shared across the project:
// delta formatting, date formatting, string truncation.
package common

import (
	"fmt"
	"time"
)

// FormatDelta renders a karma change with an explicit sign.
//
// Examples:
//
//	FormatDelta(5)  → "+5"
//	FormatDelta(-3) → "-3"
func FormatDelta(delta int) string {
	if delta >= 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return fmt.Sprintf("%d", delta)
}

// FormatDateTime formats a timestamp as "02.01.2006 15:04" in UTC.
// Used when rendering karma history entries.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("02.01.2006 15:04")
}

// Truncate shortens s to at most max runes, appending "…" when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// PluralizePoints returns "point" or "points" for n.
func PluralizePoints(n int) string {
	if n == 1 || n == -1 {
		return "point"
	}
	return "points"
}
