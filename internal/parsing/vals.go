package parsing

import (
	"fmt"
	"strings"
)

// FormatDuration renders a duration in seconds as m:ss.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatViews renders a view count as a short human string.
func FormatViews(views int64) string {
	switch {
	case views > 1_000_000:
		return fmt.Sprintf("%.1fM views", float64(views)/1_000_000)
	case views > 1_000:
		return fmt.Sprintf("%.1fK views", float64(views)/1_000)
	case views > 0:
		return fmt.Sprintf("%d views", views)
	default:
		return "0 views"
	}
}

// Tail returns the last n lines of text. Tool logs can be arbitrarily long;
// anything surfaced to users or error strings goes through here first.
func Tail(text string, n int) string {
	if text == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
