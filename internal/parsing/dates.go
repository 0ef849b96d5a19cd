package parsing

import (
	"time"

	"github.com/araddon/dateparse"
)

const displayDateFormat = "Jan 2, 2006"

// FormatUploadDate renders an upload date for display. The extraction tool
// usually emits yyyymmdd, but some extractors hand back other shapes, so
// anything non-standard goes through fuzzy parsing.
func FormatUploadDate(dateStr string) string {
	if dateStr == "" {
		return "Unknown"
	}

	if len(dateStr) == 8 && allDigits(dateStr) {
		if t, err := time.Parse("20060102", dateStr); err == nil {
			return t.Format(displayDateFormat)
		}
	}

	t, err := dateparse.ParseAny(dateStr)
	if err != nil {
		return "Unknown"
	}
	return t.Format(displayDateFormat)
}

// FormatTimestamp renders a unix timestamp for display.
func FormatTimestamp(ts int64) string {
	if ts <= 0 {
		return "Unknown"
	}
	return time.Unix(ts, 0).UTC().Format(displayDateFormat)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
