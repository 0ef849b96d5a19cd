package downloads

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"vidgrab/internal/models"
)

// Raw tool output lines look like:
//   [download]  45.2% of ~  85.49MiB at    2.48MiB/s ETA 00:27
//   [download] Destination: /downloads/<id>.f137.mp4
//   [Merger] Merging formats into "/downloads/<id>.mp4"
//   ERROR: [youtube] abc123: Video unavailable
var percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// Phase narrative shown to users in place of raw tool phrasing.
const (
	PhaseConnecting  = "Connecting..."
	PhaseProcessing  = "Processing..."
	PhaseDownloading = "Downloading stream..."
	PhaseMerging     = "Merging formats..."
	PhaseFinalizing  = "Finalizing..."
)

// ClampPercent bounds a progress value to [0,100].
func ClampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// PhaseForPercent maps a clamped percentage onto the five-phase narrative.
// Boundaries sit at 20/40/60/80/100.
func PhaseForPercent(p float64) string {
	switch p = ClampPercent(p); {
	case p < 20:
		return PhaseConnecting
	case p < 40:
		return PhaseProcessing
	case p < 60:
		return PhaseDownloading
	case p < 80:
		return PhaseMerging
	default:
		return PhaseFinalizing
	}
}

// ParseProgressLine classifies one raw output line into a normalized
// ProgressEvent. Returns false for lines carrying no progress information.
func ParseProgressLine(line string) (models.ProgressEvent, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return models.ProgressEvent{}, false
	}

	// Already-structured payloads pass through unchanged.
	if strings.HasPrefix(trimmed, "{") {
		var ev models.ProgressEvent
		if err := json.Unmarshal([]byte(trimmed), &ev); err == nil {
			return ev, true
		}
	}

	if m := percentRe.FindStringSubmatch(trimmed); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			pct = ClampPercent(pct)
			return models.PercentEvent(pct, PhaseForPercent(pct)), true
		}
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(trimmed, "Destination:"), strings.Contains(lower, "downloading"):
		return models.StatusEvent(PhaseDownloading), true
	case strings.Contains(lower, "merg"), strings.Contains(lower, "final"):
		return models.StatusEvent(PhaseFinalizing), true
	case strings.Contains(lower, "error"):
		return models.ErrorEvent("Download error", trimmed), true
	}

	return models.StatusEvent(trimmed), true
}
