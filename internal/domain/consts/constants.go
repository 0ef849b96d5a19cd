// Package consts holds global, unchanging values.
package consts

// Final artifact container. The extraction tool is told to merge into this
// extension and verification/cleanup key off it.
const FinalExt = ".mp4"

// File prefixes for intermediate artifacts.
const (
	MetaTempTag = "meta_temp_"
	ThumbTag    = "thumb_"
)

// Diagnostic tail bounds (lines). Tool logs can run to megabytes; anything
// surfaced to a caller or an error string is tail-truncated.
const (
	TailShort = 40
	TailLong  = 200
)

// DefaultUnplayablePhrases are output signatures which mark an exit-0 run as
// a soft failure. The phrasing is tool-version-dependent, so the set is
// overridable through configuration.
var DefaultUnplayablePhrases = []string{
	"content isn't available",
	"content is not available",
	"video unavailable",
	"unplayable",
	"sign in to confirm",
}

// FormatUnavailableSignature marks a failed attempt as "the requested encode
// variant does not exist", which callers may answer with one best-available
// retry.
const FormatUnavailableSignature = "requested format is not available"
