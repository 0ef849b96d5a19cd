// Package command holds the CLI argument surface of the external tools.
package command

// General
const (
	YTDLP              = "yt-dlp"
	Verbose            = "-v"
	IgnoreConfig       = "--ignore-config"
	NoWarnings         = "--no-warnings"
	IgnoreErrors       = "--ignore-errors"
	NoCheckCertificate = "--no-check-certificate"
	NoPlaylist         = "--no-playlist"
	CookiePath         = "--cookies"
	Proxy              = "--proxy"
	AddHeader          = "--add-header"
)

// Download only
const (
	Newline           = "--newline"
	Progress          = "--progress"
	Output            = "-o"
	Format            = "-f"
	FFmpegLocation    = "--ffmpeg-location"
	MergeOutputFormat = "--merge-output-format"
	PostprocessorArgs = "--postprocessor-args"
)

// Probe only
const (
	DumpJSON = "--dump-json"
)

// Fallback strategy augmentations
const (
	GeoBypass       = "--geo-bypass"
	AllowUnplayable = "--allow-unplayable-formats"
	ExtractorArgs   = "--extractor-args"
	AltPlayerClient = "youtube:player_client=android"
)

// Version check
const (
	Version = "--version"
)

// BrowserHeaders mimics a desktop browser. Some extractors throttle or block
// requests carrying no referer or a non-browser user agent.
var BrowserHeaders = []string{
	AddHeader, "User-Agent: Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	AddHeader, "Referer: https://www.youtube.com/",
	AddHeader, "Accept: */*",
	AddHeader, "Accept-Language: en-US,en;q=0.9",
	AddHeader, "Origin: https://www.youtube.com",
}

// OutputTemplateSuffix lets the extraction tool pick the pre-merge extension.
const OutputTemplateSuffix = ".%(ext)s"
