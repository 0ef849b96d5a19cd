package consts

import "time"

// External process ceilings
const (
	DownloadTimeout = 15 * time.Minute
	ProbeTimeout    = 2 * time.Minute
	MuxTimeout      = 5 * time.Minute
	VersionTimeout  = 10 * time.Second
)

// Network timeouts
const (
	ThumbnailFetchTimeout = 15 * time.Second
	ServerShutdownTimeout = 10 * time.Second
)

// Whole-pipeline retry bounds. Strategy-level fallbacks are layered
// underneath these and bounded separately by the strategy list length.
const (
	PipelineRetries      = 2
	PipelineRetryBackoff = 2 * time.Second
)
