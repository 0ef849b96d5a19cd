// Package metadata talks to the external tools for metadata concerns:
// probing a source for its encode variants and embedding tags into a
// finished artifact.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"vidgrab/internal/domain/consts"
	"vidgrab/internal/downloads"
	"vidgrab/internal/models"
	"vidgrab/internal/parsing"
	"vidgrab/internal/utils/logging"
)

// Prober runs metadata probes through the same fallback executor shape as
// downloads.
type Prober struct {
	Executor *downloads.StrategyExecutor
	Opts     downloads.InvocationOpts
}

// Probe invokes the extraction tool in JSON dump mode and decodes the
// result. The retry policy is identical in shape to the download path.
func (p *Prober) Probe(ctx context.Context, url string) (*models.ProbeResult, error) {
	res, err := p.Executor.Execute(ctx, downloads.BaseProbeArgs(url, p.Opts), nil)
	if err != nil {
		return nil, err
	}

	probe, err := ParseProbeOutput(res.Result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("probe output unparseable: %w\nstderr tail: %s",
			err, parsing.Tail(res.Result.Stderr, consts.TailShort))
	}
	logging.D(1, "Probe for %q found %d video and %d audio formats",
		url, len(probe.VideoFormats), len(probe.AudioFormats))
	return probe, nil
}

// probeInfo mirrors the extraction tool's JSON dump fields we consume.
type probeInfo struct {
	Title            string        `json:"title"`
	Thumbnail        string        `json:"thumbnail"`
	Duration         float64       `json:"duration"`
	ViewCount        int64         `json:"view_count"`
	UploadDate       string        `json:"upload_date"`
	ReleaseTimestamp int64         `json:"release_timestamp"`
	Uploader         string        `json:"uploader"`
	Formats          []probeFormat `json:"formats"`
}

type probeFormat struct {
	FormatID       string  `json:"format_id"`
	FormatNote     string  `json:"format_note"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Ext            string  `json:"ext"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	TBR            float64 `json:"tbr"`
}

// ParseProbeOutput decodes a JSON metadata dump. Extractors may print log
// lines before the payload; the first '{' marks the JSON start.
func ParseProbeOutput(stdout string) (*models.ProbeResult, error) {
	idx := strings.IndexByte(stdout, '{')
	if idx < 0 {
		return nil, fmt.Errorf("no JSON object in probe output")
	}

	var info probeInfo
	if err := json.Unmarshal([]byte(stdout[idx:]), &info); err != nil {
		return nil, fmt.Errorf("decoding probe JSON: %w", err)
	}

	probe := &models.ProbeResult{
		Title:        info.Title,
		ThumbnailURL: info.Thumbnail,
		Duration:     info.Duration,
		ViewCount:    info.ViewCount,
		UploadDate:   info.UploadDate,
		Uploader:     info.Uploader,
	}
	if probe.Title == "" {
		probe.Title = "Untitled Video"
	}
	if probe.Uploader == "" {
		probe.Uploader = "Unknown"
	}
	if probe.UploadDate == "" && info.ReleaseTimestamp > 0 {
		probe.UploadDate = parsing.FormatTimestamp(info.ReleaseTimestamp)
	}

	for _, f := range info.Formats {
		if f.VCodec != "" && f.VCodec != "none" {
			probe.VideoFormats = append(probe.VideoFormats, videoFormat(f))
			continue
		}
		if f.ACodec != "" && f.ACodec != "none" {
			probe.AudioFormats = append(probe.AudioFormats, models.AudioFormat{
				ID:        f.FormatID,
				Bitrate:   f.TBR,
				Container: f.Ext,
			})
		}
	}

	// Highest resolution first, then highest audio bitrate first.
	sort.SliceStable(probe.VideoFormats, func(i, j int) bool {
		return resolutionRank(probe.VideoFormats[i].Resolution) > resolutionRank(probe.VideoFormats[j].Resolution)
	})
	sort.SliceStable(probe.AudioFormats, func(i, j int) bool {
		return probe.AudioFormats[i].Bitrate > probe.AudioFormats[j].Bitrate
	})

	return probe, nil
}

func videoFormat(f probeFormat) models.VideoFormat {
	resolution := f.FormatNote
	if resolution == "" {
		if f.Height > 0 {
			resolution = strconv.Itoa(f.Height) + "p"
		} else {
			resolution = "Unknown"
		}
	}

	codec := f.VCodec
	if f.ACodec != "" && f.ACodec != "none" {
		codec += "+" + f.ACodec
	}

	size := f.Filesize
	if size == 0 {
		size = f.FilesizeApprox
	}

	return models.VideoFormat{
		ID:         f.FormatID,
		Resolution: resolution,
		Codec:      codec,
		Container:  f.Ext,
		SizeMB:     int(size / (1024 * 1024)),
		Bitrate:    f.TBR,
		HasAudio:   f.ACodec != "" && f.ACodec != "none",
	}
}

// resolutionRank extracts the leading numeric component of a resolution
// label for sorting; non-numeric labels sort last.
func resolutionRank(label string) int {
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, _ := strconv.Atoi(label[:end])
	return n
}
