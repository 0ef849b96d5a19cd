// Package models holds the data types shared across vidgrab.
package models

// VideoFormat describes one video encode variant known to the probe.
type VideoFormat struct {
	ID         string  `json:"itag"`
	Resolution string  `json:"resolution"`
	Codec      string  `json:"codec"`
	Container  string  `json:"container"`
	SizeMB     int     `json:"sizeMB"` // 0 = unknown
	Bitrate    float64 `json:"bitrate"`
	HasAudio   bool    `json:"hasAudio"`
}

// AudioFormat describes one audio-only encode variant.
type AudioFormat struct {
	ID        string  `json:"itag"`
	Bitrate   float64 `json:"bitrate"`
	Container string  `json:"container"`
}

// ProbeResult is the immutable outcome of one metadata probe invocation.
type ProbeResult struct {
	Title        string
	ThumbnailURL string
	Duration     float64 // seconds
	ViewCount    int64
	UploadDate   string
	Uploader     string
	VideoFormats []VideoFormat
	AudioFormats []AudioFormat
}

// VideoFormat returns the video format with the given ID, if known.
func (p *ProbeResult) VideoFormat(id string) (VideoFormat, bool) {
	for _, f := range p.VideoFormats {
		if f.ID == id {
			return f, true
		}
	}
	return VideoFormat{}, false
}

// AudioFormat returns the audio format with the given ID, if known.
func (p *ProbeResult) AudioFormat(id string) (AudioFormat, bool) {
	for _, f := range p.AudioFormats {
		if f.ID == id {
			return f, true
		}
	}
	return AudioFormat{}, false
}

// DownloadRequest is one user submission. Never mutated after decode.
type DownloadRequest struct {
	URL       string `json:"url"`
	VideoItag string `json:"videoItag,omitempty"`
	AudioItag string `json:"audioItag,omitempty"`
}

// EmbedMeta carries the tags written into a finished artifact.
type EmbedMeta struct {
	Title        string
	Artist       string
	ThumbnailURL string
}
