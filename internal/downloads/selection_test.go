package downloads

import (
	"testing"

	"vidgrab/internal/models"
)

func testProbe() *models.ProbeResult {
	return &models.ProbeResult{
		Title: "Test Video",
		VideoFormats: []models.VideoFormat{
			{ID: "137", Resolution: "1080p", Container: "mp4", HasAudio: false},
			{ID: "22", Resolution: "720p", Container: "mp4", HasAudio: true},
			{ID: "248", Resolution: "1080p", Container: "webm", HasAudio: false},
		},
		AudioFormats: []models.AudioFormat{
			{ID: "140", Bitrate: 129, Container: "m4a"},
			{ID: "251", Bitrate: 160, Container: "webm"},
		},
	}
}

func TestSelectFormat(t *testing.T) {
	t.Parallel()

	probe := testProbe()

	tests := []struct {
		name    string
		probe   *models.ProbeResult
		videoID string
		audioID string
		want    string
	}{
		{
			name:  "no explicit formats uses default",
			probe: probe,
			want:  DefaultExpression,
		},
		{
			name:    "valid pair combines",
			probe:   probe,
			videoID: "137",
			audioID: "140",
			want:    "137+140",
		},
		{
			name:    "unknown audio in pair falls back to default",
			probe:   probe,
			videoID: "137",
			audioID: "999",
			want:    DefaultExpression,
		},
		{
			name:    "unknown video in pair falls back to default",
			probe:   probe,
			videoID: "999",
			audioID: "140",
			want:    DefaultExpression,
		},
		{
			name:    "video with audio stays alone",
			probe:   probe,
			videoID: "22",
			want:    "22",
		},
		{
			name:    "video-only pairs with same-container audio",
			probe:   probe,
			videoID: "248",
			want:    "248+251",
		},
		{
			name:    "video-only without container match takes first audio",
			probe:   probe,
			videoID: "137",
			want:    "137+140",
		},
		{
			name:    "unknown lone video falls back to default",
			probe:   probe,
			videoID: "999",
			want:    DefaultExpression,
		},
		{
			name:    "audio-only request uses default",
			probe:   probe,
			audioID: "140",
			want:    DefaultExpression,
		},
		{
			name:    "no probe passes pair through unvalidated",
			videoID: "137",
			audioID: "140",
			want:    "137+140",
		},
		{
			name:    "no probe passes lone video through",
			videoID: "137",
			want:    "137",
		},
		{
			name:    "no probe and audio-only uses default",
			audioID: "140",
			want:    DefaultExpression,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SelectFormat(tt.probe, tt.videoID, tt.audioID); got != tt.want {
				t.Errorf("SelectFormat(%q, %q) = %q, want %q", tt.videoID, tt.audioID, got, tt.want)
			}
		})
	}
}

// Selection is a pure function of its inputs; the same request must always
// resolve to the same expression.
func TestSelectFormatDeterministic(t *testing.T) {
	t.Parallel()

	probe := testProbe()
	first := SelectFormat(probe, "248", "")
	for i := 0; i < 10; i++ {
		if got := SelectFormat(probe, "248", ""); got != first {
			t.Fatalf("SelectFormat changed between calls: %q vs %q", got, first)
		}
	}
}
