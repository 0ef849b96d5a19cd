package downloads

import (
	"vidgrab/internal/models"
	"vidgrab/internal/utils/logging"
)

// DefaultExpression prefers a widely-compatible container and degrades to
// best-available.
const DefaultExpression = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/bestvideo+bestaudio/best"

// SelectFormat resolves the format-selection expression handed to the
// extraction tool. Requested IDs are validated against the probe whenever a
// probe is available; blind ID pairs are only passed through when probing
// failed and validation is impossible.
func SelectFormat(probe *models.ProbeResult, videoID, audioID string) string {
	if videoID == "" && audioID == "" {
		return DefaultExpression
	}

	if probe == nil {
		// Best-effort pass-through: nothing to validate against.
		switch {
		case videoID != "" && audioID != "":
			return videoID + "+" + audioID
		case videoID != "":
			return videoID
		default:
			return DefaultExpression
		}
	}

	if videoID != "" && audioID != "" {
		_, haveVideo := probe.VideoFormat(videoID)
		_, haveAudio := probe.AudioFormat(audioID)
		if haveVideo && haveAudio {
			return videoID + "+" + audioID
		}
		logging.W("Requested formats %q+%q not all present in probe, using default expression", videoID, audioID)
		return DefaultExpression
	}

	if videoID != "" {
		vf, ok := probe.VideoFormat(videoID)
		if !ok {
			logging.W("Requested video format %q unknown to probe, using default expression", videoID)
			return DefaultExpression
		}
		if vf.HasAudio {
			return videoID
		}
		if companion, ok := companionAudio(probe, vf.Container); ok {
			return videoID + "+" + companion
		}
		return videoID
	}

	// Audio-only requests degrade to the default expression; the artifact
	// contract is a merged video container.
	return DefaultExpression
}

// companionAudio picks an audio format to pair with a video-only stream,
// preferring the same container to avoid a transcode during merge.
func companionAudio(probe *models.ProbeResult, container string) (string, bool) {
	for _, a := range probe.AudioFormats {
		if a.Container == container {
			return a.ID, true
		}
	}
	if len(probe.AudioFormats) > 0 {
		return probe.AudioFormats[0].ID, true
	}
	return "", false
}
