package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"vidgrab/internal/domain/command"
	"vidgrab/internal/domain/consts"
	"vidgrab/internal/models"
	"vidgrab/internal/parsing"
	"vidgrab/internal/process"
	"vidgrab/internal/utils/logging"

	"github.com/google/uuid"
)

var remoteURLRe = regexp.MustCompile(`(?i)^https?://`)

// Embedder re-muxes a finished artifact with title/artist tags and an
// attached cover image. All failures leave the original artifact untouched.
type Embedder struct {
	Runner     process.Runner
	FFmpegPath string
	WorkDir    string
	Client     *http.Client
}

// NewEmbedder returns an Embedder writing temporaries under workDir.
func NewEmbedder(runner process.Runner, ffmpegPath, workDir string) *Embedder {
	return &Embedder{
		Runner:     runner,
		FFmpegPath: ffmpegPath,
		WorkDir:    workDir,
		Client:     &http.Client{Timeout: consts.ThumbnailFetchTimeout},
	}
}

// Embed copies all streams of artifactPath into a temporary container with
// metadata tags, attaching the cover image when one could be fetched, then
// atomically replaces the original.
func (e *Embedder) Embed(ctx context.Context, artifactPath string, meta models.EmbedMeta) error {
	tempPath := filepath.Join(e.WorkDir, consts.MetaTempTag+filepath.Base(artifactPath))

	// Only fetched covers are temporary; a caller-supplied local file is
	// theirs and must survive the mux.
	thumbPath, thumbTemp := e.fetchThumbnail(ctx, meta.ThumbnailURL)
	if thumbTemp {
		defer func() {
			if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
				logging.W("Failed to remove temporary cover file %q: %v", thumbPath, err)
			}
		}()
	}

	args := e.buildMuxArgs(artifactPath, thumbPath, tempPath, meta)
	res, err := e.Runner.Run(ctx, e.FFmpegPath, args, nil, consts.MuxTimeout, nil)
	if err != nil {
		_ = os.Remove(tempPath)
		var pe *process.Error
		if errors.As(err, &pe) {
			return fmt.Errorf("mux tool exited %d: %s", pe.ExitCode, parsing.Tail(pe.Output, consts.TailLong))
		}
		return fmt.Errorf("mux tool failed: %w", err)
	}
	logging.D(2, "Mux tool finished with exit %d", res.ExitCode)

	if err := os.Rename(tempPath, artifactPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replacing artifact with tagged output: %w", err)
	}
	logging.S("Embedded metadata into %s", filepath.Base(artifactPath))
	return nil
}

// fetchThumbnail downloads a remote cover image to a temporary file and
// reports whether the returned path is that temporary. Any failure degrades
// to no cover art.
func (e *Embedder) fetchThumbnail(ctx context.Context, thumbnailURL string) (string, bool) {
	if thumbnailURL == "" {
		return "", false
	}
	if !remoteURLRe.MatchString(thumbnailURL) {
		// Already a local file, use in place.
		if _, err := os.Stat(thumbnailURL); err == nil {
			return thumbnailURL, false
		}
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		logging.W("Thumbnail request build failed, continuing without cover: %v", err)
		return "", false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Referer", "https://www.youtube.com/")
	req.Header.Set("Accept", "*/*")

	resp, err := e.Client.Do(req)
	if err != nil {
		logging.W("Thumbnail download failed, continuing without cover: %v", err)
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logging.W("Thumbnail fetch returned %d, continuing without cover", resp.StatusCode)
		return "", false
	}

	thumbPath := filepath.Join(e.WorkDir, consts.ThumbTag+uuid.NewString()+".jpg")
	f, err := os.Create(thumbPath)
	if err != nil {
		logging.W("Failed to create cover file, continuing without cover: %v", err)
		return "", false
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = os.Remove(thumbPath)
		logging.W("Cover download interrupted, continuing without cover: %v", err)
		return "", false
	}
	return thumbPath, true
}

func (e *Embedder) buildMuxArgs(inPath, thumbPath, outPath string, meta models.EmbedMeta) []string {
	args := []string{command.Overwrite, command.Input, inPath}
	if thumbPath != "" {
		args = append(args, command.Input, thumbPath)
	}
	args = append(args, command.StreamMap, "0")
	if thumbPath != "" {
		args = append(args, command.StreamMap, "1")
	}
	args = append(args,
		command.Codec, command.CodecCopy,
		command.Metadata, "title="+meta.Title,
		command.Metadata, "artist="+meta.Artist,
		command.Metadata, "comment=Downloaded with vidgrab",
	)
	if thumbPath != "" {
		args = append(args, command.DispositionCover, command.AttachedPic)
	}
	return append(args, outPath)
}
