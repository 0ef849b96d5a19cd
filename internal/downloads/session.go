package downloads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidgrab/internal/domain/consts"
	"vidgrab/internal/models"
	"vidgrab/internal/parsing"
	"vidgrab/internal/utils/logging"

	"github.com/google/uuid"
)

// State is a download session's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateAttempting
	StateVerifying
	StateEmbedding
	StateCleaningUp
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateAttempting:
		return "attempting"
	case StateVerifying:
		return "verifying"
	case StateEmbedding:
		return "embedding"
	case StateCleaningUp:
		return "cleaning-up"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Prober fetches source metadata. Probe failures are non-fatal to a session;
// selection degrades to best-effort without a probe.
type Prober interface {
	Probe(ctx context.Context, url string) (*models.ProbeResult, error)
}

// Embedder post-processes a finished artifact with metadata tags and cover
// art. Failures are non-fatal to the session.
type Embedder interface {
	Embed(ctx context.Context, artifactPath string, meta models.EmbedMeta) error
}

// SessionDeps wires a session's collaborators.
type SessionDeps struct {
	Executor  *StrategyExecutor
	Prober    Prober
	Embedder  Embedder
	Bus       *ProgressBus
	Opts      InvocationOpts
	OutputDir string
}

// Session is the state machine driving one user-initiated download from
// acceptance to terminal outcome. It lives entirely within the handling
// goroutine's call stack; no shared session table exists.
type Session struct {
	ID         string
	Request    models.DownloadRequest
	Expression string
	Attempts   []Attempt

	deps         SessionDeps
	state        State
	probe        *models.ProbeResult
	terminalSent bool
	artifactPath string
}

// NewSession validates and accepts a download request. An empty URL is
// rejected immediately with no retry.
func NewSession(req models.DownloadRequest, deps SessionDeps) (*Session, error) {
	canonical, err := parsing.CanonicalURL(req.URL)
	if err != nil {
		return nil, err
	}
	req.URL = canonical

	return &Session{
		ID:      uuid.NewString(),
		Request: req,
		deps:    deps,
		state:   StateIdle,
	}, nil
}

// ArtifactName returns the final artifact's filename.
func (s *Session) ArtifactName() string {
	return s.ID + consts.FinalExt
}

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Run drives the session to a terminal state and returns the artifact
// filename on success. Exactly one terminal progress event is emitted per
// session regardless of how Run exits.
func (s *Session) Run(ctx context.Context) (string, error) {
	file, err := s.run(ctx)
	if err != nil {
		s.state = StateFailed
		s.publishTerminal(models.ErrorEvent("Download failed", parsing.Tail(err.Error(), consts.TailLong)))
		return "", err
	}

	s.state = StateCompleted
	s.publishTerminal(models.CompleteEvent(file))
	return file, nil
}

func (s *Session) run(ctx context.Context) (string, error) {
	s.artifactPath = filepath.Join(s.deps.OutputDir, s.ArtifactName())

	// Selecting: probe failure degrades selection, never fails the session.
	s.state = StateSelecting
	s.publish(models.StatusEvent(PhaseConnecting))
	if probe, err := s.deps.Prober.Probe(ctx, s.Request.URL); err != nil {
		logging.W("Probe failed for %q, format selection degrades to best-effort: %v", s.Request.URL, err)
	} else {
		s.probe = probe
	}
	s.Expression = SelectFormat(s.probe, s.Request.VideoItag, s.Request.AudioItag)
	logging.I("Session %s: selected format expression %q", s.ID, s.Expression)

	// Attempting / Verifying: whole-pipeline retries wrap the executor's own
	// strategy fallbacks. Both layers are bounded.
	var lastErr error
	for attempt := 0; attempt <= consts.PipelineRetries; attempt++ {
		if attempt > 0 {
			logging.I("Session %s: retrying download (attempt %d/%d)", s.ID, attempt+1, consts.PipelineRetries+1)
			select {
			case <-time.After(consts.PipelineRetryBackoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		if err := s.attemptOnce(ctx); err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return "", fmt.Errorf("download failed after %d attempts: %w", consts.PipelineRetries+1, lastErr)
	}

	// EmbeddingMetadata: best-effort, the untagged artifact stays usable.
	s.state = StateEmbedding
	s.publish(models.StatusEvent(PhaseFinalizing))
	s.embedMetadata(ctx)

	// CleaningUp: stray same-prefix intermediates only.
	s.state = StateCleaningUp
	s.cleanup()

	return s.ArtifactName(), nil
}

// attemptOnce runs one full strategy-executor pass plus verification. Every
// attempt the executor made, failed or winning, lands in the session's
// ordered attempt log.
func (s *Session) attemptOnce(ctx context.Context) error {
	s.state = StateAttempting
	base := BaseDownloadArgs(s.Request.URL, filepath.Join(s.deps.OutputDir, s.ID), s.Expression, s.deps.Opts)

	res, err := s.deps.Executor.Execute(ctx, base, s.onOutputLine)
	if err != nil {
		var ex *ExhaustedError
		if errors.As(err, &ex) {
			s.Attempts = append(s.Attempts, ex.Attempts...)
		}
		return err
	}

	// Verifying: the tool can exit 0 without producing the artifact.
	s.state = StateVerifying
	info, err := os.Stat(s.artifactPath)
	if err != nil {
		s.Attempts = append(s.Attempts, Attempt{Label: res.Label, ExitCode: res.Result.ExitCode, Outcome: "artifact missing"})
		return fmt.Errorf("expected artifact %s missing after exit 0: %w", s.ArtifactName(), err)
	}
	if info.Size() == 0 {
		s.Attempts = append(s.Attempts, Attempt{Label: res.Label, ExitCode: res.Result.ExitCode, Outcome: "artifact empty"})
		return fmt.Errorf("artifact %s is empty", s.ArtifactName())
	}
	s.Attempts = append(s.Attempts, Attempt{Label: res.Label, ExitCode: res.Result.ExitCode, Outcome: "ok"})
	return nil
}

// onOutputLine feeds live tool output through the parser into the bus.
// Terminal-kind parser events are demoted here: a session emits its single
// terminal event only from Run.
func (s *Session) onOutputLine(line string) {
	ev, ok := ParseProgressLine(line)
	if !ok {
		return
	}
	if ev.Terminal() {
		logging.D(2, "Session %s: suppressing mid-stream terminal event from line %q", s.ID, line)
		return
	}
	s.publish(ev)
}

func (s *Session) embedMetadata(ctx context.Context) {
	meta := models.EmbedMeta{}
	probe := s.probe
	if probe == nil {
		// Selection ran without a probe; one more try purely for tags.
		var err error
		if probe, err = s.deps.Prober.Probe(ctx, s.Request.URL); err != nil {
			logging.W("Session %s: no metadata available for embedding: %v", s.ID, err)
			return
		}
	}
	meta.Title = probe.Title
	meta.Artist = probe.Uploader
	meta.ThumbnailURL = probe.ThumbnailURL

	if err := s.deps.Embedder.Embed(ctx, s.artifactPath, meta); err != nil {
		logging.W("Session %s: metadata embedding failed, artifact left untagged: %v", s.ID, err)
	}
}

// cleanup removes files sharing the session's identifier prefix but not the
// final extension. The artifact itself is never touched, and other sessions'
// files are out of reach by prefix construction.
func (s *Session) cleanup() {
	entries, err := os.ReadDir(s.deps.OutputDir)
	if err != nil {
		logging.W("Session %s: cleanup skipped: %v", s.ID, err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, s.ID) || strings.HasSuffix(name, consts.FinalExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.deps.OutputDir, name)); err != nil {
			logging.W("Session %s: failed to remove stray file %q: %v", s.ID, name, err)
		}
	}
}

func (s *Session) publish(ev models.ProgressEvent) {
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(ev)
	}
}

// publishTerminal emits at most one terminal event per session.
func (s *Session) publishTerminal(ev models.ProgressEvent) {
	if s.terminalSent {
		return
	}
	s.terminalSent = true
	s.publish(ev)
}
