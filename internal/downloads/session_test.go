package downloads

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"vidgrab/internal/domain/command"
	"vidgrab/internal/models"
	"vidgrab/internal/parsing"
	"vidgrab/internal/process"
)

// artifactRunner simulates the extraction tool: it emits scripted output
// lines and writes the expected artifact (plus optional intermediates) into
// the output directory parsed from the invocation's -o flag.
type artifactRunner struct {
	calls        int
	failFirst    int      // fail this many calls before succeeding
	skipArtifact bool     // exit 0 without producing the file
	intermediate []string // extra suffixes written alongside the artifact
	lines        []string
}

func (r *artifactRunner) Run(_ context.Context, _ string, args []string, _ []string, _ time.Duration, onLine process.LineFunc) (*process.Result, error) {
	r.calls++
	if r.calls <= r.failFirst {
		return nil, &process.Error{ExitCode: 1, Output: "ERROR: boom", Err: errors.New("exit status 1")}
	}

	if onLine != nil {
		for _, line := range r.lines {
			onLine(line)
		}
	}

	base, ok := argValue(args, command.Output)
	if !ok {
		return nil, errors.New("no output flag in args")
	}
	base = strings.TrimSuffix(base, command.OutputTemplateSuffix)

	if !r.skipArtifact {
		if err := os.WriteFile(base+".mp4", []byte("video bytes"), 0o644); err != nil {
			return nil, err
		}
	}
	for _, suffix := range r.intermediate {
		if err := os.WriteFile(base+suffix, []byte("partial"), 0o644); err != nil {
			return nil, err
		}
	}
	return &process.Result{ExitCode: 0, Stdout: "done"}, nil
}

type fakeProber struct {
	probe *models.ProbeResult
	err   error
	calls int
}

func (p *fakeProber) Probe(context.Context, string) (*models.ProbeResult, error) {
	p.calls++
	return p.probe, p.err
}

type fakeEmbedder struct {
	calls int
	err   error
	meta  models.EmbedMeta
}

func (e *fakeEmbedder) Embed(_ context.Context, _ string, meta models.EmbedMeta) error {
	e.calls++
	e.meta = meta
	return e.err
}

func newSessionDeps(t *testing.T, runner process.Runner, prober Prober, embedder Embedder) (SessionDeps, *ProgressBus) {
	t.Helper()
	bus := NewProgressBus()
	t.Cleanup(bus.Close)
	return SessionDeps{
		Executor: &StrategyExecutor{
			Runner:     runner,
			Exe:        "yt-dlp",
			Timeout:    time.Minute,
			Strategies: DefaultStrategies(InvocationOpts{}),
		},
		Prober:    prober,
		Embedder:  embedder,
		Bus:       bus,
		OutputDir: t.TempDir(),
	}, bus
}

func drainEvents(sub *Subscription) []models.ProgressEvent {
	var events []models.ProgressEvent
	for {
		select {
		case ev := <-sub.C:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func countTerminal(events []models.ProgressEvent) int {
	n := 0
	for _, ev := range events {
		if ev.Terminal() {
			n++
		}
	}
	return n
}

func TestSessionRejectsEmptyURL(t *testing.T) {
	t.Parallel()

	deps, _ := newSessionDeps(t, &artifactRunner{}, &fakeProber{}, &fakeEmbedder{})
	if _, err := NewSession(models.DownloadRequest{}, deps); !errors.Is(err, parsing.ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
}

func TestSessionSuccess(t *testing.T) {
	t.Parallel()

	runner := &artifactRunner{
		intermediate: []string{".f137.mp4.part", ".temp.webm"},
		lines:        []string{"[download]  50.0% of 10MiB"},
	}
	prober := &fakeProber{probe: testProbe()}
	embedder := &fakeEmbedder{}
	deps, bus := newSessionDeps(t, runner, prober, embedder)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	sess, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	file, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if file != sess.ArtifactName() {
		t.Errorf("returned file %q, want %q", file, sess.ArtifactName())
	}
	if sess.State() != StateCompleted {
		t.Errorf("state = %v, want completed", sess.State())
	}
	if embedder.calls != 1 {
		t.Errorf("embedder called %d times, want 1", embedder.calls)
	}
	if embedder.meta.Title != "Test Video" {
		t.Errorf("embed title = %q, want Test Video", embedder.meta.Title)
	}

	// The artifact survives cleanup; the intermediates do not.
	entries, err := os.ReadDir(deps.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != sess.ArtifactName() {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("output dir holds %v, want only %q", names, sess.ArtifactName())
	}

	events := drainEvents(sub)
	if n := countTerminal(events); n != 1 {
		t.Errorf("saw %d terminal events, want exactly 1", n)
	}
	last := events[len(events)-1]
	if !last.Complete || last.File != sess.ArtifactName() {
		t.Errorf("final event = %+v, want completion for %q", last, sess.ArtifactName())
	}
}

func TestSessionRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	// One full strategy pass fails hard, the next pipeline attempt succeeds.
	strategyCount := len(DefaultStrategies(InvocationOpts{}))
	runner := &artifactRunner{failFirst: strategyCount}
	deps, _ := newSessionDeps(t, runner, &fakeProber{probe: testProbe()}, &fakeEmbedder{})

	sess, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("Run should recover on the second pipeline attempt: %v", err)
	}
	if runner.calls != strategyCount+1 {
		t.Errorf("runner called %d times, want %d", runner.calls, strategyCount+1)
	}

	// Every attempt is logged in order: one per exhausted strategy, then the
	// winning one.
	if len(sess.Attempts) != strategyCount+1 {
		t.Fatalf("attempt log holds %d entries, want %d", len(sess.Attempts), strategyCount+1)
	}
	for i, a := range sess.Attempts[:strategyCount] {
		if a.Outcome == "ok" {
			t.Errorf("attempt %d (%s) logged as ok, want a failure summary", i, a.Label)
		}
	}
	final := sess.Attempts[strategyCount]
	if final.Outcome != "ok" || final.Label != "standard" {
		t.Errorf("final attempt = %+v, want ok via standard", final)
	}
}

func TestSessionLogsVerificationFailures(t *testing.T) {
	t.Parallel()

	runner := &artifactRunner{skipArtifact: true}
	deps, _ := newSessionDeps(t, runner, &fakeProber{probe: testProbe()}, &fakeEmbedder{})

	sess, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Run(context.Background()); err == nil {
		t.Fatal("expected failure")
	}

	// One verification failure per pipeline attempt, none marked ok.
	if len(sess.Attempts) == 0 {
		t.Fatal("attempt log is empty")
	}
	for i, a := range sess.Attempts {
		if a.Outcome != "artifact missing" {
			t.Errorf("attempt %d outcome = %q, want artifact missing", i, a.Outcome)
		}
	}
}

func TestSessionFailsWhenArtifactMissing(t *testing.T) {
	t.Parallel()

	runner := &artifactRunner{skipArtifact: true}
	deps, bus := newSessionDeps(t, runner, &fakeProber{probe: testProbe()}, &fakeEmbedder{})
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	sess, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sess.Run(context.Background()); err == nil {
		t.Fatal("expected failure when the tool exits 0 without an artifact")
	}
	if sess.State() != StateFailed {
		t.Errorf("state = %v, want failed", sess.State())
	}

	events := drainEvents(sub)
	if n := countTerminal(events); n != 1 {
		t.Errorf("saw %d terminal events, want exactly 1", n)
	}
	last := events[len(events)-1]
	if last.Error == "" {
		t.Errorf("final event = %+v, want an error event", last)
	}
}

func TestSessionSucceedsDespiteEmbedFailure(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{err: errors.New("mux exploded")}
	deps, _ := newSessionDeps(t, &artifactRunner{}, &fakeProber{probe: testProbe()}, embedder)

	sess, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("embed failure must not fail the session: %v", err)
	}
	if embedder.calls != 1 {
		t.Errorf("embedder called %d times, want 1", embedder.calls)
	}
}

func TestSessionSucceedsDespiteProbeFailure(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{err: errors.New("probe down")}
	embedder := &fakeEmbedder{}
	deps, _ := newSessionDeps(t, &artifactRunner{}, prober, embedder)

	sess, err := NewSession(models.DownloadRequest{URL: "https://example.com/v", VideoItag: "137"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("probe failure must not fail the session: %v", err)
	}
	// No probe: the explicit itag passes through unvalidated.
	if sess.Expression != "137" {
		t.Errorf("expression = %q, want pass-through 137", sess.Expression)
	}
	if embedder.calls != 0 {
		t.Error("embedding should be skipped when no metadata ever resolved")
	}
}

func TestSessionSuppressesMidStreamErrorLines(t *testing.T) {
	t.Parallel()

	// A non-fatal ERROR line mid-stream must not produce a terminal event
	// ahead of the session's own completion event.
	runner := &artifactRunner{lines: []string{
		"ERROR: [youtube] fragment 3 not found, skipping",
		"[download] 100% of 10MiB",
	}}
	deps, bus := newSessionDeps(t, runner, &fakeProber{probe: testProbe()}, &fakeEmbedder{})
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	sess, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	events := drainEvents(sub)
	if n := countTerminal(events); n != 1 {
		t.Errorf("saw %d terminal events, want exactly 1", n)
	}
	if last := events[len(events)-1]; !last.Complete {
		t.Errorf("final event = %+v, want completion", last)
	}
}

func TestSessionCanonicalizesURL(t *testing.T) {
	t.Parallel()

	deps, _ := newSessionDeps(t, &artifactRunner{}, &fakeProber{}, &fakeEmbedder{})
	sess, err := NewSession(models.DownloadRequest{URL: "https://youtu.be/abc123"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Request.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("URL = %q, want canonical watch form", sess.Request.URL)
	}
}

func TestSessionArtifactNameUnique(t *testing.T) {
	t.Parallel()

	deps, _ := newSessionDeps(t, &artifactRunner{}, &fakeProber{}, &fakeEmbedder{})
	a, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSession(models.DownloadRequest{URL: "https://example.com/v"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if a.ArtifactName() == b.ArtifactName() {
		t.Error("two sessions produced the same artifact name")
	}
	if !strings.HasSuffix(a.ArtifactName(), ".mp4") {
		t.Errorf("artifact name %q missing final extension", a.ArtifactName())
	}
}
