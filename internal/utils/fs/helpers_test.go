package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirs(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	nested := filepath.Join(base, "a", "b")
	if err := EnsureDirs(filepath.Join(base, "x"), nested); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "x"), nested} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("%s not created as directory: %v", dir, err)
		}
	}

	// Re-running over existing directories is fine.
	if err := EnsureDirs(nested); err != nil {
		t.Errorf("EnsureDirs on existing dir: %v", err)
	}
}

func TestResolveBinary(t *testing.T) {
	t.Parallel()

	binDir := t.TempDir()
	bundled := filepath.Join(binDir, "yt-dlp")
	if err := os.WriteFile(bundled, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := ResolveBinary(binDir, "yt-dlp"); got != bundled {
		t.Errorf("ResolveBinary = %q, want bundled %q", got, bundled)
	}
	// Absent from the bin dir falls back to the bare name for PATH lookup.
	if got := ResolveBinary(binDir, "ffmpeg"); got != "ffmpeg" {
		t.Errorf("ResolveBinary = %q, want ffmpeg", got)
	}
}

func TestExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if Exists(file) {
		t.Error("Exists true for missing file")
	}
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(file) {
		t.Error("Exists false for present file")
	}
}
