package process

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesOutput(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{}
	var lines []string
	res, err := r.Run(context.Background(), "sh", []string{"-c", "echo one; echo two >&2"}, nil, 10*time.Second, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "one") {
		t.Errorf("stdout = %q, want to contain one", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "two") {
		t.Errorf("stderr = %q, want to contain two", res.Stderr)
	}
	if len(lines) != 2 {
		t.Errorf("onLine saw %d lines, want 2", len(lines))
	}
	if !strings.Contains(res.Combined(), "one") || !strings.Contains(res.Combined(), "two") {
		t.Errorf("Combined() = %q missing streams", res.Combined())
	}
}

func TestRunNonZeroExit(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{}
	_, err := r.Run(context.Background(), "sh", []string{"-c", "echo sad; exit 3"}, nil, 10*time.Second, nil)
	if err == nil {
		t.Fatal("expected an error for exit 3")
	}

	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", pe.ExitCode)
	}
	if !strings.Contains(pe.Output, "sad") {
		t.Errorf("captured output %q missing process output", pe.Output)
	}
	if pe.Timeout {
		t.Error("timeout flag set for a plain exit failure")
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{}
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep", []string{"30"}, nil, 500*time.Millisecond, nil)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("timeout took %v, process was not killed promptly", elapsed)
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false, want true", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{}
	_, err := r.Run(context.Background(), "definitely-not-a-real-binary-xyz", nil, nil, time.Second, nil)
	if err == nil {
		t.Fatal("expected a start failure")
	}

	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if pe.ExitCode != -1 {
		t.Errorf("exit code = %d, want -1 for a never-started process", pe.ExitCode)
	}
	if IsTimeout(err) {
		t.Error("start failure misreported as timeout")
	}
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	if IsTimeout(nil) {
		t.Error("nil should not be a timeout")
	}
	if IsTimeout(errors.New("plain")) {
		t.Error("plain error should not be a timeout")
	}
	if !IsTimeout(&Error{Timeout: true, Err: context.DeadlineExceeded}) {
		t.Error("timeout Error should match")
	}
}
