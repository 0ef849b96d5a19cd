// Package process runs external commands with incremental output capture and
// hard wall-clock timeouts.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"vidgrab/internal/parsing"
	"vidgrab/internal/utils/logging"
)

// Result holds the outcome of a completed invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Combined returns stdout and stderr joined for signature matching.
func (r *Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// Error is a structured invocation failure.
type Error struct {
	ExitCode int // -1 when the process never ran or was killed
	Output   string
	Timeout  bool
	Err      error
}

func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("process timed out: %v", e.Err)
	}
	return fmt.Sprintf("process exited %d: %v", e.ExitCode, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// LineFunc receives each output line as it arrives.
type LineFunc func(line string)

// Runner runs an external command to completion.
type Runner interface {
	Run(ctx context.Context, exe string, args []string, env []string, timeout time.Duration, onLine LineFunc) (*Result, error)
}

// ExecRunner is the os/exec-backed Runner. Tag prefixes mirrored output
// lines in the server's own diagnostics.
type ExecRunner struct {
	Tag string
}

// Run starts exe with args and waits for completion or timeout. stdout and
// stderr are captured incrementally; every line is mirrored to the server
// log and handed to onLine when set. On timeout the process group is killed
// and a timeout Error is returned.
func (r *ExecRunner) Run(ctx context.Context, exe string, args []string, env []string, timeout time.Duration, onLine LineFunc) (*Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	if env != nil {
		cmd.Env = env
	}

	// Process group so the kill also reaches the tool's own children
	// (e.g. its merge subprocess).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &Error{ExitCode: -1, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &Error{ExitCode: -1, Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	logging.D(1, "Running command: %s %s", exe, strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return nil, &Error{ExitCode: -1, Err: fmt.Errorf("failed to start %s: %w", exe, err)}
	}

	var (
		wg       sync.WaitGroup
		outText  strings.Builder
		errText  strings.Builder
		captured = []struct {
			src  *bufio.Scanner
			dest *strings.Builder
		}{
			{bufio.NewScanner(stdout), &outText},
			{bufio.NewScanner(stderr), &errText},
		}
	)

	for _, c := range captured {
		wg.Add(1)
		c.src.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		go func(sc *bufio.Scanner, b *strings.Builder) {
			defer wg.Done()
			for sc.Scan() {
				line := sc.Text()
				b.WriteString(line)
				b.WriteByte('\n')
				if r.Tag != "" {
					logging.P("[%s] %s", r.Tag, line)
				}
				if onLine != nil {
					onLine(line)
				}
			}
		}(c.src, c.dest)
	}

	wg.Wait()
	waitErr := cmd.Wait()

	res := &Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   outText.String(),
		Stderr:   errText.String(),
	}

	if waitErr == nil {
		return res, nil
	}

	output := parsing.Tail(res.Combined(), 1000)
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &Error{ExitCode: -1, Output: output, Timeout: true, Err: ctx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return nil, &Error{ExitCode: exitErr.ExitCode(), Output: output, Err: waitErr}
	}
	return nil, &Error{ExitCode: -1, Output: output, Err: waitErr}
}

// IsTimeout reports whether err is a process timeout failure.
func IsTimeout(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Timeout
}
