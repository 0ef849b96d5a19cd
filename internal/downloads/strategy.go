// Package downloads implements the download orchestration core: fallback
// strategy execution, format selection, progress parsing, the progress bus,
// and the per-request download session.
package downloads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidgrab/internal/domain/command"
	"vidgrab/internal/domain/consts"
	"vidgrab/internal/parsing"
	"vidgrab/internal/process"
	"vidgrab/internal/utils/logging"
)

// Strategy is one fallback variant: a label plus an argument transformation
// applied on top of the base argument set.
type Strategy struct {
	Label     string
	Transform func(base []string) []string
}

// InvocationOpts carries the per-deployment augmentations injected into
// every extraction-tool invocation.
type InvocationOpts struct {
	CookieFile string // Netscape cookie file, injected when it exists
	Proxy      string
	BinDir     string // ffmpeg location hint for downloads
}

// DefaultStrategies returns the ordered fallback variants. The first clean
// success wins; later entries progressively loosen extractor behavior.
func DefaultStrategies(opts InvocationOpts) []Strategy {
	return []Strategy{
		{
			Label:     "standard",
			Transform: func(base []string) []string { return base },
		},
		{
			Label: "geo-bypass",
			Transform: func(base []string) []string {
				return append([]string{command.GeoBypass, command.AllowUnplayable}, base...)
			},
		},
		{
			Label: "alt-client",
			Transform: func(base []string) []string {
				return append([]string{command.ExtractorArgs, command.AltPlayerClient}, base...)
			},
		},
		{
			// Cookie and proxy augmentation for attempts where the base
			// invocation did not already carry them.
			Label: "cookies-proxy",
			Transform: func(base []string) []string {
				var extra []string
				if opts.CookieFile != "" && !hasArg(base, command.CookiePath) {
					extra = append(extra, command.CookiePath, opts.CookieFile)
				}
				if opts.Proxy != "" && !hasArg(base, command.Proxy) {
					extra = append(extra, command.Proxy, opts.Proxy)
				}
				return append(extra, base...)
			},
		},
	}
}

// Attempt summarizes one strategy attempt for diagnostics.
type Attempt struct {
	Label    string
	ExitCode int
	Outcome  string
}

// ExhaustedError aggregates every attempt's failure after all strategies
// have been tried.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all %d download strategies failed:", len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n[%s] exit %d: %s", a.Label, a.ExitCode, a.Outcome)
	}
	return b.String()
}

// StrategyResult is the winning attempt's output.
type StrategyResult struct {
	Label  string
	Result *process.Result
}

// StrategyExecutor drives the Runner through the ordered strategy list. The
// same executor shape serves both metadata probes and downloads.
type StrategyExecutor struct {
	Runner     process.Runner
	Exe        string
	Timeout    time.Duration
	Strategies []Strategy
	Unplayable []string // lowercase soft-failure signatures
}

// Execute tries each strategy in order until one produces exit 0 with no
// unplayable signature. Hard failures (non-zero exit, spawn error, timeout)
// and soft failures both advance to the next variant; exhaustion returns an
// ExhaustedError carrying one bounded summary per attempt.
func (e *StrategyExecutor) Execute(ctx context.Context, baseArgs []string, onLine process.LineFunc) (*StrategyResult, error) {
	if len(e.Strategies) == 0 {
		return nil, errors.New("no strategies configured")
	}

	attempts := make([]Attempt, 0, len(e.Strategies))
	for _, s := range e.Strategies {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		args := s.Transform(baseArgs)
		res, err := e.Runner.Run(ctx, e.Exe, args, nil, e.Timeout, onLine)
		if err != nil {
			var pe *process.Error
			code := -1
			out := err.Error()
			if errors.As(err, &pe) {
				code = pe.ExitCode
				if pe.Output != "" {
					out = pe.Output
				}
			}
			logging.W("Strategy %q failed (exit %d), trying next", s.Label, code)
			attempts = append(attempts, Attempt{
				Label:    s.Label,
				ExitCode: code,
				Outcome:  parsing.Tail(out, consts.TailShort),
			})
			continue
		}

		if phrase, soft := e.unplayableSignature(res.Combined()); soft {
			// Exit 0 but the content never actually resolved.
			logging.W("Strategy %q soft-failed (%q), trying next", s.Label, phrase)
			attempts = append(attempts, Attempt{
				Label:    s.Label,
				ExitCode: res.ExitCode,
				Outcome:  "unplayable content: " + phrase,
			})
			continue
		}

		logging.D(1, "Strategy %q succeeded after %d failed attempts", s.Label, len(attempts))
		return &StrategyResult{Label: s.Label, Result: res}, nil
	}

	return nil, &ExhaustedError{Attempts: attempts}
}

func hasArg(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func (e *StrategyExecutor) unplayableSignature(output string) (string, bool) {
	lower := strings.ToLower(output)
	for _, phrase := range e.Unplayable {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return phrase, true
		}
	}
	return "", false
}

// IsFormatUnavailable reports whether err carries the extraction tool's
// "requested format is not available" diagnostic, which callers may answer
// with a single best-available retry.
func IsFormatUnavailable(err error) bool {
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		return false
	}
	for _, a := range ex.Attempts {
		if strings.Contains(strings.ToLower(a.Outcome), consts.FormatUnavailableSignature) {
			return true
		}
	}
	return false
}
