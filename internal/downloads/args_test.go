package downloads

import (
	"testing"

	"vidgrab/internal/domain/command"
)

func TestBaseDownloadArgs(t *testing.T) {
	t.Parallel()

	opts := InvocationOpts{CookieFile: "/tmp/cookies.txt", Proxy: "http://proxy:8080", BinDir: "/opt/bin"}
	args := BaseDownloadArgs("https://example.com/v", "/downloads/id", DefaultExpression, opts)

	if args[len(args)-1] != "https://example.com/v" {
		t.Errorf("URL must be the final argument, got %q", args[len(args)-1])
	}

	pairs := map[string]string{
		command.Output:            "/downloads/id" + command.OutputTemplateSuffix,
		command.Format:            DefaultExpression,
		command.MergeOutputFormat: "mp4",
		command.PostprocessorArgs: command.MergePostprocessorArgs,
		command.CookiePath:        "/tmp/cookies.txt",
		command.Proxy:             "http://proxy:8080",
		command.FFmpegLocation:    "/opt/bin",
	}
	for flag, want := range pairs {
		if got, ok := argValue(args, flag); !ok || got != want {
			t.Errorf("flag %s = %q (found=%v), want %q", flag, got, ok, want)
		}
	}

	for _, flag := range []string{command.Verbose, command.IgnoreConfig, command.Newline, command.Progress, command.NoPlaylist} {
		if countArg(args, flag) != 1 {
			t.Errorf("flag %s appears %d times, want 1", flag, countArg(args, flag))
		}
	}
}

func TestBaseDownloadArgsOmitsEmptyOpts(t *testing.T) {
	t.Parallel()

	args := BaseDownloadArgs("url", "base", DefaultExpression, InvocationOpts{})
	for _, flag := range []string{command.CookiePath, command.Proxy, command.FFmpegLocation} {
		if countArg(args, flag) != 0 {
			t.Errorf("flag %s present without a configured value", flag)
		}
	}
}

func TestBaseProbeArgs(t *testing.T) {
	t.Parallel()

	args := BaseProbeArgs("https://example.com/v", InvocationOpts{})
	if args[len(args)-1] != "https://example.com/v" {
		t.Errorf("URL must be the final argument, got %q", args[len(args)-1])
	}
	if countArg(args, command.DumpJSON) != 1 {
		t.Error("probe args missing JSON dump flag")
	}
	if countArg(args, command.Format) != 0 {
		t.Error("probe args must not carry a format expression")
	}
}

func argValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}
