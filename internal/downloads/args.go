package downloads

import (
	"vidgrab/internal/domain/command"
)

// BaseDownloadArgs builds the argument set for one download invocation.
// Strategy transforms are layered on top of this by the executor. The target
// URL must stay last.
func BaseDownloadArgs(url, outputBase, formatExpr string, opts InvocationOpts) []string {
	args := make([]string, 0, 32)
	args = append(args,
		command.Verbose,
		command.IgnoreConfig,
		command.NoWarnings,
		command.IgnoreErrors,
		command.NoCheckCertificate,
		command.Newline,
		command.Progress,
		command.NoPlaylist,
	)

	if opts.BinDir != "" {
		args = append(args, command.FFmpegLocation, opts.BinDir)
	}
	args = append(args, command.BrowserHeaders...)
	args = appendCommonOpts(args, opts)

	args = append(args,
		command.Output, outputBase+command.OutputTemplateSuffix,
		command.Format, formatExpr,
		command.MergeOutputFormat, "mp4",
		command.PostprocessorArgs, command.MergePostprocessorArgs,
	)

	return append(args, url)
}

// BaseProbeArgs builds the argument set for one metadata probe invocation.
func BaseProbeArgs(url string, opts InvocationOpts) []string {
	args := make([]string, 0, 16)
	args = append(args,
		command.IgnoreConfig,
		command.DumpJSON,
		command.NoWarnings,
		command.IgnoreErrors,
		command.NoCheckCertificate,
		command.NoPlaylist,
	)
	args = append(args, command.BrowserHeaders...)
	args = appendCommonOpts(args, opts)
	return append(args, url)
}

// appendCommonOpts injects the deployment-wide cookie and proxy
// augmentations shared by probes and downloads.
func appendCommonOpts(args []string, opts InvocationOpts) []string {
	if opts.CookieFile != "" {
		args = append(args, command.CookiePath, opts.CookieFile)
	}
	if opts.Proxy != "" {
		args = append(args, command.Proxy, opts.Proxy)
	}
	return args
}
