// Package main is the entrypoint of vidgrab.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"vidgrab/internal/cfg"
	"vidgrab/internal/domain/command"
	"vidgrab/internal/domain/consts"
	"vidgrab/internal/domain/keys"
	"vidgrab/internal/downloads"
	"vidgrab/internal/metadata"
	"vidgrab/internal/process"
	"vidgrab/internal/scraper"
	"vidgrab/internal/server"
	fsutils "vidgrab/internal/utils/fs"
	"vidgrab/internal/utils/logging"

	"github.com/spf13/viper"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("vidgrab exiting with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := cfg.InitCommands(); err != nil {
		return err
	}
	if err := cfg.Execute(); err != nil {
		return err
	}
	if !cfg.ShouldRun() {
		return nil
	}

	logging.Level = viper.GetInt(keys.DebugLevel)

	outputDir := viper.GetString(keys.OutputDir)
	binDir := viper.GetString(keys.BinDir)
	if err := fsutils.EnsureDirs(outputDir, binDir); err != nil {
		return err
	}

	logFile, err := os.OpenFile("vidgrab.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logging.W("Could not open log file, console only: %v", err)
	} else {
		logging.SetFile(logFile)
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cookieFile := prepareCookieFile(ctx, binDir)

	ytdlpPath := fsutils.ResolveBinary(binDir, "yt-dlp")
	ffmpegPath := fsutils.ResolveBinary(binDir, "ffmpeg")

	ytdlpRunner := &process.ExecRunner{Tag: "yt-dlp"}
	ffmpegRunner := &process.ExecRunner{Tag: "ffmpeg"}
	reportVersion(ctx, ytdlpRunner, ytdlpPath, command.Version)
	reportVersion(ctx, ffmpegRunner, ffmpegPath, command.FFVersion)

	opts := downloads.InvocationOpts{
		CookieFile: cookieFile,
		Proxy:      viper.GetString(keys.Proxy),
		BinDir:     binDir,
	}
	unplayable := viper.GetStringSlice(keys.UnplayablePhrases)

	probeExecutor := &downloads.StrategyExecutor{
		Runner:     ytdlpRunner,
		Exe:        ytdlpPath,
		Timeout:    consts.ProbeTimeout,
		Strategies: downloads.DefaultStrategies(opts),
		Unplayable: unplayable,
	}
	downloadExecutor := &downloads.StrategyExecutor{
		Runner:     ytdlpRunner,
		Exe:        ytdlpPath,
		Timeout:    consts.DownloadTimeout,
		Strategies: downloads.DefaultStrategies(opts),
		Unplayable: unplayable,
	}

	prober := &metadata.Prober{Executor: probeExecutor, Opts: opts}
	embedder := metadata.NewEmbedder(ffmpegRunner, ffmpegPath, outputDir)
	bus := downloads.NewProgressBus()

	srv := server.New(ctx, server.Config{
		Port:       viper.GetString(keys.Port),
		OutputDir:  outputDir,
		BinDir:     binDir,
		PublicDir:  viper.GetString(keys.PublicDir),
		YtdlpPath:  ytdlpPath,
		FFmpegPath: ffmpegPath,
		CookieFile: cookieFile,
		Proxy:      opts.Proxy,
	}, bus, prober, embedder, downloadExecutor)

	return srv.Start(ctx)
}

// prepareCookieFile resolves the cookie file location and populates it from
// the environment or a live browser when asked to. Returns "" when no usable
// cookie file exists; downloads then run without cookies.
func prepareCookieFile(ctx context.Context, binDir string) string {
	cookieFile := viper.GetString(keys.CookieFile)
	if cookieFile == "" {
		cookieFile = filepath.Join(binDir, "cookies.txt")
	}

	if err := scraper.BootstrapCookieFile(os.Getenv(keys.EnvCookies), cookieFile); err != nil {
		logging.W("Cookie bootstrap from environment failed: %v", err)
	}
	if viper.GetString(keys.CookieSource) != "" {
		if err := scraper.ExportBrowserCookies(ctx, "https://www.youtube.com", cookieFile); err != nil {
			logging.W("Browser cookie export failed: %v", err)
		}
	}

	if !fsutils.Exists(cookieFile) {
		return ""
	}
	return cookieFile
}

// reportVersion logs each external tool's version at startup so a broken
// deployment is visible before the first request.
func reportVersion(ctx context.Context, r process.Runner, exe, versionFlag string) {
	res, err := r.Run(ctx, exe, []string{versionFlag}, nil, consts.VersionTimeout, nil)
	if err != nil {
		logging.W("%s is not available: %v", filepath.Base(exe), err)
		return
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	logging.S("%s: %s", filepath.Base(exe), line)
}
