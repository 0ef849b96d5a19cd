// Package server exposes the HTTP/JSON surface consumed by the browser UI.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vidgrab/internal/domain/consts"
	"vidgrab/internal/downloads"
	"vidgrab/internal/utils/logging"
)

// Config holds the resolved runtime settings the handlers need.
type Config struct {
	Port       string
	OutputDir  string
	BinDir     string
	PublicDir  string
	YtdlpPath  string
	FFmpegPath string
	CookieFile string
	Proxy      string
}

// Server wires the handlers to their collaborators. The progress bus and
// executors are injected at construction; nothing here is package-global.
type Server struct {
	cfg      Config
	bus      *downloads.ProgressBus
	prober   downloads.Prober
	embedder downloads.Embedder
	executor *downloads.StrategyExecutor

	// Sessions run against this context rather than the request's: a closed
	// progress connection or aborted POST must not kill a running download.
	baseCtx context.Context
}

// New builds a Server.
func New(ctx context.Context, cfg Config, bus *downloads.ProgressBus, prober downloads.Prober, embedder downloads.Embedder, executor *downloads.StrategyExecutor) *Server {
	return &Server{
		cfg:      cfg,
		bus:      bus,
		prober:   prober,
		embedder: embedder,
		executor: executor,
		baseCtx:  ctx,
	}
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully and tears down the progress bus.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.S("vidgrab server running on http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.ServerShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.bus.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
