package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"path/filepath"
	"strings"

	"vidgrab/internal/domain/consts"
	"vidgrab/internal/downloads"
	"vidgrab/internal/models"
	"vidgrab/internal/parsing"
	fsutils "vidgrab/internal/utils/fs"
	"vidgrab/internal/utils/logging"

	"github.com/go-chi/chi/v5"
)

type urlRequest struct {
	URL string `json:"url"`
}

type infoResponse struct {
	Title        string               `json:"title"`
	Thumbnail    string               `json:"thumbnail"`
	Duration     string               `json:"duration"`
	Views        string               `json:"views"`
	Date         string               `json:"date"`
	Uploader     string               `json:"uploader"`
	Formats      []models.VideoFormat `json:"formats"`
	AudioFormats []models.AudioFormat `json:"audioFormats"`
}

// handleInfo probes a URL and returns display-ready metadata plus the
// selectable format tables.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	url, err := parsing.CanonicalURL(req.URL)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing URL", "")
		return
	}

	probe, err := s.prober.Probe(r.Context(), url)
	if err != nil {
		logging.E("Info probe failed for %q: %v", url, err)
		respondError(w, http.StatusInternalServerError, "Failed to get video info", parsing.Tail(err.Error(), consts.TailLong))
		return
	}

	resp := infoResponse{
		Title:        probe.Title,
		Thumbnail:    probe.ThumbnailURL,
		Duration:     parsing.FormatDuration(probe.Duration),
		Views:        parsing.FormatViews(probe.ViewCount),
		Date:         parsing.FormatUploadDate(probe.UploadDate),
		Uploader:     probe.Uploader,
		Formats:      probe.VideoFormats,
		AudioFormats: probe.AudioFormats,
	}
	if resp.Formats == nil {
		resp.Formats = []models.VideoFormat{}
	}
	if resp.AudioFormats == nil {
		resp.AudioFormats = []models.AudioFormat{}
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleCheckFormat validates a requested itag pairing against a fresh probe
// and returns the expression a download with that pairing would use.
func (s *Server) handleCheckFormat(w http.ResponseWriter, r *http.Request) {
	var req models.DownloadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	url, err := parsing.CanonicalURL(req.URL)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing URL", "")
		return
	}

	probe, err := s.prober.Probe(r.Context(), url)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to validate format", parsing.Tail(err.Error(), consts.TailLong))
		return
	}

	if req.VideoItag != "" {
		if _, ok := probe.VideoFormat(req.VideoItag); !ok {
			respondError(w, http.StatusBadRequest, "Requested video format is not available", req.VideoItag)
			return
		}
	}
	if req.AudioItag != "" {
		if _, ok := probe.AudioFormat(req.AudioItag); !ok {
			respondError(w, http.StatusBadRequest, "Requested audio format is not available", req.AudioItag)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"format": downloads.SelectFormat(probe, req.VideoItag, req.AudioItag),
	})
}

// handleDownload runs a full download session synchronously and returns the
// artifact's serving path. The session runs on the server's base context, so
// a client that drops the POST mid-flight does not abort the download.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req models.DownloadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	url, err := parsing.CanonicalURL(req.URL)
	if err != nil {
		if errors.Is(err, parsing.ErrEmptyURL) {
			respondError(w, http.StatusBadRequest, "Missing URL", "")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid URL", err.Error())
		return
	}
	req.URL = url

	file, err := s.runSession(req)
	if err != nil && downloads.IsFormatUnavailable(err) && (req.VideoItag != "" || req.AudioItag != "") {
		// The explicit pairing is gone upstream; retry once letting the
		// selector fall back to its default expression.
		logging.W("Requested formats unavailable for %q, retrying with automatic selection", req.URL)
		retry := models.DownloadRequest{URL: req.URL}
		file, err = s.runSession(retry)
	}
	if err != nil {
		logging.E("Download failed for %q: %v", req.URL, err)
		respondError(w, http.StatusInternalServerError, "Download failed after retries", parsing.Tail(err.Error(), consts.TailLong))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"file":        file,
		"downloadUrl": "/downloads/" + file,
	})
}

func (s *Server) runSession(req models.DownloadRequest) (string, error) {
	sess, err := downloads.NewSession(req, downloads.SessionDeps{
		Executor: s.executor,
		Prober:   s.prober,
		Embedder: s.embedder,
		Bus:      s.bus,
		Opts: downloads.InvocationOpts{
			CookieFile: s.cfg.CookieFile,
			Proxy:      s.cfg.Proxy,
			BinDir:     s.cfg.BinDir,
		},
		OutputDir: s.cfg.OutputDir,
	})
	if err != nil {
		return "", err
	}
	return sess.Run(s.baseCtx)
}

// handleProgress streams progress events over SSE until the client leaves.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.C:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logging.E("failed to marshal progress event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// handleServeDownload serves a finished artifact as an attachment. The path
// parameter is reduced to its base name so it can only name files directly
// inside the output directory.
func (s *Server) handleServeDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "file"))
	if name == "." || name == "/" || strings.HasPrefix(name, ".") {
		respondError(w, http.StatusBadRequest, "Invalid filename", "")
		return
	}

	path := filepath.Join(s.cfg.OutputDir, name)
	if !fsutils.Exists(path) {
		respondError(w, http.StatusNotFound, "File not found", "")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

type toolStatus struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// handleProbe reports whether the external tools and cookie file the server
// depends on are actually present.
func (s *Server) handleProbe(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]toolStatus{
		"yt_dlp":      binaryStatus(s.cfg.YtdlpPath),
		"ffmpeg":      binaryStatus(s.cfg.FFmpegPath),
		"cookie_file": {Path: s.cfg.CookieFile, Exists: s.cfg.CookieFile != "" && fsutils.Exists(s.cfg.CookieFile)},
	})
}

func binaryStatus(path string) toolStatus {
	if strings.ContainsRune(path, filepath.Separator) {
		return toolStatus{Path: path, Exists: fsutils.Exists(path)}
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return toolStatus{Path: path, Exists: false}
	}
	return toolStatus{Path: resolved, Exists: true}
}
