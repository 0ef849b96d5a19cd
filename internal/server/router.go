package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router assembles the API routes, the artifact file server, and the static
// browser UI.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/info", s.handleInfo)
		r.Post("/check-format", s.handleCheckFormat)
		r.Post("/download", s.handleDownload)
		r.Get("/download/progress", s.handleProgress)
		r.Get("/probe", s.handleProbe)
	})

	r.Get("/downloads/{file}", s.handleServeDownload)

	if s.cfg.PublicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.PublicDir)))
	}

	return r
}
