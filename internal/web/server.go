// Package web provides the HTTP server for the admin panel and the
// results-import API.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/racedesk/racedesk/internal/config"
	"github.com/racedesk/racedesk/internal/results"
	mw "github.com/racedesk/racedesk/internal/web/middleware"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the admin application.
type Server struct {
	cfg      *config.Config
	pool     *pgxpool.Pool
	results  *results.Service
	sessions mw.SessionProvider
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the router, middleware and all routes.
func NewServer(cfg *config.Config, pool *pgxpool.Pool, resultsSvc *results.Service) *Server {
	s := &Server{
		cfg:      cfg,
		pool:     pool,
		results:  resultsSvc,
		sessions: mw.NewTokenProvider(cfg.Admin.Tokens),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(mw.SecurityHeaders)
}

// setupRoutes configures all HTTP routes. Every admin and API route sits
// behind the auth check; static assets do not.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(mw.RequireAdmin(&s.cfg.Admin, s.sessions))

		// Admin pages
		r.Get("/admin", s.handleDashboard)
		r.Route("/admin/{model}", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Get("/new", s.handleNew)
			r.Post("/", s.handleCreate)
			r.Get("/{id}/edit", s.handleEdit)
			r.Post("/{id}", s.handleUpdate)
			r.Post("/delete", s.handleDelete)
		})

		// Results import API
		r.Route("/api/runs/{runID}/results", func(r chi.Router) {
			r.Post("/validate", s.handleValidateResults)
			r.Post("/import", s.handleImportResults)
			r.Post("/recalculate", s.handleRecalculate)
			r.Get("/preview", s.handlePreviewResults)
			r.Get("/export", s.handleExportResults)
		})
	})
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		respondFailureJSON(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	respondMessageJSON(w, "ok")
}

// Start begins listening for HTTP requests and blocks until the server
// stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
