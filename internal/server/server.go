// Package server exposes the tracker over a JSON REST API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/loadprogress/internal/backup"
	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/tracker"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc     *tracker.Service
	backups *backup.Manager
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured. When gatherer is
// non-nil its metrics are served at /metrics.
func New(svc *tracker.Service, backups *backup.Manager, m *metrics.Manager, gatherer prometheus.Gatherer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:     svc,
		backups: backups,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes(gatherer)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.router.Use(PanicRecovery(s.metrics, s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		// Reads are open; tsnet or the bind address handles access
		r.Get("/exercises", s.handleListExercises)
		r.Get("/sets", s.handleListSets)
		r.Get("/records", s.handleListRecords)
		r.Get("/records/best", s.handleBestRecords)
		r.Get("/analytics/volume", s.handleVolume)
		r.Get("/analytics/muscle-groups", s.handleMuscleGroups)
		r.Get("/analytics/daily", s.handleDailyVolume)
		r.Get("/analytics/summary", s.handleSummary)
		r.Get("/analytics/progression", s.handleProgression)
		r.Get("/settings", s.handleGetSettings)
		r.Get("/backups", s.handleListBackups)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/exercises", s.handleAddExercise)
			r.Post("/sets", s.handleAddSet)
			r.Delete("/sets", s.handleDeleteSets)
			r.Post("/sets/cleanup", s.handleCleanup)
			r.Put("/settings", s.handlePutSettings)
			r.Post("/backup", s.handleCreateBackup)
			r.Post("/restore", s.handleRestore)
			r.Post("/import/alpha", s.handleAlphaImport)
		})
	})
}

// MountMCP serves an MCP transport handler under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
	s.router.Handle("/mcp/*", h)
}
