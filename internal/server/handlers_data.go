package server

import (
	"errors"
	"net/http"

	"github.com/claude/loadprogress/internal/ingest/alpha"
	"github.com/claude/loadprogress/internal/settings"
)

// maxImportBytes bounds an uploaded export.
const maxImportBytes = 10 << 20

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings.Get())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var p settings.Patch
	if err := decodeBody(r, &p); err != nil {
		badRequest(w, err.Error())
		return
	}
	cur, err := s.svc.Settings.Apply(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	files, err := s.backups.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.backups.Restore(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Reload(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	infos, err := s.backups.List()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleAlphaImport imports an Alpha Progression CSV sent as the request body.
// ?warmups=true keeps warmup sets and ?dry_run=true reports without writing.
func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	opts := alpha.Options{
		IncludeWarmups: boolParam(r, "warmups"),
		DryRun:         boolParam(r, "dry_run"),
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := alpha.NewProvider(s.svc, opts, s.log.With("component", "alpha")).Import(r.Context(), body)
	if err != nil {
		var perr *alpha.ParseError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &perr), errors.As(err, &maxErr):
			badRequest(w, err.Error())
		default:
			s.writeError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
