package server

import (
	"net/http"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/tracker"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	exID, err := s.exerciseParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f := tracker.RecordFilter{ExerciseID: exID}
	if v := r.URL.Query().Get("type"); v != "" {
		if f.Type, err = models.ParseRecordType(v); err != nil {
			badRequest(w, err.Error())
			return
		}
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.RecordsInUnit(s.svc.PersonalRecords(f), unit))
}

func (s *Server) handleBestRecords(w http.ResponseWriter, r *http.Request) {
	exID, ok := s.requireExercise(w, r)
	if !ok {
		return
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	bests, err := s.svc.CurrentBests(exID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bests.InUnit(unit))
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	exID, ok := s.requireExercise(w, r)
	if !ok {
		return
	}
	rng, err := rangeParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	vm, err := s.svc.Volume(exID, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vm.InUnit(unit))
}

func (s *Server) handleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.MuscleGroupsInUnit(s.svc.MuscleGroups(rng), unit))
}

func (s *Server) handleDailyVolume(w http.ResponseWriter, r *http.Request) {
	group, err := muscleGroupParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if group == "" {
		badRequest(w, "muscle_group parameter required")
		return
	}
	rng, err := rangeParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.PointsInUnit(s.svc.DailyVolume(group, rng), unit))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Summaries(rng).InUnit(unit))
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	exID, ok := s.requireExercise(w, r)
	if !ok {
		return
	}
	rng, err := rangeParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	points, err := s.svc.Progression(exID, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.ProgressionInUnit(points, unit))
}
