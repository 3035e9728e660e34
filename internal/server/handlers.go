package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/catalog"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/sets"
	"github.com/claude/loadprogress/internal/tracker"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Msg, Field: verr.Field})
	case errors.Is(err, tracker.ErrFutureDate):
		badRequest(w, err.Error())
	case errors.Is(err, sets.ErrExerciseNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, catalog.ErrDuplicateExercise):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// exerciseParam reads ?exercise= as an id or an exercise name. It returns
// uuid.Nil when the parameter is absent.
func (s *Server) exerciseParam(r *http.Request) (uuid.UUID, error) {
	v := r.URL.Query().Get("exercise")
	if v == "" {
		return uuid.Nil, nil
	}
	if id, err := uuid.Parse(v); err == nil {
		return id, nil
	}
	ex, ok := s.svc.FindExercise(v)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", sets.ErrExerciseNotFound, v)
	}
	return ex.ID, nil
}

// requireExercise is exerciseParam for routes where the exercise is
// mandatory. It writes the error response itself and reports success.
func (s *Server) requireExercise(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := s.exerciseParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		badRequest(w, "exercise parameter required")
		return uuid.Nil, false
	}
	return id, true
}

func muscleGroupParam(r *http.Request) (models.MuscleGroup, error) {
	v := r.URL.Query().Get("muscle_group")
	if v == "" {
		return "", nil
	}
	return models.ParseMuscleGroup(v)
}

func rangeParam(r *http.Request) (analytics.TimeRange, error) {
	return analytics.ParseTimeRange(r.URL.Query().Get("range"))
}

// parseTime accepts RFC 3339 or a date. With endOfDay, a date maps to its
// last instant so inclusive ranges cover the whole day.
func parseTime(v string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}

// timeParams reads optional ?start= and ?end=.
func (s *Server) timeParams(r *http.Request) (start, end time.Time, err error) {
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		if start, err = parseTime(v, s.svc.Location(), false); err != nil {
			return
		}
	}
	if v := q.Get("end"); v != "" {
		if end, err = parseTime(v, s.svc.Location(), true); err != nil {
			return
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		err = errors.New("end must not be before start")
	}
	return
}

// weightUnit reads ?unit=kg|lbs, falling back to the useMetricSystem setting.
// The unit is echoed in the X-Weight-Unit header. On a bad value it writes
// the 400 itself and reports failure.
func (s *Server) weightUnit(w http.ResponseWriter, r *http.Request) (models.Unit, bool) {
	u := models.UnitFor(s.svc.Settings.Get().UseMetricSystem)
	if v := r.URL.Query().Get("unit"); v != "" {
		var err error
		if u, err = models.ParseUnit(v); err != nil {
			badRequest(w, err.Error())
			return "", false
		}
	}
	w.Header().Set("X-Weight-Unit", string(u))
	return u, true
}

func boolParam(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	group, err := muscleGroupParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Exercises(group))
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var spec models.ExerciseSpec
	if err := decodeBody(r, &spec); err != nil {
		badRequest(w, err.Error())
		return
	}
	ex, err := s.svc.AddExercise(r.Context(), spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	exID, err := s.exerciseParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	start, end, err := s.timeParams(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			badRequest(w, "invalid limit")
			return
		}
	}
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	list := s.svc.WorkoutSets(tracker.SetFilter{ExerciseID: exID, Start: start, End: end, Limit: limit})
	writeJSON(w, http.StatusOK, models.SetsInUnit(list, unit))
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	unit, ok := s.weightUnit(w, r)
	if !ok {
		return
	}
	var in models.SetInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}
	res, err := s.svc.AddWorkoutSet(r.Context(), in.InUnit(unit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.InUnit(unit))
}

type deleteSetsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (s *Server) handleDeleteSets(w http.ResponseWriter, r *http.Request) {
	var req deleteSetsRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		badRequest(w, "ids required")
		return
	}
	n, err := s.svc.DeleteWorkoutSets(r.Context(), req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	cutoff := s.svc.RetentionCutoff()
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := parseTime(v, s.svc.Location(), false)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		cutoff = t
	}
	n, err := s.svc.CleanupOlderThan(r.Context(), cutoff)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n, "cutoff": cutoff})
}
