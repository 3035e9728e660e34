// Package sets stores recorded workout sets with indices by exercise and by
// calendar day.
package sets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/storage"
)

// ErrExerciseNotFound is returned by Add when the set references an exercise
// the catalog does not know. The set is not stored.
var ErrExerciseNotFound = errors.New("exercise not found")

// ExerciseLookup reports whether an exercise id exists.
type ExerciseLookup interface {
	Has(id uuid.UUID) bool
}

// ChangeKind describes a mutation delivered to listeners.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Deleted ChangeKind = "deleted"
	Cleaned ChangeKind = "cleaned"
)

// Change lists the sets affected by one successful mutation.
type Change struct {
	Kind ChangeKind
	Sets []models.WorkoutSet
}

// Listener is called synchronously, in registration order, after a mutation
// has been persisted. It must not call back into mutating Store methods.
type Listener func(ctx context.Context, c Change)

// Store is safe for concurrent use.
type Store struct {
	store     storage.Store
	exercises ExerciseLookup
	log       *slog.Logger
	metrics   *metrics.Manager
	loc       *time.Location

	mu         sync.RWMutex
	sets       []models.WorkoutSet
	byExercise map[uuid.UUID][]int
	byDay      map[string][]int

	lmu       sync.Mutex
	listeners []Listener
}

// New returns an empty store. Days are bucketed in loc, or time.Local when nil.
func New(store storage.Store, exercises ExerciseLookup, log *slog.Logger, m *metrics.Manager, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	s := &Store{
		store:     store,
		exercises: exercises,
		log:       log,
		metrics:   m,
		loc:       loc,
	}
	s.reindex()
	return s
}

// OnChange registers l.
func (s *Store) OnChange(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) notify(ctx context.Context, c Change) {
	s.lmu.Lock()
	ls := append([]Listener(nil), s.listeners...)
	s.lmu.Unlock()
	for _, l := range ls {
		l(ctx, c)
	}
}

// Load replaces the in-memory sets with the stored collection. A corrupt
// blob is logged and treated as empty.
func (s *Store) Load(ctx context.Context) error {
	var stored []models.WorkoutSet
	found, err := storage.LoadJSON(ctx, s.store, storage.KeyWorkoutSets, &stored)
	if err != nil {
		if !found {
			return fmt.Errorf("loading workout sets: %w", err)
		}
		s.log.Error("failed to decode workout sets, starting empty", "error", err)
		stored = nil
	}

	s.mu.Lock()
	s.sets = stored
	s.reindex()
	s.mu.Unlock()

	s.log.Info("workout sets loaded", "count", len(stored))
	return nil
}

// Add appends set and persists the collection.
func (s *Store) Add(ctx context.Context, set models.WorkoutSet) error {
	if !s.exercises.Has(set.ExerciseID) {
		s.log.Warn("workout set references unknown exercise", "exercise_id", set.ExerciseID, "set_id", set.ID)
		return fmt.Errorf("%w: %s", ErrExerciseNotFound, set.ExerciseID)
	}

	s.mu.Lock()
	next := make([]models.WorkoutSet, len(s.sets), len(s.sets)+1)
	copy(next, s.sets)
	next = append(next, set)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.sets = next
	i := len(next) - 1
	s.byExercise[set.ExerciseID] = append(s.byExercise[set.ExerciseID], i)
	day := models.DayKey(set.Date, s.loc)
	s.byDay[day] = append(s.byDay[day], i)
	s.mu.Unlock()

	s.metrics.CounterSetsAdded.Inc()
	s.notify(ctx, Change{Kind: Added, Sets: []models.WorkoutSet{set}})
	return nil
}

// Delete removes every set whose id is in ids and returns how many were
// removed. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, ids []uuid.UUID) (int, error) {
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	removed, err := s.removeWhere(ctx, func(ws models.WorkoutSet) bool { return drop[ws.ID] })
	if err != nil || len(removed) == 0 {
		return 0, err
	}
	s.log.Info("workout sets deleted", "count", len(removed))
	s.notify(ctx, Change{Kind: Deleted, Sets: removed})
	return len(removed), nil
}

// CleanupOlderThan removes every set dated strictly before cutoff.
func (s *Store) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := s.removeWhere(ctx, func(ws models.WorkoutSet) bool { return ws.Date.Before(cutoff) })
	if err != nil || len(removed) == 0 {
		return 0, err
	}
	s.log.Info("old workout sets cleaned up", "count", len(removed), "cutoff", cutoff.Format(time.DateOnly))
	s.notify(ctx, Change{Kind: Cleaned, Sets: removed})
	return len(removed), nil
}

func (s *Store) removeWhere(ctx context.Context, match func(models.WorkoutSet) bool) ([]models.WorkoutSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []models.WorkoutSet
	kept := make([]models.WorkoutSet, 0, len(s.sets))
	for _, ws := range s.sets {
		if match(ws) {
			removed = append(removed, ws)
			continue
		}
		kept = append(kept, ws)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := s.persist(ctx, kept); err != nil {
		return nil, err
	}
	s.sets = kept
	s.reindex()
	return removed, nil
}

// persist writes sets. The caller holds mu and only swaps its state in on
// success, so a failed write leaves the previous snapshot in place.
func (s *Store) persist(ctx context.Context, sets []models.WorkoutSet) error {
	if err := storage.SaveJSON(ctx, s.store, storage.KeyWorkoutSets, sets); err != nil {
		s.metrics.CounterPersistenceFailures.WithLabelValues(storage.KeyWorkoutSets).Inc()
		s.log.Error("failed to save workout sets", "error", err)
		return fmt.Errorf("saving workout sets: %w", err)
	}
	return nil
}

func (s *Store) reindex() {
	s.byExercise = make(map[uuid.UUID][]int)
	s.byDay = make(map[string][]int)
	for i, ws := range s.sets {
		s.byExercise[ws.ExerciseID] = append(s.byExercise[ws.ExerciseID], i)
		day := models.DayKey(ws.Date, s.loc)
		s.byDay[day] = append(s.byDay[day], i)
	}
}

func (s *Store) pick(idx []int) []models.WorkoutSet {
	out := make([]models.WorkoutSet, len(idx))
	for i, j := range idx {
		out[i] = s.sets[j]
	}
	return out
}

// All returns every set in insertion order.
func (s *Store) All() []models.WorkoutSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WorkoutSet, len(s.sets))
	copy(out, s.sets)
	return out
}

// Len returns the number of stored sets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets)
}

// ForExercise returns the sets of one exercise in insertion order.
func (s *Store) ForExercise(id uuid.UUID) []models.WorkoutSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pick(s.byExercise[id])
}

// ForDay returns the sets recorded on t's calendar day.
func (s *Store) ForDay(t time.Time) []models.WorkoutSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pick(s.byDay[models.DayKey(t, s.loc)])
}

// Between returns sets dated within [start, end], sorted by date. A zero
// bound is open.
func (s *Store) Between(start, end time.Time) []models.WorkoutSet {
	s.mu.RLock()
	var out []models.WorkoutSet
	for _, ws := range s.sets {
		if !start.IsZero() && ws.Date.Before(start) {
			continue
		}
		if !end.IsZero() && ws.Date.After(end) {
			continue
		}
		out = append(out, ws)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Location returns the zone used for day bucketing.
func (s *Store) Location() *time.Location {
	return s.loc
}
