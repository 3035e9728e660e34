// Package tracker wires the catalog, set store and PR ledger into the
// operations exposed by the API, MCP server and importers.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/catalog"
	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/records"
	"github.com/claude/loadprogress/internal/sets"
	"github.com/claude/loadprogress/internal/settings"
)

// ErrFutureDate is returned when a set is dated after the current time.
var ErrFutureDate = errors.New("workout date cannot be in the future")

// DefaultRetentionMonths is the cleanup window used when none is configured.
const DefaultRetentionMonths = 3

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRetentionMonths sets the window used by CleanupRetention.
func WithRetentionMonths(months int) Option {
	return func(s *Service) {
		if months > 0 {
			s.retentionMonths = months
		}
	}
}

type Service struct {
	Catalog  *catalog.Catalog
	Sets     *sets.Store
	Records  *records.Ledger
	Settings *settings.Manager

	log             *slog.Logger
	metrics         *metrics.Manager
	now             func() time.Time
	retentionMonths int

	// serializes AddWorkoutSet so the PR checks see the set just stored
	addMu sync.Mutex
}

func New(cat *catalog.Catalog, ws *sets.Store, ledger *records.Ledger, st *settings.Manager, m *metrics.Manager, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		Catalog:         cat,
		Sets:            ws,
		Records:         ledger,
		Settings:        st,
		log:             log,
		metrics:         m,
		now:             time.Now,
		retentionMonths: DefaultRetentionMonths,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads every collection from the store.
func (s *Service) Load(ctx context.Context) error {
	defer s.metrics.Time("load")()

	if err := s.Catalog.Load(ctx); err != nil {
		return err
	}
	if err := s.Sets.Load(ctx); err != nil {
		return err
	}
	if err := s.Records.Load(ctx); err != nil {
		return err
	}
	return s.Settings.Load(ctx)
}

// Reload re-reads the store, after a backup restore.
func (s *Service) Reload(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return fmt.Errorf("reloading: %w", err)
	}
	s.log.Info("data reloaded")
	return nil
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// Location returns the zone used for calendar days.
func (s *Service) Location() *time.Location { return s.Sets.Location() }

// AddExercise validates spec and adds it to the catalog.
func (s *Service) AddExercise(ctx context.Context, spec models.ExerciseSpec) (models.Exercise, error) {
	defer s.metrics.Time("add_exercise")()

	ex, err := models.NewExercise(spec)
	if err != nil {
		return models.Exercise{}, err
	}
	if err := s.Catalog.Add(ctx, ex); err != nil {
		return models.Exercise{}, err
	}
	return ex, nil
}

// AddResult is a stored set and the records it produced.
type AddResult struct {
	Set     models.WorkoutSet       `json:"set"`
	Records []models.PersonalRecord `json:"personalRecords"`
}

// AddWorkoutSet validates and stores a set, then checks the per-set records
// followed by the same-day session volume record. A zero date means now. When
// the records cannot be saved the set is removed again and the error returned.
func (s *Service) AddWorkoutSet(ctx context.Context, in models.SetInput) (AddResult, error) {
	defer s.metrics.Time("add_workout_set")()

	now := s.now()
	if in.Date.IsZero() {
		in.Date = now
	}
	if in.Date.After(now) {
		return AddResult{}, ErrFutureDate
	}
	set, err := models.NewWorkoutSet(in)
	if err != nil {
		return AddResult{}, err
	}

	s.addMu.Lock()
	defer s.addMu.Unlock()

	if err := s.Sets.Add(ctx, set); err != nil {
		return AddResult{}, err
	}
	vol := analytics.SessionVolume(s.Sets.ForExercise(set.ExerciseID), set.ExerciseID, set.Date, s.Location())
	prs, err := s.Records.CheckWorkoutSet(ctx, set, vol)
	if err != nil {
		// the set must not outlive records it never got
		if _, derr := s.Sets.Delete(ctx, []uuid.UUID{set.ID}); derr != nil {
			s.log.Error("failed to roll back workout set", "set_id", set.ID, "error", derr)
		}
		return AddResult{}, fmt.Errorf("checking personal records: %w", err)
	}
	res := AddResult{Set: set, Records: append([]models.PersonalRecord{}, prs...)}

	s.log.Debug("workout set added", "set_id", set.ID, "exercise_id", set.ExerciseID, "records", len(res.Records))
	return res, nil
}

// DeleteWorkoutSets removes sets by id. Personal records are kept.
func (s *Service) DeleteWorkoutSets(ctx context.Context, ids []uuid.UUID) (int, error) {
	defer s.metrics.Time("delete_workout_sets")()
	return s.Sets.Delete(ctx, ids)
}

// CleanupOlderThan removes sets dated before cutoff.
func (s *Service) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	defer s.metrics.Time("cleanup")()
	return s.Sets.CleanupOlderThan(ctx, cutoff)
}

// RetentionCutoff returns the oldest date kept by CleanupRetention.
func (s *Service) RetentionCutoff() time.Time {
	return s.now().AddDate(0, -s.retentionMonths, 0)
}

// CleanupRetention removes sets older than the retention window.
func (s *Service) CleanupRetention(ctx context.Context) (int, error) {
	return s.CleanupOlderThan(ctx, s.RetentionCutoff())
}
