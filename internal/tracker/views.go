package tracker

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/sets"
)

// Exercises lists the catalog, or one muscle group sorted by name.
func (s *Service) Exercises(group models.MuscleGroup) []models.Exercise {
	if group == "" {
		return s.Catalog.List()
	}
	return s.Catalog.ByMuscleGroup(group)
}

// SetFilter selects workout sets. Zero fields match everything; Limit keeps
// the most recent sets.
type SetFilter struct {
	ExerciseID uuid.UUID
	Start      time.Time
	End        time.Time
	Limit      int
}

// WorkoutSets returns the matching sets, oldest first.
func (s *Service) WorkoutSets(f SetFilter) []models.WorkoutSet {
	defer s.metrics.Time("query_sets")()

	out := analytics.Filter(s.Sets.Between(f.Start, f.End), f.ExerciseID, time.Time{}, time.Time{})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	if out == nil {
		out = []models.WorkoutSet{}
	}
	return out
}

// RecordFilter selects personal records. Zero fields match everything.
type RecordFilter struct {
	ExerciseID uuid.UUID
	Type       models.RecordType
}

// PersonalRecords returns the matching ledger entries in append order.
func (s *Service) PersonalRecords(f RecordFilter) []models.PersonalRecord {
	src := s.Records.All()
	if f.ExerciseID != uuid.Nil {
		src = s.Records.ForExercise(f.ExerciseID)
	}
	out := []models.PersonalRecord{}
	for _, pr := range src {
		if f.Type == "" || pr.Type == f.Type {
			out = append(out, pr)
		}
	}
	return out
}

// Bests holds the current best of every record type for one exercise.
type Bests struct {
	ExerciseID   uuid.UUID               `json:"exerciseId"`
	OneRepMax    *models.PersonalRecord  `json:"oneRepMax,omitempty"`
	Volume       *models.PersonalRecord  `json:"volume,omitempty"`
	WeightAtReps []models.PersonalRecord `json:"weightAtReps"`
}

// CurrentBests returns the standing records for an exercise. Weight-at-reps
// bests are listed per rep count, ascending.
func (s *Service) CurrentBests(exerciseID uuid.UUID) (Bests, error) {
	if !s.Catalog.Has(exerciseID) {
		return Bests{}, fmt.Errorf("%w: %s", sets.ErrExerciseNotFound, exerciseID)
	}
	b := Bests{ExerciseID: exerciseID, WeightAtReps: []models.PersonalRecord{}}
	if pr, ok := s.Records.Best(exerciseID, models.OneRepMax); ok {
		b.OneRepMax = &pr
	}
	if pr, ok := s.Records.Best(exerciseID, models.Volume); ok {
		b.Volume = &pr
	}

	seen := map[int]bool{}
	for _, pr := range s.Records.ForExercise(exerciseID) {
		if pr.Type != models.WeightAtReps || seen[pr.Reps] {
			continue
		}
		seen[pr.Reps] = true
		if best, ok := s.Records.BestAtReps(exerciseID, pr.Reps); ok {
			b.WeightAtReps = append(b.WeightAtReps, best)
		}
	}
	sort.Slice(b.WeightAtReps, func(i, j int) bool { return b.WeightAtReps[i].Reps < b.WeightAtReps[j].Reps })
	return b, nil
}

func (s *Service) exerciseSets(exerciseID uuid.UUID, r analytics.TimeRange) ([]models.WorkoutSet, error) {
	if !s.Catalog.Has(exerciseID) {
		return nil, fmt.Errorf("%w: %s", sets.ErrExerciseNotFound, exerciseID)
	}
	return analytics.Filter(s.Sets.ForExercise(exerciseID), exerciseID, r.Cutoff(s.now()), time.Time{}), nil
}

// Volume aggregates one exercise's sets within r.
func (s *Service) Volume(exerciseID uuid.UUID, r analytics.TimeRange) (analytics.VolumeMetrics, error) {
	defer s.metrics.Time("volume")()

	list, err := s.exerciseSets(exerciseID, r)
	if err != nil {
		return analytics.VolumeMetrics{}, err
	}
	return analytics.Compute(exerciseID, list, s.now()), nil
}

// MuscleGroups returns per-group volume within r.
func (s *Service) MuscleGroups(r analytics.TimeRange) []analytics.MuscleGroupVolume {
	defer s.metrics.Time("muscle_groups")()
	return analytics.MuscleGroupVolumes(s.Catalog.List(), s.Sets.Between(r.Cutoff(s.now()), time.Time{}))
}

// DailyVolume returns the per-day volume of a muscle group within r. For
// AllTime the series starts at the first recorded set.
func (s *Service) DailyVolume(group models.MuscleGroup, r analytics.TimeRange) []analytics.VolumePoint {
	defer s.metrics.Time("daily_volume")()

	now := s.now()
	start := r.Cutoff(now)
	list := s.Sets.Between(start, time.Time{})
	if start.IsZero() {
		start = now
		if len(list) > 0 {
			start = list[0].Date
		}
	}
	return analytics.DailyVolume(s.Catalog.List(), list, group, start, now, s.Location())
}

// TrainingSummary is the overview of a time range.
type TrainingSummary struct {
	Range        analytics.TimeRange         `json:"range"`
	Start        *time.Time                  `json:"start,omitempty"`
	End          time.Time                   `json:"end"`
	TotalSets    int                         `json:"totalSets"`
	TotalVolume  float64                     `json:"totalVolume"`
	TrainingDays int                         `json:"trainingDays"`
	Exercises    []analytics.ExerciseSummary `json:"exercises"`
	Intensity    analytics.IntensityReport   `json:"intensity"`
}

// Summaries returns per-exercise aggregates and the effort distribution within r.
func (s *Service) Summaries(r analytics.TimeRange) TrainingSummary {
	defer s.metrics.Time("summaries")()

	now := s.now()
	start := r.Cutoff(now)
	list := s.Sets.Between(start, time.Time{})

	sum := TrainingSummary{
		Range:     r,
		End:       now,
		TotalSets: len(list),
		Exercises: analytics.ExerciseSummaries(s.Catalog.List(), list),
		Intensity: analytics.Intensity(list),
	}
	if !start.IsZero() {
		sum.Start = &start
	}
	days := map[string]bool{}
	for _, ws := range list {
		sum.TotalVolume += ws.Volume()
		days[models.DayKey(ws.Date, s.Location())] = true
	}
	sum.TrainingDays = len(days)
	return sum
}

// Progression returns one exercise's per-day progression within r.
func (s *Service) Progression(exerciseID uuid.UUID, r analytics.TimeRange) ([]analytics.ProgressionPoint, error) {
	defer s.metrics.Time("progression")()

	list, err := s.exerciseSets(exerciseID, r)
	if err != nil {
		return nil, err
	}
	return analytics.Progression(list, s.Location()), nil
}

// FindExercise looks an exercise up by name, ignoring case.
func (s *Service) FindExercise(name string) (models.Exercise, bool) {
	return s.Catalog.FindByName(name)
}

// InUnit returns b with every record value in u.
func (b Bests) InUnit(u models.Unit) Bests {
	if b.OneRepMax != nil {
		pr := b.OneRepMax.InUnit(u)
		b.OneRepMax = &pr
	}
	if b.Volume != nil {
		pr := b.Volume.InUnit(u)
		b.Volume = &pr
	}
	b.WeightAtReps = models.RecordsInUnit(b.WeightAtReps, u)
	return b
}

// InUnit returns sum with weights and volumes in u.
func (sum TrainingSummary) InUnit(u models.Unit) TrainingSummary {
	sum.TotalVolume = u.FromKg(sum.TotalVolume)
	sum.Exercises = analytics.SummariesInUnit(sum.Exercises, u)
	return sum
}

// InUnit returns r with the set and its records in u.
func (r AddResult) InUnit(u models.Unit) AddResult {
	r.Set = r.Set.InUnit(u)
	r.Records = models.RecordsInUnit(r.Records, u)
	return r
}
