package alpha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/ingest"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/tracker"
)

// Target is the part of the tracker the importer writes through.
type Target interface {
	FindExercise(name string) (models.Exercise, bool)
	AddExercise(ctx context.Context, spec models.ExerciseSpec) (models.Exercise, error)
	AddWorkoutSet(ctx context.Context, in models.SetInput) (tracker.AddResult, error)
	WorkoutSets(f tracker.SetFilter) []models.WorkoutSet
	Location() *time.Location
}

// Options controls an import.
type Options struct {
	IncludeWarmups bool
	// DryRun parses and matches without writing anything.
	DryRun bool
}

// Provider imports Alpha Progression CSV exports.
type Provider struct {
	target Target
	opts   Options
	log    *slog.Logger
}

var _ ingest.Importer = (*Provider)(nil)

// NewProvider creates a new Alpha Progression importer.
func NewProvider(target Target, opts Options, log *slog.Logger) *Provider {
	return &Provider{target: target, opts: opts, log: log}
}

type dedupKey struct {
	exercise uuid.UUID
	unix     int64
	weight   float64
	reps     int
}

func keyOf(exerciseID uuid.UUID, date time.Time, weight *float64, reps int) dedupKey {
	k := dedupKey{exercise: exerciseID, unix: date.Unix(), reps: reps}
	if weight != nil {
		k.weight = *weight
	}
	return k
}

// Import parses a CSV export and adds every working set through the tracker,
// so personal records are derived as the sets arrive. Sets already present
// are skipped, which makes re-importing the same file a no-op.
func (p *Provider) Import(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r, p.target.Location())
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{Sessions: len(sessions), DryRun: p.opts.DryRun}
	seen := make(map[dedupKey]bool)
	for _, s := range p.target.WorkoutSets(tracker.SetFilter{}) {
		seen[keyOf(s.ExerciseID, s.Date, s.Weight, s.Reps)] = true
	}
	created := make(map[string]uuid.UUID)

	for _, s := range sessions {
		// sets in a session share its start time; offset each by its
		// position so they stay distinct and ordered
		ordinal := 0
		for _, ex := range s.Exercises {
			exID, err := p.resolveExercise(ctx, ex, created, result)
			if err != nil {
				var verr *models.ValidationError
				if !errors.As(err, &verr) {
					return result, err
				}
				// an exercise the catalog refuses rejects all of its sets
				n := p.countSets(ex)
				result.SetsReceived += n
				result.SetsRejected += n
				result.Errors = append(result.Errors, err.Error())
				ordinal += n
				continue
			}

			for _, set := range ex.Sets {
				if set.IsWarmup && !p.opts.IncludeWarmups {
					result.WarmupsSkipped++
					continue
				}
				result.SetsReceived++
				in := toSetInput(exID, set, s.Date.Add(time.Duration(ordinal)*time.Second))
				ordinal++

				k := keyOf(exID, in.Date, in.Weight, in.Reps)
				if seen[k] {
					result.SetsSkipped++
					continue
				}
				seen[k] = true

				if p.opts.DryRun {
					result.SetsImported++
					continue
				}
				res, err := p.target.AddWorkoutSet(ctx, in)
				if err != nil {
					var verr *models.ValidationError
					if errors.As(err, &verr) || errors.Is(err, tracker.ErrFutureDate) {
						result.SetsRejected++
						result.Errors = append(result.Errors, fmt.Sprintf("%s %s set %d: %v",
							s.Date.Format(time.DateOnly), ex.Name, set.Number, err))
						continue
					}
					return result, fmt.Errorf("adding set for %s: %w", ex.Name, err)
				}
				result.SetsImported++
				result.RecordsAchieved += len(res.Records)
			}
		}
	}

	result.Message = fmt.Sprintf("imported %d of %d sets from %d sessions", result.SetsImported, result.SetsReceived, result.Sessions)
	p.log.Info("alpha import complete",
		"sessions", result.Sessions,
		"received", result.SetsReceived,
		"imported", result.SetsImported,
		"skipped", result.SetsSkipped,
		"rejected", result.SetsRejected,
		"exercises_created", len(result.ExercisesCreated),
		"records", result.RecordsAchieved,
		"dry_run", p.opts.DryRun,
	)
	return result, nil
}

// resolveExercise finds the catalog exercise for ex, creating it when missing.
// In a dry run the exercise is validated but never stored.
func (p *Provider) resolveExercise(ctx context.Context, ex Exercise, created map[string]uuid.UUID, result *ingest.Result) (uuid.UUID, error) {
	if found, ok := p.target.FindExercise(ex.Name); ok {
		return found.ID, nil
	}
	key := strings.ToLower(strings.TrimSpace(ex.Name))
	if id, ok := created[key]; ok {
		return id, nil
	}

	spec := exerciseSpec(ex)
	var id uuid.UUID
	if p.opts.DryRun {
		newEx, err := models.NewExercise(spec)
		if err != nil {
			return uuid.Nil, fmt.Errorf("creating exercise %q: %w", ex.Name, err)
		}
		id = newEx.ID
	} else {
		newEx, err := p.target.AddExercise(ctx, spec)
		if err != nil {
			return uuid.Nil, fmt.Errorf("creating exercise %q: %w", ex.Name, err)
		}
		id = newEx.ID
		p.log.Info("exercise created from import", "name", newEx.Name, "muscle_group", newEx.MuscleGroup)
	}
	created[key] = id
	result.ExercisesCreated = append(result.ExercisesCreated, spec.Name)
	return id, nil
}

func (p *Provider) countSets(ex Exercise) int {
	n := 0
	for _, s := range ex.Sets {
		if !s.IsWarmup || p.opts.IncludeWarmups {
			n++
		}
	}
	return n
}

func exerciseSpec(ex Exercise) models.ExerciseSpec {
	spec := models.ExerciseSpec{
		Name:        ex.Name,
		Type:        models.WeightTraining,
		MuscleGroup: guessMuscleGroup(ex.Name),
		Description: "Imported from Alpha Progression",
	}
	if eq := mapEquipment(ex.Equipment); eq != "" {
		spec.Equipment = []models.Equipment{eq}
		if eq == models.NoEquipment {
			spec.Type = models.Bodyweight
		}
	}
	return spec
}

// toSetInput converts a parsed set. A zero load carries no weight; RIR maps
// to RPE as 10 - RIR, clamped to the valid range.
func toSetInput(exerciseID uuid.UUID, s Set, date time.Time) models.SetInput {
	in := models.SetInput{
		ExerciseID:   exerciseID,
		Reps:         s.Reps,
		Date:         date,
		IsFailureSet: s.RIR == 0,
	}
	if s.WeightKg > 0 {
		in.Weight = models.Float(s.WeightKg)
	}
	if s.RIR >= 0 {
		rpe := math.Min(math.Max(10-s.RIR, models.MinRPE), models.MaxRPE)
		in.RPE = models.Float(rpe)
	}
	if s.IsWarmup {
		in.Notes = "warmup"
	}
	return in
}

// mapEquipment maps the export's equipment label onto the catalog's values.
func mapEquipment(label string) models.Equipment {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return ""
	case strings.Contains(l, "smith"):
		return models.SmithMachine
	case strings.Contains(l, "barbell"), strings.Contains(l, "ez bar"):
		return models.Barbell
	case strings.Contains(l, "dumbbell"):
		return models.Dumbbell
	case strings.Contains(l, "kettlebell"):
		return models.Kettlebell
	case strings.Contains(l, "cable"):
		return models.Cable
	case strings.Contains(l, "band"):
		return models.ResistanceBand
	case strings.Contains(l, "bodyweight"):
		return models.NoEquipment
	case strings.Contains(l, "plate"):
		return models.Plate
	case strings.Contains(l, "machine"):
		return models.Machine
	}
	return ""
}

// muscleKeywords is checked in order; the first match wins.
var muscleKeywords = []struct {
	group models.MuscleGroup
	words []string
}{
	{models.LowerBack, []string{"hyperextension", "back extension", "good morning"}},
	{models.Glutes, []string{"hip thrust", "glute", "kickback"}},
	{models.Legs, []string{"squat", "lunge", "leg press", "leg curl", "leg extension", "calf", "deadlift", "step up"}},
	{models.Chest, []string{"bench", "chest", "fly", "flye", "push-up", "push up", "dip"}},
	{models.Back, []string{"row", "pull", "lat ", "pulldown", "chin"}},
	{models.Shoulders, []string{"shoulder", "overhead", "lateral raise", "military", "face pull", "shrug"}},
	{models.Arms, []string{"curl", "tricep", "bicep", "pushdown", "skull"}},
	{models.Forearms, []string{"wrist", "forearm", "farmer"}},
	{models.Core, []string{"crunch", "plank", "leg raise", "sit-up", "sit up", "ab ", "abs"}},
}

// guessMuscleGroup picks a primary muscle group from an exercise name,
// falling back to full body.
func guessMuscleGroup(name string) models.MuscleGroup {
	n := " " + strings.ToLower(name) + " "
	for _, k := range muscleKeywords {
		for _, w := range k.words {
			if strings.Contains(n, w) {
				return k.group
			}
		}
	}
	return models.FullBody
}
