package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/records"
)

// ExerciseSummary holds aggregated stats for a single exercise.
type ExerciseSummary struct {
	ExerciseID     uuid.UUID `json:"exerciseId"`
	Name           string    `json:"name"`
	TotalSets      int       `json:"totalSets"`
	TotalReps      int       `json:"totalReps"`
	Tonnage        float64   `json:"tonnage"`
	MaxWeight      float64   `json:"maxWeight"`
	AvgRPE         *float64  `json:"avgRpe,omitempty"`
	BestOneRepMax  float64   `json:"bestOneRepMax"`
	FailureRatePct float64   `json:"failureRatePct"`
}

// ExerciseSummaries returns one summary per trained exercise, heaviest
// tonnage first. Sets of exercises missing from the catalog are reported
// under an empty name.
func ExerciseSummaries(exercises []models.Exercise, sets []models.WorkoutSet) []ExerciseSummary {
	names := make(map[uuid.UUID]string, len(exercises))
	for _, ex := range exercises {
		names[ex.ID] = ex.Name
	}

	type acc struct {
		ExerciseSummary
		rpeSum   float64
		rpeCount int
		failures int
	}
	byID := map[uuid.UUID]*acc{}
	var order []uuid.UUID

	for _, s := range sets {
		a, ok := byID[s.ExerciseID]
		if !ok {
			a = &acc{ExerciseSummary: ExerciseSummary{ExerciseID: s.ExerciseID, Name: names[s.ExerciseID]}}
			byID[s.ExerciseID] = a
			order = append(order, s.ExerciseID)
		}
		a.TotalSets++
		a.TotalReps += s.Reps
		a.Tonnage += s.Volume()
		if s.Weight != nil {
			if *s.Weight > a.MaxWeight {
				a.MaxWeight = *s.Weight
			}
			if est := records.OneRepMax(*s.Weight, s.Reps); est > a.BestOneRepMax {
				a.BestOneRepMax = est
			}
		}
		if s.RPE != nil {
			a.rpeSum += *s.RPE
			a.rpeCount++
		}
		if s.IsFailureSet {
			a.failures++
		}
	}

	out := make([]ExerciseSummary, 0, len(order))
	for _, id := range order {
		a := byID[id]
		if a.rpeCount > 0 {
			avg := a.rpeSum / float64(a.rpeCount)
			a.AvgRPE = &avg
		}
		a.FailureRatePct = float64(a.failures) / float64(a.TotalSets) * 100
		out = append(out, a.ExerciseSummary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tonnage > out[j].Tonnage })
	return out
}

// ProgressionPoint holds one session's data for a specific exercise.
type ProgressionPoint struct {
	Date          string   `json:"date"`
	MaxWeight     float64  `json:"maxWeight"`
	SessionVolume float64  `json:"sessionVolume"`
	Sets          int      `json:"sets"`
	AvgRPE        *float64 `json:"avgRpe,omitempty"`
	BestOneRepMax float64  `json:"bestOneRepMax"`
}

// Progression groups one exercise's sets by calendar day, oldest first.
func Progression(sets []models.WorkoutSet, loc *time.Location) []ProgressionPoint {
	type acc struct {
		ProgressionPoint
		rpeSum   float64
		rpeCount int
	}
	byDay := map[string]*acc{}
	for _, s := range sets {
		key := models.DayKey(s.Date, loc)
		a, ok := byDay[key]
		if !ok {
			a = &acc{ProgressionPoint: ProgressionPoint{Date: key}}
			byDay[key] = a
		}
		a.Sets++
		a.SessionVolume += s.Volume()
		if s.Weight != nil {
			if *s.Weight > a.MaxWeight {
				a.MaxWeight = *s.Weight
			}
			if est := records.OneRepMax(*s.Weight, s.Reps); est > a.BestOneRepMax {
				a.BestOneRepMax = est
			}
		}
		if s.RPE != nil {
			a.rpeSum += *s.RPE
			a.rpeCount++
		}
	}

	out := make([]ProgressionPoint, 0, len(byDay))
	for _, a := range byDay {
		if a.rpeCount > 0 {
			avg := a.rpeSum / float64(a.rpeCount)
			a.AvgRPE = &avg
		}
		out = append(out, a.ProgressionPoint)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// IntensityBand counts sets whose reps in reserve (10 - RPE) fall in a range.
type IntensityBand struct {
	Band     string  `json:"band"`
	RIRRange string  `json:"rirRange"`
	Sets     int     `json:"sets"`
	Pct      float64 `json:"pct"`
}

// IntensityReport is the effort distribution of a group of sets.
type IntensityReport struct {
	Distribution   []IntensityBand `json:"distribution"`
	FailureRatePct float64         `json:"failureRatePct"`
	TotalSets      int             `json:"totalSets"`
	TrackedSets    int             `json:"trackedSets"`
}

var intensityBands = []struct{ band, rirRange string }{
	{"failure", "0"},
	{"near_failure", "0.5-1"},
	{"moderate", "1.5-2"},
	{"easy", "2.5-3"},
	{"very_easy", ">3"},
	{"untracked", "untracked"},
}

func bandOf(s models.WorkoutSet) int {
	if s.RPE == nil {
		return 5
	}
	switch rir := 10 - *s.RPE; {
	case rir <= 0:
		return 0
	case rir <= 1:
		return 1
	case rir <= 2:
		return 2
	case rir <= 3:
		return 3
	}
	return 4
}

// Intensity buckets sets by reps in reserve. The failure rate is the share of
// tracked sets at or within one rep of failure. Empty bands are omitted.
func Intensity(sets []models.WorkoutSet) IntensityReport {
	counts := make([]int, len(intensityBands))
	for _, s := range sets {
		counts[bandOf(s)]++
	}

	r := IntensityReport{TotalSets: len(sets)}
	r.TrackedSets = len(sets) - counts[5]
	for i, b := range intensityBands {
		if counts[i] == 0 {
			continue
		}
		r.Distribution = append(r.Distribution, IntensityBand{
			Band:     b.band,
			RIRRange: b.rirRange,
			Sets:     counts[i],
			Pct:      float64(counts[i]) / float64(len(sets)) * 100,
		})
	}
	if r.TrackedSets > 0 {
		r.FailureRatePct = float64(counts[0]+counts[1]) / float64(r.TrackedSets) * 100
	}
	return r
}
