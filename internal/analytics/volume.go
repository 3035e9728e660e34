// Package analytics aggregates workout sets into volume and progression
// views. Every function is pure and safe to call concurrently.
package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/models"
)

// VolumeMetrics summarises a group of sets for one exercise.
type VolumeMetrics struct {
	ExerciseID    uuid.UUID `json:"exerciseId"`
	Date          time.Time `json:"date"`
	TotalVolume   float64   `json:"totalVolume"`
	TotalReps     int       `json:"totalReps"`
	AverageWeight float64   `json:"averageWeight"`
	Sets          int       `json:"sets"`
	RPE           *float64  `json:"rpe,omitempty"`
	RestTime      *float64  `json:"restTime,omitempty"`
}

// Compute aggregates sets. Volume and average weight only count weighted
// sets; reps and the set count include bodyweight sets. RPE and rest time are
// taken from the last set.
func Compute(exerciseID uuid.UUID, sets []models.WorkoutSet, at time.Time) VolumeMetrics {
	m := VolumeMetrics{ExerciseID: exerciseID, Date: at, Sets: len(sets)}

	var totalWeight float64
	var weighted int
	for _, s := range sets {
		if s.Weight != nil {
			m.TotalVolume += *s.Weight * float64(s.Reps)
			totalWeight += *s.Weight
			weighted++
		}
		m.TotalReps += s.Reps
	}
	if weighted > 0 {
		m.AverageWeight = totalWeight / float64(weighted)
	}
	if n := len(sets); n > 0 {
		m.RPE = sets[n-1].RPE
		m.RestTime = sets[n-1].RestSeconds
	}
	return m
}

// Filter returns the sets of exerciseID dated within [start, end]. A nil
// exercise id matches every exercise and a zero bound is open.
func Filter(sets []models.WorkoutSet, exerciseID uuid.UUID, start, end time.Time) []models.WorkoutSet {
	var out []models.WorkoutSet
	for _, s := range sets {
		if exerciseID != uuid.Nil && s.ExerciseID != exerciseID {
			continue
		}
		if !start.IsZero() && s.Date.Before(start) {
			continue
		}
		if !end.IsZero() && s.Date.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SessionVolume returns the total volume of exerciseID on day's calendar day.
func SessionVolume(sets []models.WorkoutSet, exerciseID uuid.UUID, day time.Time, loc *time.Location) float64 {
	key := models.DayKey(day, loc)
	var total float64
	for _, s := range sets {
		if s.ExerciseID == exerciseID && models.DayKey(s.Date, loc) == key {
			total += s.Volume()
		}
	}
	return total
}
