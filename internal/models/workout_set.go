package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MaxWeight = 1000.0
	MaxReps   = 100
	MinRPE    = 1.0
	MaxRPE    = 10.0
)

// WorkoutSet is a single recorded set. Instances built by NewWorkoutSet are
// always valid; the zero value is not.
type WorkoutSet struct {
	ID           uuid.UUID `json:"id"`
	ExerciseID   uuid.UUID `json:"exerciseId"`
	Weight       *float64  `json:"weight,omitempty"`
	Reps         int       `json:"reps"`
	Date         time.Time `json:"date"`
	RPE          *float64  `json:"rpe,omitempty"`
	RestSeconds  *float64  `json:"restTime,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	IsFailureSet bool      `json:"isFailureSet"`
}

// SetInput holds the raw fields of a set before validation.
type SetInput struct {
	ExerciseID   uuid.UUID `json:"exerciseId"`
	Weight       *float64  `json:"weight,omitempty"`
	Reps         int       `json:"reps"`
	Date         time.Time `json:"date"`
	RPE          *float64  `json:"rpe,omitempty"`
	RestSeconds  *float64  `json:"restTime,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	IsFailureSet bool      `json:"isFailureSet"`
}

// NewWorkoutSet validates in and returns a set with a fresh ID.
func NewWorkoutSet(in SetInput) (WorkoutSet, error) {
	if in.Weight != nil {
		if w := *in.Weight; w <= 0 {
			return WorkoutSet{}, &ValidationError{Field: "weight", Msg: "weight must be greater than 0"}
		} else if w > MaxWeight {
			return WorkoutSet{}, &ValidationError{Field: "weight", Msg: fmt.Sprintf("weight cannot exceed %g", MaxWeight)}
		}
	}
	if in.Reps <= 0 {
		return WorkoutSet{}, &ValidationError{Field: "reps", Msg: "reps must be greater than 0"}
	}
	if in.Reps > MaxReps {
		return WorkoutSet{}, &ValidationError{Field: "reps", Msg: fmt.Sprintf("reps cannot exceed %d", MaxReps)}
	}
	if in.RPE != nil && (*in.RPE < MinRPE || *in.RPE > MaxRPE) {
		return WorkoutSet{}, &ValidationError{Field: "rpe", Msg: "RPE must be between 1 and 10"}
	}
	if in.RestSeconds != nil && *in.RestSeconds < 0 {
		return WorkoutSet{}, &ValidationError{Field: "restTime", Msg: "rest time must be non-negative"}
	}
	if in.ExerciseID == uuid.Nil {
		return WorkoutSet{}, &ValidationError{Field: "exerciseId", Msg: "exercise id is required"}
	}
	if in.Date.IsZero() {
		return WorkoutSet{}, &ValidationError{Field: "date", Msg: "date is required"}
	}

	return WorkoutSet{
		ID:           uuid.New(),
		ExerciseID:   in.ExerciseID,
		Weight:       in.Weight,
		Reps:         in.Reps,
		Date:         in.Date,
		RPE:          in.RPE,
		RestSeconds:  in.RestSeconds,
		Notes:        in.Notes,
		IsFailureSet: in.IsFailureSet,
	}, nil
}

// Volume returns weight × reps, or 0 for a set without weight.
func (s WorkoutSet) Volume() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight * float64(s.Reps)
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 {
	return &v
}
