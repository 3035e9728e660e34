package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordType is the metric a personal record tracks.
type RecordType string

const (
	OneRepMax    RecordType = "1RM"
	Volume       RecordType = "Volume"
	WeightAtReps RecordType = "Weight at Reps"
	TotalReps    RecordType = "Total Reps"
)

// RecordTypes lists every record type.
var RecordTypes = []RecordType{OneRepMax, Volume, WeightAtReps, TotalReps}

// ParseRecordType accepts the stored value ("1RM") or a snake_case alias
// ("one_rep_max").
func ParseRecordType(s string) (RecordType, error) {
	switch s {
	case string(OneRepMax), "one_rep_max":
		return OneRepMax, nil
	case string(Volume), "volume":
		return Volume, nil
	case string(WeightAtReps), "weight_at_reps":
		return WeightAtReps, nil
	case string(TotalReps), "total_reps":
		return TotalReps, nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// PersonalRecord is one entry in the append-only PR ledger. Reps is only
// meaningful for WeightAtReps records.
type PersonalRecord struct {
	ID         uuid.UUID  `json:"id"`
	ExerciseID uuid.UUID  `json:"exerciseId"`
	Type       RecordType `json:"type"`
	Value      float64    `json:"value"`
	Date       time.Time  `json:"date"`
	Reps       int        `json:"reps"`
	SetID      *uuid.UUID `json:"setId,omitempty"`
}

// NewPersonalRecord returns a record with a fresh ID. reps below 1 is stored as 1.
func NewPersonalRecord(exerciseID uuid.UUID, typ RecordType, value float64, reps int, at time.Time) PersonalRecord {
	if reps < 1 {
		reps = 1
	}
	return PersonalRecord{
		ID:         uuid.New(),
		ExerciseID: exerciseID,
		Type:       typ,
		Value:      value,
		Date:       at,
		Reps:       reps,
	}
}
