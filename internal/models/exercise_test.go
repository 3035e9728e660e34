package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// TestValidateExerciseName covers trimming and the 2..50 length window.
func TestValidateExerciseName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  Bench Press  ", "Bench Press", false},
		{"", "", true},
		{"   ", "", true},
		{"A", "", true},
		{"Ab", "Ab", false},
		{strings.Repeat("x", 50), strings.Repeat("x", 50), false},
		{strings.Repeat("x", 51), "", true},
	}
	for _, tt := range tests {
		got, err := ValidateExerciseName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateExerciseName(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateExerciseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestNewExerciseDefaults verifies defaulted fields and non-nil slices, so the
// persisted JSON always carries arrays rather than nulls.
func TestNewExerciseDefaults(t *testing.T) {
	ex, err := NewExercise(ExerciseSpec{Name: " Cable Fly ", MuscleGroup: Chest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Name != "Cable Fly" {
		t.Errorf("name = %q", ex.Name)
	}
	if ex.Type != WeightTraining || ex.Difficulty != Beginner {
		t.Errorf("defaults = %q/%q", ex.Type, ex.Difficulty)
	}
	if ex.Equipment == nil || ex.FormCues == nil || ex.SecondaryMuscleGroups == nil {
		t.Error("slices must be non-nil")
	}

	_, err = NewExercise(ExerciseSpec{Name: "Cable Fly"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "muscleGroup" {
		t.Errorf("missing muscle group err = %v", err)
	}
}

// TestExerciseJSONRejectsUnknownEnum verifies that decoding refuses values
// outside the closed enumerations instead of storing garbage.
func TestExerciseJSONRejectsUnknownEnum(t *testing.T) {
	good := `{"id":"6f1c1f7e-7d7a-4c43-9d9e-0c6f1b0a3a11","name":"Squat","type":"Weight Training","muscleGroup":"Legs","secondaryMuscleGroups":["Glutes"],"difficulty":"Advanced","equipment":["Barbell"],"description":"","formCues":[]}`
	var ex Exercise
	if err := json.Unmarshal([]byte(good), &ex); err != nil {
		t.Fatalf("decode valid exercise: %v", err)
	}
	if !ex.Targets(Glutes) || ex.Targets(Chest) {
		t.Error("Targets() mismatch")
	}

	bad := strings.Replace(good, `"Legs"`, `"Wings"`, 1)
	if err := json.Unmarshal([]byte(bad), &ex); err == nil {
		t.Error("expected error for unknown muscle group")
	}
}

// TestDefaultExercises verifies the seed catalog size, ID uniqueness and
// that every entry passes name validation.
func TestDefaultExercises(t *testing.T) {
	seeds := DefaultExercises()
	if len(seeds) != 28 {
		t.Fatalf("seed count = %d, want 28", len(seeds))
	}
	seen := map[string]bool{}
	for _, ex := range seeds {
		if seen[ex.ID.String()] {
			t.Errorf("duplicate id for %s", ex.Name)
		}
		seen[ex.ID.String()] = true
		if _, err := ValidateExerciseName(ex.Name); err != nil {
			t.Errorf("seed %q: %v", ex.Name, err)
		}
	}
}

// TestParseRecordType accepts stored values and snake_case aliases.
func TestParseRecordType(t *testing.T) {
	for in, want := range map[string]RecordType{
		"1RM": OneRepMax, "one_rep_max": OneRepMax, "Weight at Reps": WeightAtReps, "volume": Volume,
	} {
		got, err := ParseRecordType(in)
		if err != nil || got != want {
			t.Errorf("ParseRecordType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRecordType("max"); err == nil {
		t.Error("expected error for unknown type")
	}
}
