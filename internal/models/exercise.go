package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ExerciseType classifies how resistance is applied.
type ExerciseType string

const (
	WeightTraining ExerciseType = "Weight Training"
	Bodyweight     ExerciseType = "Bodyweight"
)

// MuscleGroup is a major muscle group an exercise can target.
type MuscleGroup string

const (
	Chest     MuscleGroup = "Chest"
	Back      MuscleGroup = "Back"
	Legs      MuscleGroup = "Legs"
	Shoulders MuscleGroup = "Shoulders"
	Arms      MuscleGroup = "Arms"
	Core      MuscleGroup = "Core"
	FullBody  MuscleGroup = "Full Body"
	Forearms  MuscleGroup = "Forearms"
	Glutes    MuscleGroup = "Glutes"
	UpperBack MuscleGroup = "Upper Back"
	LowerBack MuscleGroup = "Lower Back"
)

// MuscleGroups lists every muscle group in display order.
var MuscleGroups = []MuscleGroup{
	Chest, Back, Legs, Shoulders, Arms, Core, FullBody, Forearms, Glutes, UpperBack, LowerBack,
}

// Difficulty is the skill level an exercise demands.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
	Expert       Difficulty = "Expert"
)

// Equipment is a piece of gear an exercise uses.
type Equipment string

const (
	Barbell        Equipment = "Barbell"
	Dumbbell       Equipment = "Dumbbell"
	Kettlebell     Equipment = "Kettlebell"
	ResistanceBand Equipment = "Resistance Band"
	Cable          Equipment = "Cable Machine"
	SmithMachine   Equipment = "Smith Machine"
	NoEquipment    Equipment = "Bodyweight"
	Machine        Equipment = "Machine"
	Plate          Equipment = "Weight Plate"
	Bench          Equipment = "Bench"
	PullupBar      Equipment = "Pull-up Bar"
	FoamRoller     Equipment = "Foam Roller"
)

var (
	exerciseTypes = map[ExerciseType]bool{WeightTraining: true, Bodyweight: true}
	difficulties  = map[Difficulty]bool{Beginner: true, Intermediate: true, Advanced: true, Expert: true}
	equipment     = map[Equipment]bool{
		Barbell: true, Dumbbell: true, Kettlebell: true, ResistanceBand: true, Cable: true,
		SmithMachine: true, NoEquipment: true, Machine: true, Plate: true, Bench: true,
		PullupBar: true, FoamRoller: true,
	}
)

// ParseMuscleGroup matches a muscle group case-insensitively.
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	for _, g := range MuscleGroups {
		if strings.EqualFold(string(g), strings.TrimSpace(s)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown muscle group %q", s)
}

func (t *ExerciseType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(t), func(s string) bool { return exerciseTypes[ExerciseType(s)] }, "exercise type")
}

func (g *MuscleGroup) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(g), func(s string) bool { return isMuscleGroup(MuscleGroup(s)) }, "muscle group")
}

func isMuscleGroup(g MuscleGroup) bool {
	for _, m := range MuscleGroups {
		if m == g {
			return true
		}
	}
	return false
}

func (d *Difficulty) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(d), func(s string) bool { return difficulties[Difficulty(s)] }, "difficulty")
}

func (e *Equipment) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, (*string)(e), func(s string) bool { return equipment[Equipment(s)] }, "equipment")
}

func unmarshalEnum(b []byte, dst *string, valid func(string) bool, what string) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !valid(s) {
		return fmt.Errorf("invalid %s %q", what, s)
	}
	*dst = s
	return nil
}

// Exercise is a catalog entry. Exercises are immutable once created and
// compare by ID.
type Exercise struct {
	ID                    uuid.UUID     `json:"id"`
	Name                  string        `json:"name"`
	Type                  ExerciseType  `json:"type"`
	MuscleGroup           MuscleGroup   `json:"muscleGroup"`
	SecondaryMuscleGroups []MuscleGroup `json:"secondaryMuscleGroups"`
	Icon                  string        `json:"icon,omitempty"`
	Difficulty            Difficulty    `json:"difficulty"`
	Equipment             []Equipment   `json:"equipment"`
	Description           string        `json:"description"`
	FormCues              []string      `json:"formCues"`
}

// ExerciseSpec carries the caller-supplied fields for NewExercise.
type ExerciseSpec struct {
	Name                  string        `json:"name"`
	Type                  ExerciseType  `json:"type,omitempty"`
	MuscleGroup           MuscleGroup   `json:"muscleGroup,omitempty"`
	SecondaryMuscleGroups []MuscleGroup `json:"secondaryMuscleGroups,omitempty"`
	Icon                  string        `json:"icon,omitempty"`
	Difficulty            Difficulty    `json:"difficulty,omitempty"`
	Equipment             []Equipment   `json:"equipment"`
	Description           string        `json:"description"`
	FormCues              []string      `json:"formCues"`
}

const (
	minExerciseName = 2
	maxExerciseName = 50
)

// ValidateExerciseName trims the name and checks its length.
func ValidateExerciseName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0:
		return "", &ValidationError{Field: "name", Msg: "exercise name cannot be empty"}
	case n < minExerciseName:
		return "", &ValidationError{Field: "name", Msg: fmt.Sprintf("exercise name must be at least %d characters", minExerciseName)}
	case n > maxExerciseName:
		return "", &ValidationError{Field: "name", Msg: fmt.Sprintf("exercise name must be at most %d characters", maxExerciseName)}
	}
	return trimmed, nil
}

// NewExercise validates spec and returns an Exercise with a fresh ID.
// Type defaults to weight training and difficulty to beginner.
func NewExercise(spec ExerciseSpec) (Exercise, error) {
	name, err := ValidateExerciseName(spec.Name)
	if err != nil {
		return Exercise{}, err
	}
	if spec.Type == "" {
		spec.Type = WeightTraining
	}
	if !exerciseTypes[spec.Type] {
		return Exercise{}, &ValidationError{Field: "type", Msg: fmt.Sprintf("unknown exercise type %q", spec.Type)}
	}
	if spec.MuscleGroup == "" {
		return Exercise{}, &ValidationError{Field: "muscleGroup", Msg: "muscle group is required"}
	}
	if !isMuscleGroup(spec.MuscleGroup) {
		return Exercise{}, &ValidationError{Field: "muscleGroup", Msg: fmt.Sprintf("unknown muscle group %q", spec.MuscleGroup)}
	}
	if spec.Difficulty == "" {
		spec.Difficulty = Beginner
	}
	if !difficulties[spec.Difficulty] {
		return Exercise{}, &ValidationError{Field: "difficulty", Msg: fmt.Sprintf("unknown difficulty %q", spec.Difficulty)}
	}

	return Exercise{
		ID:                    uuid.New(),
		Name:                  name,
		Type:                  spec.Type,
		MuscleGroup:           spec.MuscleGroup,
		SecondaryMuscleGroups: orEmpty(spec.SecondaryMuscleGroups),
		Icon:                  spec.Icon,
		Difficulty:            spec.Difficulty,
		Equipment:             orEmpty(spec.Equipment),
		Description:           spec.Description,
		FormCues:              orEmpty(spec.FormCues),
	}, nil
}

// Targets reports whether g is the primary or a secondary muscle group.
func (e Exercise) Targets(g MuscleGroup) bool {
	if e.MuscleGroup == g {
		return true
	}
	for _, s := range e.SecondaryMuscleGroups {
		if s == g {
			return true
		}
	}
	return false
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
