package models

import "github.com/google/uuid"

func seed(name string, typ ExerciseType, group MuscleGroup, icon string, diff Difficulty, eq []Equipment, desc string, cues ...string) Exercise {
	return Exercise{
		ID:                    uuid.New(),
		Name:                  name,
		Type:                  typ,
		MuscleGroup:           group,
		SecondaryMuscleGroups: []MuscleGroup{},
		Icon:                  icon,
		Difficulty:            diff,
		Equipment:             eq,
		Description:           desc,
		FormCues:              cues,
	}
}

// DefaultExercises returns the seed catalog installed on first run. Each call
// generates fresh IDs.
func DefaultExercises() []Exercise {
	bw := []Equipment{NoEquipment}
	return []Exercise{
		// Chest
		seed("Bench Press", WeightTraining, Chest, "benchPress", Intermediate, []Equipment{Barbell, Bench}, "Classic compound chest exercise", "Retract shoulder blades", "Keep feet planted"),
		seed("Incline Dumbbell Press", WeightTraining, Chest, "inclineBench", Intermediate, []Equipment{Dumbbell, Bench}, "Upper chest focused press", "Control the weight", "Keep elbows at 45 degrees"),
		seed("Push-Ups", Bodyweight, Chest, "pushUp", Beginner, bw, "Fundamental pushing exercise", "Keep core tight", "Full range of motion"),
		seed("Dips", Bodyweight, Chest, "dips", Intermediate, bw, "Advanced chest and tricep exercise", "Lean forward for chest focus", "Control the descent"),

		// Back
		seed("Pull-Ups", Bodyweight, Back, "pullUp", Intermediate, []Equipment{PullupBar}, "Upper body pulling movement", "Full hang at bottom", "Pull shoulder blades down"),
		seed("Deadlift", WeightTraining, Back, "deadlift", Advanced, []Equipment{Barbell}, "Fundamental hip hinge movement", "Neutral spine", "Push through floor"),
		seed("Barbell Rows", WeightTraining, Back, "bentOverRow", Intermediate, []Equipment{Barbell}, "Horizontal pulling movement", "Hinge at hips", "Pull to lower chest"),
		seed("Lat Pulldown", WeightTraining, Back, "latPulldown", Beginner, []Equipment{Cable}, "Vertical pulling movement", "Pull to upper chest", "Control the weight"),

		// Legs
		seed("Squats", WeightTraining, Legs, "squat", Intermediate, []Equipment{Barbell}, "Fundamental lower body movement", "Break at hips and knees", "Keep chest up"),
		seed("Romanian Deadlift", WeightTraining, Legs, "romanianDeadlift", Intermediate, []Equipment{Barbell}, "Hamstring focused movement", "Hinge at hips", "Soft knee bend"),
		seed("Walking Lunges", Bodyweight, Legs, "bodyweight", Beginner, bw, "Unilateral leg exercise", "Step with control", "Keep torso upright"),
		seed("Leg Press", WeightTraining, Legs, "legPress", Beginner, []Equipment{Machine}, "Machine-based leg exercise", "Control the weight", "Full range of motion"),

		// Shoulders
		seed("Overhead Press", WeightTraining, Shoulders, "overheadPress", Intermediate, []Equipment{Barbell}, "Vertical pressing movement", "Lock out arms", "Engage core"),
		seed("Lateral Raises", WeightTraining, Shoulders, "lateralRaise", Beginner, []Equipment{Dumbbell}, "Lateral deltoid isolation", "Lead with elbows", "Control descent"),
		seed("Front Raises", WeightTraining, Shoulders, "frontRaise", Beginner, []Equipment{Dumbbell}, "Front deltoid isolation", "Keep arms straight", "Control movement"),
		seed("Pike Push-Ups", Bodyweight, Shoulders, "pushUp", Intermediate, bw, "Bodyweight shoulder press", "Form inverted V", "Lower with control"),

		// Arms
		seed("Bicep Curls", WeightTraining, Arms, "bicepCurl", Beginner, []Equipment{Dumbbell}, "Basic bicep exercise", "Keep elbows still", "Full range of motion"),
		seed("Tricep Extensions", WeightTraining, Arms, "tricepExtension", Beginner, []Equipment{Dumbbell}, "Tricep isolation", "Keep elbows tucked", "Extend fully"),
		seed("Diamond Push-Ups", Bodyweight, Arms, "pushUp", Intermediate, bw, "Tricep focused push-up", "Diamond hand position", "Keep elbows tucked"),
		seed("Hammer Curls", WeightTraining, Arms, "hammerCurl", Beginner, []Equipment{Dumbbell}, "Neutral grip bicep curl", "Vertical hand position", "Control the weight"),

		// Core
		seed("Plank", Bodyweight, Core, "plank", Beginner, bw, "Core stabilization exercise", "Keep body straight", "Engage core"),
		seed("Russian Twists", Bodyweight, Core, "russianTwist", Intermediate, bw, "Rotational core exercise", "Keep feet off ground", "Rotate from core"),
		seed("Leg Raises", Bodyweight, Core, "legRaise", Intermediate, bw, "Lower abs focused movement", "Keep legs straight", "Control descent"),
		seed("Cable Crunches", WeightTraining, Core, "machine", Intermediate, []Equipment{Cable}, "Weighted core exercise", "Round spine", "Pull with abs"),

		// Full body
		seed("Burpees", Bodyweight, FullBody, "burpee", Intermediate, bw, "Full body conditioning", "Explosive movement", "Control landing"),
		seed("Mountain Climbers", Bodyweight, FullBody, "mountainClimber", Beginner, bw, "Dynamic core exercise", "Keep hips low", "Alternate legs quickly"),
		seed("Turkish Get-Ups", WeightTraining, FullBody, "turkishGetUp", Advanced, []Equipment{Kettlebell}, "Complex movement pattern", "Keep arm vertical", "Move with control"),
		seed("Clean and Press", WeightTraining, FullBody, "cleanAndJerk", Advanced, []Equipment{Barbell}, "Olympic lifting movement", "Pull with legs", "Catch in rack position"),
	}
}
