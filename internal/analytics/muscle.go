package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/models"
)

// MuscleGroupVolume is the training load attributed to one primary muscle group.
type MuscleGroupVolume struct {
	MuscleGroup   models.MuscleGroup `json:"muscleGroup"`
	Volume        float64            `json:"volume"`
	SetCount      int                `json:"setCount"`
	ExerciseCount int                `json:"exerciseCount"`
}

// MuscleGroupVolumes returns one entry per muscle group, sorted by volume
// descending. ExerciseCount is the number of catalog exercises in the group,
// trained or not. Sets are attributed to their exercise's primary group.
func MuscleGroupVolumes(exercises []models.Exercise, sets []models.WorkoutSet) []MuscleGroupVolume {
	groupOf := make(map[uuid.UUID]models.MuscleGroup, len(exercises))
	byGroup := make(map[models.MuscleGroup]*MuscleGroupVolume, len(models.MuscleGroups))
	out := make([]MuscleGroupVolume, len(models.MuscleGroups))
	for i, g := range models.MuscleGroups {
		out[i].MuscleGroup = g
		byGroup[g] = &out[i]
	}

	for _, ex := range exercises {
		groupOf[ex.ID] = ex.MuscleGroup
		if v, ok := byGroup[ex.MuscleGroup]; ok {
			v.ExerciseCount++
		}
	}
	for _, s := range sets {
		g, ok := groupOf[s.ExerciseID]
		if !ok {
			continue
		}
		v := byGroup[g]
		v.Volume += s.Volume()
		v.SetCount++
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Volume > out[j].Volume })
	return out
}

// VolumePoint is the volume of one calendar day.
type VolumePoint struct {
	Date   string  `json:"date"`
	Volume float64 `json:"volume"`
}

// DailyVolume returns one point per calendar day from start to end inclusive,
// in loc, with zero volume for days without training. An empty group counts
// every exercise.
func DailyVolume(exercises []models.Exercise, sets []models.WorkoutSet, group models.MuscleGroup, start, end time.Time, loc *time.Location) []VolumePoint {
	inGroup := make(map[uuid.UUID]bool, len(exercises))
	for _, ex := range exercises {
		if group == "" || ex.MuscleGroup == group {
			inGroup[ex.ID] = true
		}
	}

	perDay := map[string]float64{}
	for _, s := range sets {
		if inGroup[s.ExerciseID] {
			perDay[models.DayKey(s.Date, loc)] += s.Volume()
		}
	}

	var points []VolumePoint
	last := models.StartOfDay(end, loc)
	for d := models.StartOfDay(start, loc); !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		points = append(points, VolumePoint{Date: key, Volume: perDay[key]})
	}
	return points
}
