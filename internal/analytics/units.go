package analytics

import "github.com/claude/loadprogress/internal/models"

// Weight-carrying results are computed in kilograms. The InUnit helpers
// rescale them for display; volumes scale linearly with weight.

func (v VolumeMetrics) InUnit(u models.Unit) VolumeMetrics {
	v.TotalVolume = u.FromKg(v.TotalVolume)
	v.AverageWeight = u.FromKg(v.AverageWeight)
	return v
}

func MuscleGroupsInUnit(list []MuscleGroupVolume, u models.Unit) []MuscleGroupVolume {
	out := make([]MuscleGroupVolume, len(list))
	for i, g := range list {
		g.Volume = u.FromKg(g.Volume)
		out[i] = g
	}
	return out
}

func PointsInUnit(list []VolumePoint, u models.Unit) []VolumePoint {
	out := make([]VolumePoint, len(list))
	for i, p := range list {
		p.Volume = u.FromKg(p.Volume)
		out[i] = p
	}
	return out
}

func SummariesInUnit(list []ExerciseSummary, u models.Unit) []ExerciseSummary {
	out := make([]ExerciseSummary, len(list))
	for i, s := range list {
		s.Tonnage = u.FromKg(s.Tonnage)
		s.MaxWeight = u.FromKg(s.MaxWeight)
		s.BestOneRepMax = u.FromKg(s.BestOneRepMax)
		out[i] = s
	}
	return out
}

func ProgressionInUnit(list []ProgressionPoint, u models.Unit) []ProgressionPoint {
	out := make([]ProgressionPoint, len(list))
	for i, p := range list {
		p.MaxWeight = u.FromKg(p.MaxWeight)
		p.SessionVolume = u.FromKg(p.SessionVolume)
		p.BestOneRepMax = u.FromKg(p.BestOneRepMax)
		out[i] = p
	}
	return out
}
