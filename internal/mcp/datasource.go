package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both Local (in-process)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context, group models.MuscleGroup) ([]models.Exercise, error)
	WorkoutSets(ctx context.Context, f tracker.SetFilter) ([]models.WorkoutSet, error)
	PersonalRecords(ctx context.Context, f tracker.RecordFilter) ([]models.PersonalRecord, error)
	CurrentBests(ctx context.Context, exerciseID uuid.UUID) (*tracker.Bests, error)
	Volume(ctx context.Context, exerciseID uuid.UUID, r analytics.TimeRange) (*analytics.VolumeMetrics, error)
	MuscleGroups(ctx context.Context, r analytics.TimeRange) ([]analytics.MuscleGroupVolume, error)
	Progression(ctx context.Context, exerciseID uuid.UUID, r analytics.TimeRange) ([]analytics.ProgressionPoint, error)
	TrainingSummary(ctx context.Context, r analytics.TimeRange) (*tracker.TrainingSummary, error)
}

// Local serves MCP queries straight from a tracker in the same process.
type Local struct {
	svc *tracker.Service
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func NewLocal(svc *tracker.Service) *Local {
	return &Local{svc: svc}
}

func (l *Local) ListExercises(_ context.Context, group models.MuscleGroup) ([]models.Exercise, error) {
	return l.svc.Exercises(group), nil
}

func (l *Local) WorkoutSets(_ context.Context, f tracker.SetFilter) ([]models.WorkoutSet, error) {
	return l.svc.WorkoutSets(f), nil
}

func (l *Local) PersonalRecords(_ context.Context, f tracker.RecordFilter) ([]models.PersonalRecord, error) {
	return l.svc.PersonalRecords(f), nil
}

func (l *Local) CurrentBests(_ context.Context, exerciseID uuid.UUID) (*tracker.Bests, error) {
	b, err := l.svc.CurrentBests(exerciseID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (l *Local) Volume(_ context.Context, exerciseID uuid.UUID, r analytics.TimeRange) (*analytics.VolumeMetrics, error) {
	vm, err := l.svc.Volume(exerciseID, r)
	if err != nil {
		return nil, err
	}
	return &vm, nil
}

func (l *Local) MuscleGroups(_ context.Context, r analytics.TimeRange) ([]analytics.MuscleGroupVolume, error) {
	return l.svc.MuscleGroups(r), nil
}

func (l *Local) Progression(_ context.Context, exerciseID uuid.UUID, r analytics.TimeRange) ([]analytics.ProgressionPoint, error) {
	return l.svc.Progression(exerciseID, r)
}

func (l *Local) TrainingSummary(_ context.Context, r analytics.TimeRange) (*tracker.TrainingSummary, error) {
	sum := l.svc.Summaries(r)
	return &sum, nil
}
