package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/loadprogress/internal/tracker"
)

const recentWorkoutDays = 14

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -recentWorkoutDays)

	list, err := h.ds.WorkoutSets(ctx, tracker.SetFilter{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	names, err := h.exerciseNames(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, withNames(list, names))
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, exercises)
}

// exerciseBests pairs an exercise name with its standing records.
type exerciseBests struct {
	Exercise string `json:"exercise"`
	*tracker.Bests
}

func (h *handlers) currentRecords(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	prs, err := h.ds.PersonalRecords(ctx, tracker.RecordFilter{})
	if err != nil {
		return nil, err
	}
	names, err := h.exerciseNames(ctx)
	if err != nil {
		return nil, err
	}

	// exercises in order of their first record
	var order []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, pr := range prs {
		if !seen[pr.ExerciseID] {
			seen[pr.ExerciseID] = true
			order = append(order, pr.ExerciseID)
		}
	}

	out := []exerciseBests{}
	for _, id := range order {
		if _, ok := names[id]; !ok {
			continue
		}
		b, err := h.ds.CurrentBests(ctx, id)
		if err != nil {
			h.log.Warn("current_records: bests failed", "exercise_id", id, "error", err)
			continue
		}
		out = append(out, exerciseBests{Exercise: names[id], Bests: b})
	}
	return jsonContents(req.Params.URI, out)
}
