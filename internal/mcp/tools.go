package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/tracker"
)

const defaultSetLimit = 200

var rangeEnum = mcp.Enum(
	string(analytics.Week), string(analytics.Month), string(analytics.ThreeMonths),
	string(analytics.Year), string(analytics.AllTime),
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.DateOnly, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

var errUnknownExercise = errors.New("unknown exercise")

// resolveExercise accepts an exercise id or a case-insensitive name.
func (h *handlers) resolveExercise(ctx context.Context, ref string) (models.Exercise, error) {
	ref = strings.TrimSpace(ref)
	exercises, err := h.ds.ListExercises(ctx, "")
	if err != nil {
		return models.Exercise{}, err
	}
	id, idErr := uuid.Parse(ref)
	for _, ex := range exercises {
		if (idErr == nil && ex.ID == id) || strings.EqualFold(ex.Name, ref) {
			return ex, nil
		}
	}
	return models.Exercise{}, fmt.Errorf("%w %q", errUnknownExercise, ref)
}

func (h *handlers) exerciseNames(ctx context.Context) (map[uuid.UUID]string, error) {
	exercises, err := h.ds.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(exercises))
	for _, ex := range exercises {
		names[ex.ID] = ex.Name
	}
	return names, nil
}

// namedSet is a workout set annotated with its exercise name.
type namedSet struct {
	models.WorkoutSet
	Exercise string `json:"exercise"`
}

func withNames(list []models.WorkoutSet, names map[uuid.UUID]string) []namedSet {
	out := make([]namedSet, len(list))
	for i, s := range list {
		out[i] = namedSet{WorkoutSet: s, Exercise: names[s.ExerciseID]}
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) queryFailed(tool string, err error) (*mcp.CallToolResult, error) {
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error()), nil
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog. Returns name, primary and secondary muscle groups, equipment, difficulty and form cues."),
	mcp.WithString("muscle_group", mcp.Description("Only exercises whose primary muscle group matches (e.g. Chest, Back, Legs, Full Body)")),
)

var toolGetWorkoutSets = mcp.NewTool("get_workout_sets",
	mcp.WithDescription("Query logged workout sets. Returns weight (kg), reps, RPE, rest time and failure flag for each set, oldest first."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Exercise name or id")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of most recent sets to return. Defaults to 200.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal record history. With an exercise and current_only, returns the standing bests: estimated 1RM (Brzycki), best session volume and the heaviest weight per rep count."),
	mcp.WithString("exercise", mcp.Description("Exercise name or id. Required when current_only is set.")),
	mcp.WithString("type", mcp.Description("Record type filter"), mcp.Enum(string(models.OneRepMax), string(models.Volume), string(models.WeightAtReps), string(models.TotalReps))),
	mcp.WithBoolean("current_only", mcp.Description("Return only the standing bests instead of the full ledger")),
)

var toolGetVolumeMetrics = mcp.NewTool("get_volume_metrics",
	mcp.WithDescription("Volume totals for one exercise over a time range: total volume (kg x reps), total reps, average weight, set count, average RPE and rest time."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name or id")),
	mcp.WithString("range", mcp.Description("Time range. Defaults to week."), rangeEnum),
)

var toolGetMuscleGroupVolume = mcp.NewTool("get_muscle_group_volume",
	mcp.WithDescription("Training volume per primary muscle group over a time range, sorted by volume. Useful to spot neglected muscle groups."),
	mcp.WithString("range", mcp.Description("Time range. Defaults to week."), rangeEnum),
)

var toolGetExerciseProgression = mcp.NewTool("get_exercise_progression",
	mcp.WithDescription("Day-by-day progression for one exercise: max weight, session volume, sets, average RPE and best estimated 1RM per training day."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name or id")),
	mcp.WithString("range", mcp.Description("Time range. Defaults to 3months."), rangeEnum),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Overview of a time range: total sets, volume and training days, per-exercise stats, and the effort distribution by reps in reserve with failure rate."),
	mcp.WithString("range", mcp.Description("Time range. Defaults to month."), rangeEnum),
)

// --- Tool handlers ---

func rangeArg(req mcp.CallToolRequest, def analytics.TimeRange) (analytics.TimeRange, error) {
	v := req.GetString("range", "")
	if v == "" {
		return def, nil
	}
	return analytics.ParseTimeRange(v)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var group models.MuscleGroup
	if v := req.GetString("muscle_group", ""); v != "" {
		g, err := models.ParseMuscleGroup(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		group = g
	}

	exercises, err := h.ds.ListExercises(ctx, group)
	if err != nil {
		return h.queryFailed("list_exercises", err)
	}
	return jsonResult(exercises)
}

func (h *handlers) getWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	f := tracker.SetFilter{Start: start, End: end, Limit: req.GetInt("limit", defaultSetLimit)}

	if ref := req.GetString("exercise", ""); ref != "" {
		ex, err := h.resolveExercise(ctx, ref)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.ExerciseID = ex.ID
	}

	list, err := h.ds.WorkoutSets(ctx, f)
	if err != nil {
		return h.queryFailed("get_workout_sets", err)
	}
	names, err := h.exerciseNames(ctx)
	if err != nil {
		return h.queryFailed("get_workout_sets", err)
	}
	return jsonResult(withNames(list, names))
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f tracker.RecordFilter
	if ref := req.GetString("exercise", ""); ref != "" {
		ex, err := h.resolveExercise(ctx, ref)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.ExerciseID = ex.ID
	}

	if req.GetBool("current_only", false) {
		if f.ExerciseID == uuid.Nil {
			return mcp.NewToolResultError("exercise parameter is required with current_only"), nil
		}
		bests, err := h.ds.CurrentBests(ctx, f.ExerciseID)
		if err != nil {
			return h.queryFailed("get_personal_records", err)
		}
		return jsonResult(bests)
	}

	if v := req.GetString("type", ""); v != "" {
		t, err := models.ParseRecordType(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Type = t
	}
	prs, err := h.ds.PersonalRecords(ctx, f)
	if err != nil {
		return h.queryFailed("get_personal_records", err)
	}
	return jsonResult(prs)
}

func (h *handlers) getVolumeMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	rng, err := rangeArg(req, analytics.Week)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ex, err := h.resolveExercise(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	vm, err := h.ds.Volume(ctx, ex.ID, rng)
	if err != nil {
		return h.queryFailed("get_volume_metrics", err)
	}
	return jsonResult(map[string]any{
		"exercise": ex.Name,
		"range":    rng,
		"metrics":  vm,
	})
}

func (h *handlers) getMuscleGroupVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng, err := rangeArg(req, analytics.Week)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	groups, err := h.ds.MuscleGroups(ctx, rng)
	if err != nil {
		return h.queryFailed("get_muscle_group_volume", err)
	}
	return jsonResult(groups)
}

func (h *handlers) getExerciseProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	rng, err := rangeArg(req, analytics.ThreeMonths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ex, err := h.resolveExercise(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	points, err := h.ds.Progression(ctx, ex.ID, rng)
	if err != nil {
		return h.queryFailed("get_exercise_progression", err)
	}
	return jsonResult(map[string]any{
		"exercise":    ex.Name,
		"range":       rng,
		"progression": points,
	})
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng, err := rangeArg(req, analytics.Month)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := h.ds.TrainingSummary(ctx, rng)
	if err != nil {
		return h.queryFailed("get_training_summary", err)
	}
	return jsonResult(sum)
}
