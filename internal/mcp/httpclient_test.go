package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/analytics"
	"github.com/claude/loadprogress/internal/backup"
	"github.com/claude/loadprogress/internal/logging"
	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/server"
	"github.com/claude/loadprogress/internal/tracker"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestWorkoutSetsParams verifies the HTTP client sends the set filter as
// query params and parses the JSON array response.
func TestWorkoutSetsParams(t *testing.T) {
	exID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sets": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if got := q.Get("exercise"); got != exID.String() {
				t.Errorf("exercise=%q, want %s", got, exID)
			}
			if got := q.Get("start"); got != "2026-01-01T00:00:00Z" {
				t.Errorf("start=%q", got)
			}
			if got := q.Get("limit"); got != "10" {
				t.Errorf("limit=%q, want 10", got)
			}
			writeTestJSON(t, w, []models.WorkoutSet{
				{ID: uuid.New(), ExerciseID: exID, Reps: 5, Date: start},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL + "/")
	got, err := client.WorkoutSets(context.Background(), tracker.SetFilter{ExerciseID: exID, Start: start, End: end, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Reps != 5 {
		t.Errorf("sets = %+v", got)
	}
}

// TestRangeParams verifies analytics calls pass the range through.
func TestRangeParams(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/analytics/muscle-groups": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("range"); got != "3months" {
				t.Errorf("range=%q, want 3months", got)
			}
			writeTestJSON(t, w, []analytics.MuscleGroupVolume{{MuscleGroup: models.Legs, Volume: 1200, SetCount: 6}})
		},
	})
	defer ts.Close()

	got, err := NewHTTPClient(ts.URL).MuscleGroups(context.Background(), analytics.ThreeMonths)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Volume != 1200 {
		t.Errorf("groups = %+v", got)
	}
}

// TestHTTPError verifies non-200 responses surface the server's error message.
func TestHTTPError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records/best": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			writeTestJSON(t, w, map[string]string{"error": "exercise not found"})
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).CurrentBests(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "exercise not found") {
		t.Errorf("err = %v", err)
	}
}

// TestConnectionRefused verifies a clear error when the server is down.
func TestConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	if _, err := NewHTTPClient(url).ListExercises(context.Background(), ""); err == nil {
		t.Fatal("expected error when server is unreachable")
	}
}

// TestHTTPClientAgainstAPI runs the remote data source against the real REST
// API so both sides agree on paths and payloads.
func TestHTTPClientAgainstAPI(t *testing.T) {
	h, svc := newHandlers(t)
	m, reg := metrics.NewTestManagerAndRegistry()
	api := server.New(svc, backup.New(nil, t.TempDir(), logging.Discard(), m), m, reg, "k", logging.Discard())
	ts := httptest.NewServer(api)
	defer ts.Close()

	remote := &handlers{ds: NewHTTPClient(ts.URL), log: logging.Discard()}
	ctx := context.Background()
	bench, _ := svc.FindExercise("Bench Press")

	exercises, err := remote.ds.ListExercises(ctx, models.Chest)
	if err != nil || len(exercises) != 4 {
		t.Fatalf("exercises = %d, %v", len(exercises), err)
	}

	sets, err := remote.ds.WorkoutSets(ctx, tracker.SetFilter{ExerciseID: bench.ID})
	if err != nil || len(sets) != 2 {
		t.Fatalf("sets = %d, %v", len(sets), err)
	}

	prs, err := remote.ds.PersonalRecords(ctx, tracker.RecordFilter{Type: models.Volume})
	if err != nil || len(prs) != 2 {
		t.Errorf("volume records = %d, %v", len(prs), err)
	}

	bests, err := remote.ds.CurrentBests(ctx, bench.ID)
	if err != nil || bests.OneRepMax == nil {
		t.Errorf("bests = %+v, %v", bests, err)
	}

	vol, err := remote.ds.Volume(ctx, bench.ID, analytics.Week)
	if err != nil || vol.TotalVolume != 1025 {
		t.Errorf("volume = %+v, %v", vol, err)
	}

	points, err := remote.ds.Progression(ctx, bench.ID, analytics.Month)
	if err != nil || len(points) != 1 {
		t.Errorf("progression = %+v, %v", points, err)
	}

	sum, err := remote.ds.TrainingSummary(ctx, analytics.Week)
	if err != nil || sum.TotalSets != 2 {
		t.Errorf("summary = %+v, %v", sum, err)
	}

	// the same tool works over either source
	for _, hh := range []*handlers{h, remote} {
		text, isErr := call(t, hh.getVolumeMetrics, map[string]any{"exercise": "bench press"})
		if isErr || !strings.Contains(text, `"totalVolume":1025`) {
			t.Errorf("get_volume_metrics = %s", text)
		}
	}
}
