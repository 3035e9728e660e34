package sets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/logging"
	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/storage"
	"github.com/claude/loadprogress/internal/storage/storagetest"
)

type known map[uuid.UUID]bool

func (k known) Has(id uuid.UUID) bool { return k[id] }

var (
	squat = uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962")
	bench = uuid.MustParse("9f1e7c44-5a0a-4f4f-9a4e-2d6a7b1d8c01")
)

func newStore(t *testing.T, s storage.Store) *Store {
	t.Helper()
	return New(s, known{squat: true, bench: true}, logging.Discard(), metrics.NewTestManager(), time.UTC)
}

func mkSet(t *testing.T, ex uuid.UUID, weight float64, reps int, at time.Time) models.WorkoutSet {
	t.Helper()
	ws, err := models.NewWorkoutSet(models.SetInput{ExerciseID: ex, Weight: models.Float(weight), Reps: reps, Date: at})
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func day(d, h int) time.Time {
	return time.Date(2026, 5, d, h, 0, 0, 0, time.UTC)
}

// TestAddAndIndices verifies that ForExercise and ForDay see appended sets in
// insertion order and that the collection is persisted.
func TestAddAndIndices(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := newStore(t, mem)

	a := mkSet(t, squat, 100, 5, day(1, 9))
	b := mkSet(t, bench, 80, 8, day(1, 10))
	c := mkSet(t, squat, 105, 5, day(3, 9))
	for _, ws := range []models.WorkoutSet{a, b, c} {
		if err := s.Add(ctx, ws); err != nil {
			t.Fatal(err)
		}
	}

	if got := s.ForExercise(squat); len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Errorf("ForExercise(squat) = %v", got)
	}
	if got := s.ForDay(day(1, 23)); len(got) != 2 {
		t.Errorf("ForDay(1st) = %d sets, want 2", len(got))
	}
	if got := s.ForDay(day(2, 0)); len(got) != 0 {
		t.Errorf("ForDay(2nd) = %d sets, want 0", len(got))
	}

	reloaded := newStore(t, mem)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 3 || len(reloaded.ForExercise(squat)) != 2 {
		t.Errorf("reload lost sets: %d", reloaded.Len())
	}
}

// TestAddUnknownExercise verifies the set is not stored and listeners are not
// called.
func TestAddUnknownExercise(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	called := false
	s.OnChange(func(context.Context, Change) { called = true })

	err := s.Add(context.Background(), mkSet(t, uuid.New(), 50, 5, day(1, 9)))
	if !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("err = %v, want ErrExerciseNotFound", err)
	}
	if s.Len() != 0 || called {
		t.Errorf("len = %d, listener called = %v", s.Len(), called)
	}
}

// TestRollbackOnPersistFailure verifies that every mutation leaves the
// collection and indices untouched when the write fails.
func TestRollbackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	flaky := storagetest.NewFlaky()
	s := newStore(t, flaky)
	first := mkSet(t, squat, 100, 5, day(1, 9))
	if err := s.Add(ctx, first); err != nil {
		t.Fatal(err)
	}

	flaky.FailWrites(true)
	if err := s.Add(ctx, mkSet(t, squat, 110, 5, day(2, 9))); err == nil {
		t.Error("Add: expected error")
	}
	if n, err := s.Delete(ctx, []uuid.UUID{first.ID}); err == nil || n != 0 {
		t.Errorf("Delete = %d, %v", n, err)
	}
	if n, err := s.CleanupOlderThan(ctx, day(30, 0)); err == nil || n != 0 {
		t.Errorf("CleanupOlderThan = %d, %v", n, err)
	}

	if s.Len() != 1 || len(s.ForExercise(squat)) != 1 || len(s.ForDay(day(2, 9))) != 0 {
		t.Errorf("state changed after failed writes: %v", s.All())
	}
}

// TestDeleteAndCleanup verifies removal counts, strict cutoff comparison and
// the rebuilt indices.
func TestDeleteAndCleanup(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())
	old := mkSet(t, squat, 100, 5, day(1, 9))
	edge := mkSet(t, squat, 100, 5, day(10, 0))
	recent := mkSet(t, bench, 60, 10, day(20, 9))
	for _, ws := range []models.WorkoutSet{old, edge, recent} {
		s.Add(ctx, ws)
	}

	var changes []Change
	s.OnChange(func(_ context.Context, c Change) { changes = append(changes, c) })

	n, err := s.CleanupOlderThan(ctx, day(10, 0))
	if err != nil || n != 1 {
		t.Fatalf("CleanupOlderThan = %d, %v, want 1", n, err)
	}
	if len(s.ForDay(day(1, 0))) != 0 || len(s.ForDay(day(10, 0))) != 1 {
		t.Error("cutoff must be strict")
	}

	n, err = s.Delete(ctx, []uuid.UUID{recent.ID, uuid.New()})
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v, want 1", n, err)
	}
	if n, _ := s.Delete(ctx, []uuid.UUID{uuid.New()}); n != 0 {
		t.Errorf("Delete unknown = %d", n)
	}

	if len(changes) != 2 || changes[0].Kind != Cleaned || changes[1].Kind != Deleted {
		t.Errorf("changes = %+v", changes)
	}
	if got := s.All(); len(got) != 1 || got[0].ID != edge.ID {
		t.Errorf("All() = %v", got)
	}
}

// TestListenersRunInOrder verifies registration order is delivery order.
func TestListenersRunInOrder(t *testing.T) {
	s := newStore(t, storage.NewMemory())
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		s.OnChange(func(context.Context, Change) { order = append(order, i) })
	}
	s.Add(context.Background(), mkSet(t, squat, 100, 5, day(1, 9)))
	if len(order) != 3 || order[0] != 1 || order[2] != 3 {
		t.Errorf("order = %v", order)
	}
}

// TestBetween verifies inclusive bounds, open bounds and date ordering.
func TestBetween(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemory())
	late := mkSet(t, squat, 100, 5, day(5, 9))
	early := mkSet(t, squat, 100, 5, day(2, 9))
	s.Add(ctx, late)
	s.Add(ctx, early)

	got := s.Between(time.Time{}, time.Time{})
	if len(got) != 2 || got[0].ID != early.ID {
		t.Errorf("open range = %v", got)
	}
	if got := s.Between(day(2, 9), day(4, 0)); len(got) != 1 || got[0].ID != early.ID {
		t.Errorf("bounded range = %v", got)
	}
}
