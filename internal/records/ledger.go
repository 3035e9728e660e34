// Package records derives personal records from workout sets and keeps them
// in an append-only ledger.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/storage"
)

// Publisher runs jobs off the caller's goroutine.
type Publisher interface {
	Submit(job func()) bool
}

type typeKey struct {
	exercise uuid.UUID
	typ      models.RecordType
}

type repsKey struct {
	exercise uuid.UUID
	reps     int
}

// Ledger is safe for concurrent use. Records are never removed or rewritten.
type Ledger struct {
	store   storage.Store
	log     *slog.Logger
	metrics *metrics.Manager
	pub     Publisher
	loc     *time.Location

	mu         sync.RWMutex
	records    []models.PersonalRecord
	byExercise map[uuid.UUID][]int
	best       map[typeKey]int
	bestAtReps map[repsKey]int
	byDay      map[string][]int
}

// New returns an empty ledger. Days are bucketed in loc, or time.Local when nil.
func New(store storage.Store, log *slog.Logger, m *metrics.Manager, pub Publisher, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	l := &Ledger{store: store, log: log, metrics: m, pub: pub, loc: loc}
	l.reindex()
	return l
}

// Load replaces the in-memory ledger with the stored one. A corrupt blob is
// logged and treated as empty.
func (l *Ledger) Load(ctx context.Context) error {
	var stored []models.PersonalRecord
	found, err := storage.LoadJSON(ctx, l.store, storage.KeyPersonalRecords, &stored)
	if err != nil {
		if !found {
			return fmt.Errorf("loading personal records: %w", err)
		}
		l.log.Error("failed to decode personal records, starting empty", "error", err)
		stored = nil
	}

	l.mu.Lock()
	l.records = stored
	l.reindex()
	l.mu.Unlock()

	l.log.Info("personal records loaded", "count", len(stored))
	return nil
}

// CheckSet compares a weighted set against the current weight-at-reps best
// for its rep count and the current estimated 1RM best, and appends a record
// for each one it beats. Bodyweight sets never produce records.
func (l *Ledger) CheckSet(ctx context.Context, set models.WorkoutSet) ([]models.PersonalRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := l.setRecordsLocked(set)
	if err := l.appendLocked(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// CheckVolume appends a volume record when totalVolume beats the current
// best. A non-positive volume never records.
func (l *Ledger) CheckVolume(ctx context.Context, exerciseID uuid.UUID, totalVolume float64, at time.Time) (*models.PersonalRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pr, ok := l.volumeRecordLocked(exerciseID, totalVolume, at)
	if !ok {
		return nil, nil
	}
	if err := l.appendLocked(ctx, []models.PersonalRecord{pr}); err != nil {
		return nil, err
	}
	return &pr, nil
}

// CheckWorkoutSet runs CheckSet and then CheckVolume with sessionVolume, and
// persists every record they produce in one write. Either all of them are
// appended or none are.
func (l *Ledger) CheckWorkoutSet(ctx context.Context, set models.WorkoutSet, sessionVolume float64) ([]models.PersonalRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := l.setRecordsLocked(set)
	if pr, ok := l.volumeRecordLocked(set.ExerciseID, sessionVolume, set.Date); ok {
		fresh = append(fresh, pr)
	}
	if err := l.appendLocked(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (l *Ledger) setRecordsLocked(set models.WorkoutSet) []models.PersonalRecord {
	if set.Weight == nil {
		return nil
	}
	weight := *set.Weight
	setID := set.ID

	var fresh []models.PersonalRecord
	if cur, ok := l.bestAtRepsLocked(set.ExerciseID, set.Reps); !ok || weight > cur.Value {
		pr := models.NewPersonalRecord(set.ExerciseID, models.WeightAtReps, weight, set.Reps, set.Date)
		pr.SetID = &setID
		fresh = append(fresh, pr)
	}

	oneRM := OneRepMax(weight, set.Reps)
	if cur, ok := l.bestLocked(set.ExerciseID, models.OneRepMax); !ok || oneRM > cur.Value {
		pr := models.NewPersonalRecord(set.ExerciseID, models.OneRepMax, oneRM, 1, set.Date)
		pr.SetID = &setID
		fresh = append(fresh, pr)
	}
	return fresh
}

func (l *Ledger) volumeRecordLocked(exerciseID uuid.UUID, totalVolume float64, at time.Time) (models.PersonalRecord, bool) {
	if totalVolume <= 0 {
		return models.PersonalRecord{}, false
	}
	if cur, ok := l.bestLocked(exerciseID, models.Volume); ok && totalVolume <= cur.Value {
		return models.PersonalRecord{}, false
	}
	return models.NewPersonalRecord(exerciseID, models.Volume, totalVolume, 1, at), true
}

func (l *Ledger) appendLocked(ctx context.Context, fresh []models.PersonalRecord) error {
	if len(fresh) == 0 {
		return nil
	}

	next := make([]models.PersonalRecord, len(l.records), len(l.records)+len(fresh))
	copy(next, l.records)
	next = append(next, fresh...)

	if err := storage.SaveJSON(ctx, l.store, storage.KeyPersonalRecords, next); err != nil {
		l.metrics.CounterPersistenceFailures.WithLabelValues(storage.KeyPersonalRecords).Inc()
		l.log.Error("failed to save personal records", "error", err)
		return fmt.Errorf("saving personal records: %w", err)
	}

	start := len(l.records)
	l.records = next
	for i := start; i < len(next); i++ {
		l.index(i)
	}
	for _, pr := range fresh {
		l.publish(pr)
	}
	return nil
}

func (l *Ledger) publish(pr models.PersonalRecord) {
	l.pub.Submit(func() {
		l.metrics.CounterPersonalRecords.WithLabelValues(string(pr.Type)).Inc()
		l.log.Info("new_personal_record",
			"type", pr.Type,
			"exercise_id", pr.ExerciseID,
			"value", pr.Value,
			"reps", pr.Reps,
		)
	})
}

func (l *Ledger) reindex() {
	l.byExercise = make(map[uuid.UUID][]int)
	l.best = make(map[typeKey]int)
	l.bestAtReps = make(map[repsKey]int)
	l.byDay = make(map[string][]int)
	for i := range l.records {
		l.index(i)
	}
}

// index adds record i to every index. Later records replace earlier ones
// with an equal value, so the newest of tied records is the best.
func (l *Ledger) index(i int) {
	pr := l.records[i]
	l.byExercise[pr.ExerciseID] = append(l.byExercise[pr.ExerciseID], i)
	day := models.DayKey(pr.Date, l.loc)
	l.byDay[day] = append(l.byDay[day], i)

	tk := typeKey{pr.ExerciseID, pr.Type}
	if j, ok := l.best[tk]; !ok || pr.Value >= l.records[j].Value {
		l.best[tk] = i
	}
	if pr.Type == models.WeightAtReps {
		rk := repsKey{pr.ExerciseID, pr.Reps}
		if j, ok := l.bestAtReps[rk]; !ok || pr.Value >= l.records[j].Value {
			l.bestAtReps[rk] = i
		}
	}
}

func (l *Ledger) bestLocked(exerciseID uuid.UUID, typ models.RecordType) (models.PersonalRecord, bool) {
	i, ok := l.best[typeKey{exerciseID, typ}]
	if !ok {
		return models.PersonalRecord{}, false
	}
	return l.records[i], true
}

func (l *Ledger) bestAtRepsLocked(exerciseID uuid.UUID, reps int) (models.PersonalRecord, bool) {
	i, ok := l.bestAtReps[repsKey{exerciseID, reps}]
	if !ok {
		return models.PersonalRecord{}, false
	}
	return l.records[i], true
}

// Best returns the highest record of typ for an exercise. For WeightAtReps
// this is the best across all rep counts; see BestAtReps.
func (l *Ledger) Best(exerciseID uuid.UUID, typ models.RecordType) (models.PersonalRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bestLocked(exerciseID, typ)
}

// BestAtReps returns the heaviest weight-at-reps record for reps.
func (l *Ledger) BestAtReps(exerciseID uuid.UUID, reps int) (models.PersonalRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bestAtRepsLocked(exerciseID, reps)
}

func (l *Ledger) pick(idx []int) []models.PersonalRecord {
	out := make([]models.PersonalRecord, len(idx))
	for i, j := range idx {
		out[i] = l.records[j]
	}
	return out
}

// ForExercise returns an exercise's record history in append order.
func (l *Ledger) ForExercise(id uuid.UUID) []models.PersonalRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pick(l.byExercise[id])
}

// ForDay returns the records achieved on t's calendar day.
func (l *Ledger) ForDay(t time.Time) []models.PersonalRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pick(l.byDay[models.DayKey(t, l.loc)])
}

// All returns the whole ledger in append order.
func (l *Ledger) All() []models.PersonalRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.PersonalRecord, len(l.records))
	copy(out, l.records)
	return out
}
