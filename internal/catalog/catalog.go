// Package catalog holds the exercise catalog and persists it as a single
// JSON array.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/models"
	"github.com/claude/loadprogress/internal/storage"
)

// ErrDuplicateExercise is returned by Add when the id or the name (ignoring
// case) is already present.
var ErrDuplicateExercise = errors.New("exercise already exists")

// Catalog is safe for concurrent use.
type Catalog struct {
	store   storage.Store
	log     *slog.Logger
	metrics *metrics.Manager

	mu        sync.RWMutex
	exercises []models.Exercise
	byID      map[uuid.UUID]int
}

func New(store storage.Store, log *slog.Logger, m *metrics.Manager) *Catalog {
	return &Catalog{
		store:   store,
		log:     log,
		metrics: m,
		byID:    map[uuid.UUID]int{},
	}
}

// Load replaces the in-memory catalog with the stored one. A missing or empty
// catalog is seeded with the default exercises and persisted. A corrupt blob
// is logged and treated as empty.
func (c *Catalog) Load(ctx context.Context) error {
	var stored []models.Exercise
	if found, err := storage.LoadJSON(ctx, c.store, storage.KeyExercises, &stored); err != nil {
		if !found {
			return fmt.Errorf("loading exercises: %w", err)
		}
		c.log.Error("failed to decode exercise catalog, starting empty", "error", err)
		stored = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(stored) == 0 {
		seeds := models.DefaultExercises()
		if err := c.persist(ctx, seeds); err != nil {
			return fmt.Errorf("seeding default exercises: %w", err)
		}
		c.log.Info("seeded default exercise catalog", "count", len(seeds))
		stored = seeds
	}

	c.exercises = stored
	c.reindex()
	c.log.Info("exercise catalog loaded", "count", len(stored))
	return nil
}

// Add appends ex and persists the catalog. On a failed write the catalog is
// restored to its previous state.
func (c *Catalog) Add(ctx context.Context, ex models.Exercise) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[ex.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateExercise, ex.ID)
	}
	if _, ok := c.findLocked(ex.Name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateExercise, ex.Name)
	}

	snapshot := c.exercises
	next := make([]models.Exercise, len(snapshot), len(snapshot)+1)
	copy(next, snapshot)
	next = append(next, ex)

	if err := c.persist(ctx, next); err != nil {
		c.log.Error("failed to save exercise", "exercise", ex.Name, "error", err)
		return err
	}

	c.exercises = next
	c.byID[ex.ID] = len(next) - 1
	c.log.Info("exercise added", "exercise", ex.Name, "id", ex.ID)
	return nil
}

func (c *Catalog) persist(ctx context.Context, exercises []models.Exercise) error {
	if err := storage.SaveJSON(ctx, c.store, storage.KeyExercises, exercises); err != nil {
		c.metrics.CounterPersistenceFailures.WithLabelValues(storage.KeyExercises).Inc()
		return fmt.Errorf("saving exercises: %w", err)
	}
	return nil
}

func (c *Catalog) reindex() {
	c.byID = make(map[uuid.UUID]int, len(c.exercises))
	for i, ex := range c.exercises {
		c.byID[ex.ID] = i
	}
}

// Get looks up an exercise by id.
func (c *Catalog) Get(id uuid.UUID) (models.Exercise, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return models.Exercise{}, false
	}
	return c.exercises[i], true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id uuid.UUID) bool {
	_, ok := c.Get(id)
	return ok
}

// List returns every exercise in insertion order.
func (c *Catalog) List() []models.Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// ByMuscleGroup returns the exercises whose primary group is g, sorted by name.
func (c *Catalog) ByMuscleGroup(g models.MuscleGroup) []models.Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Exercise
	for _, ex := range c.exercises {
		if ex.MuscleGroup == g {
			out = append(out, ex)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindByName matches an exercise name case-insensitively, ignoring
// surrounding whitespace.
func (c *Catalog) FindByName(name string) (models.Exercise, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findLocked(name)
}

func (c *Catalog) findLocked(name string) (models.Exercise, bool) {
	name = strings.TrimSpace(name)
	for _, ex := range c.exercises {
		if strings.EqualFold(ex.Name, name) {
			return ex, true
		}
	}
	return models.Exercise{}, false
}

// Names maps every exercise id to its name.
func (c *Catalog) Names() map[uuid.UUID]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[uuid.UUID]string, len(c.exercises))
	for _, ex := range c.exercises {
		out[ex.ID] = ex.Name
	}
	return out
}
