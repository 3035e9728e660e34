// Package backup copies the exercise and workout blobs to files and back.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/storage"
)

const (
	ExercisesFile = "exercises.backup"
	WorkoutsFile  = "workouts.backup"
)

var files = []struct{ key, name string }{
	{storage.KeyExercises, ExercisesFile},
	{storage.KeyWorkoutSets, WorkoutsFile},
}

// Info describes one backup file.
type Info struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

type Manager struct {
	store   storage.Store
	dir     string
	log     *slog.Logger
	metrics *metrics.Manager
}

func New(store storage.Store, dir string, log *slog.Logger, m *metrics.Manager) *Manager {
	return &Manager{store: store, dir: dir, log: log, metrics: m}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string { return m.dir }

// Create writes the stored blobs to the backup directory and returns the
// files written. Keys that were never stored are skipped.
func (m *Manager) Create(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		m.metrics.CounterBackups.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}

	var written []string
	var errs error
	for _, f := range files {
		data, err := m.store.Get(ctx, f.key)
		if errors.Is(err, storage.ErrNotFound) {
			m.log.Debug("nothing to back up", "key", f.key)
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reading %s: %w", f.key, err))
			continue
		}
		if err := writeFile(filepath.Join(m.dir, f.name), data); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		written = append(written, f.name)
	}

	if errs != nil {
		m.metrics.CounterBackups.WithLabelValues("create", "error").Inc()
		m.log.Error("failed to create backup", "error", errs)
		return written, errs
	}
	m.metrics.CounterBackups.WithLabelValues("create", "ok").Inc()
	m.log.Info("backup created", "dir", m.dir, "files", written)
	return written, nil
}

// Restore writes both backup files back to the store. Nothing is written
// unless both files can be read, and a failed write puts back the blobs that
// were already replaced. Callers reload their collections afterwards.
func (m *Manager) Restore(ctx context.Context) error {
	blobs := make([][]byte, len(files))
	var errs error
	for i, f := range files {
		data, err := os.ReadFile(filepath.Join(m.dir, f.name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reading %s: %w", f.name, err))
			continue
		}
		blobs[i] = data
	}
	if errs != nil {
		m.metrics.CounterBackups.WithLabelValues("restore", "error").Inc()
		m.log.Error("failed to restore backup", "error", errs)
		return errs
	}

	if err := m.writeAll(ctx, blobs); err != nil {
		m.metrics.CounterBackups.WithLabelValues("restore", "error").Inc()
		m.log.Error("failed to restore backup", "error", err)
		return err
	}

	m.metrics.CounterBackups.WithLabelValues("restore", "ok").Inc()
	m.log.Info("backup restored", "dir", m.dir)
	return nil
}

// writeAll stores blobs under their keys. If one write fails, the keys
// written before it are reset to their previous contents.
func (m *Manager) writeAll(ctx context.Context, blobs [][]byte) error {
	prev := make([][]byte, len(files))
	existed := make([]bool, len(files))
	for i, f := range files {
		data, err := m.store.Get(ctx, f.key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return fmt.Errorf("reading current %s: %w", f.key, err)
		default:
			prev[i], existed[i] = data, true
		}
	}

	for i, f := range files {
		err := m.store.Set(ctx, f.key, blobs[i])
		if err == nil {
			continue
		}
		errs := fmt.Errorf("writing %s: %w", f.key, err)
		for j := i - 1; j >= 0; j-- {
			errs = multierr.Append(errs, m.reset(ctx, files[j].key, prev[j], existed[j]))
		}
		return errs
	}
	return nil
}

// reset restores key to data, deleting it when it did not exist.
func (m *Manager) reset(ctx context.Context, key string, data []byte, existed bool) error {
	var err error
	if !existed {
		err = m.store.Delete(ctx, key)
	} else {
		err = m.store.Set(ctx, key, data)
	}
	if err != nil {
		return fmt.Errorf("rolling back %s: %w", key, err)
	}
	return nil
}

// List returns the backup files present, sorted by name. A missing directory
// yields an empty list.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	out := []Info{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".backup") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		out = append(out, Info{Name: e.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
