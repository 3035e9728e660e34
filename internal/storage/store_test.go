package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/claude/loadprogress/internal/config"
)

// backends returns one fresh instance of every backend that can run without
// external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	file, err := NewFile(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatal(err)
	}
	sqlite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	mr := miniredis.RunT(t)
	rds, err := NewRedis(ctx, "redis://"+mr.Addr(), "test:")
	if err != nil {
		t.Fatal(err)
	}

	stores := map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
		"redis":  rds,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

// TestStoreRoundTrip verifies the Get/Set/Delete contract shared by every
// backend: missing keys report ErrNotFound, Set overwrites, Delete is idempotent.
func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, KeyExercises); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing key: err = %v, want ErrNotFound", err)
			}

			if err := s.Set(ctx, KeyExercises, []byte(`[1]`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, KeyExercises, []byte(`[1,2]`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, err := s.Get(ctx, KeyExercises)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `[1,2]` {
				t.Errorf("Get = %s, want [1,2]", got)
			}

			if err := s.Delete(ctx, KeyExercises); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, KeyExercises); err != nil {
				t.Fatalf("second Delete: %v", err)
			}
			if _, err := s.Get(ctx, KeyExercises); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
			}
		})
	}
}

// TestMemoryCopiesValues verifies that callers cannot mutate stored blobs
// through the slices they passed in or got back.
func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	in := []byte("abc")
	m.Set(ctx, "k", in)
	in[0] = 'z'

	out, _ := m.Get(ctx, "k")
	if string(out) != "abc" {
		t.Errorf("stored value mutated: %s", out)
	}
	out[1] = 'z'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned slice aliases storage: %s", again)
	}
}

// TestFileLeavesNoTempFiles verifies that a completed Set leaves only the
// final <key>.json in the data directory.
func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Set(context.Background(), KeySettings, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*"))
	if len(matches) != 1 || filepath.Base(matches[0]) != "settings.json" {
		t.Errorf("dir contents = %v, want only settings.json", matches)
	}
}

// TestRedisPrefix verifies keys are namespaced so several instances can
// share one redis database.
func TestRedisPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), "redis://"+mr.Addr(), "lp:")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Set(context.Background(), KeyWorkoutSets, []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	if got, err := mr.Get("lp:" + KeyWorkoutSets); err != nil || got != "[]" {
		t.Errorf("raw redis value = %q, %v", got, err)
	}
}

// TestJSONHelpers verifies that LoadJSON distinguishes a missing key from a
// corrupt value.
func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	var v []int
	found, err := LoadJSON(ctx, s, KeyWorkoutSets, &v)
	if found || err != nil {
		t.Fatalf("LoadJSON missing = %v, %v", found, err)
	}

	if err := SaveJSON(ctx, s, KeyWorkoutSets, []int{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	found, err = LoadJSON(ctx, s, KeyWorkoutSets, &v)
	if !found || err != nil || len(v) != 3 {
		t.Fatalf("LoadJSON = %v, %v, %v", found, err, v)
	}

	s.Set(ctx, KeyWorkoutSets, []byte("{not json"))
	if found, err := LoadJSON(ctx, s, KeyWorkoutSets, &v); !found || err == nil {
		t.Errorf("corrupt value: found=%v err=%v, want found with error", found, err)
	}
}

// TestOpenBackends verifies that Open dispatches on the configured backend
// and rejects unknown names.
func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)

	tests := []struct {
		cfg  config.StorageConfig
		want string
	}{
		{config.StorageConfig{Backend: config.BackendMemory}, "*storage.Memory"},
		{config.StorageConfig{Backend: config.BackendFile, Path: t.TempDir()}, "*storage.File"},
		{config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "kv.db")}, "*storage.SQLite"},
		{config.StorageConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{URL: "redis://" + mr.Addr()}}, "*storage.Redis"},
	}
	for _, tt := range tests {
		s, err := Open(ctx, tt.cfg, logger)
		if err != nil {
			t.Errorf("Open(%s): %v", tt.cfg.Backend, err)
			continue
		}
		if got := typeName(s); got != tt.want {
			t.Errorf("Open(%s) = %s, want %s", tt.cfg.Backend, got, tt.want)
		}
		s.Close()
	}

	if _, err := Open(ctx, config.StorageConfig{Backend: "s3"}, logger); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *Memory:
		return "*storage.Memory"
	case *File:
		return "*storage.File"
	case *SQLite:
		return "*storage.SQLite"
	case *Redis:
		return "*storage.Redis"
	case *DB:
		return "*storage.DB"
	}
	return "unknown"
}
