// Package storage provides the key-value persistence backends. Every backend
// stores opaque byte blobs under string keys; callers encode JSON on top.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or was
// deleted.
var ErrNotFound = errors.New("storage: key not found")

// Fixed keys for the persisted collections.
const (
	KeyExercises       = "savedExercises"
	KeyWorkoutSets     = "savedWorkoutSets"
	KeyPersonalRecords = "savedPersonalRecords"
	KeySettings        = "settings"
)

// Store is a minimal key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
