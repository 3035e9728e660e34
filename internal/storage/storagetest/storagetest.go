// Package storagetest provides Store doubles for tests.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/claude/loadprogress/internal/storage"
)

// ErrInjected is returned by a Flaky store while failing is on.
var ErrInjected = errors.New("storagetest: injected failure")

// Flaky is an in-memory store whose writes can be made to fail.
type Flaky struct {
	*storage.Memory
	failSet atomic.Bool
	sets    atomic.Int64

	mu       sync.Mutex
	failKeys map[string]bool
}

func NewFlaky() *Flaky {
	return &Flaky{Memory: storage.NewMemory()}
}

// FailWrites makes every subsequent Set and Delete fail until reset.
func (f *Flaky) FailWrites(fail bool) {
	f.failSet.Store(fail)
}

// FailKey makes writes to key fail until reset, leaving other keys working.
func (f *Flaky) FailKey(key string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys == nil {
		f.failKeys = map[string]bool{}
	}
	f.failKeys[key] = fail
}

func (f *Flaky) failing(key string) bool {
	if f.failSet.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failKeys[key]
}

// Writes returns the number of successful Set calls.
func (f *Flaky) Writes() int64 {
	return f.sets.Load()
}

func (f *Flaky) Set(ctx context.Context, key string, value []byte) error {
	if f.failing(key) {
		return ErrInjected
	}
	f.sets.Add(1)
	return f.Memory.Set(ctx, key, value)
}

func (f *Flaky) Delete(ctx context.Context, key string) error {
	if f.failing(key) {
		return ErrInjected
	}
	return f.Memory.Delete(ctx, key)
}
