// Package queue runs fire-and-forget jobs on a single background goroutine.
package queue

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// DefaultSize is the buffer used when New is given a size below 1.
const DefaultSize = 64

// Serial executes submitted jobs one at a time in submission order. Submit
// never blocks: a job that does not fit in the buffer is dropped.
type Serial struct {
	jobs    chan func()
	done    chan struct{}
	log     *slog.Logger
	onDrop  func()
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New starts the worker goroutine. onDrop, when non-nil, is called for every
// dropped job.
func New(size int, log *slog.Logger, onDrop func()) *Serial {
	if size < 1 {
		size = DefaultSize
	}
	q := &Serial{
		jobs:   make(chan func(), size),
		done:   make(chan struct{}),
		log:    log,
		onDrop: onDrop,
	}
	go q.run()
	return q
}

func (q *Serial) run() {
	defer close(q.done)
	for job := range q.jobs {
		q.exec(job)
	}
}

func (q *Serial) exec(job func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("background job panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	job()
}

// Submit enqueues job and reports whether it was accepted.
func (q *Serial) Submit(job func()) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.drop()
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		q.drop()
		return false
	}
}

func (q *Serial) drop() {
	q.dropped.Add(1)
	if q.onDrop != nil {
		q.onDrop()
	}
	q.log.Warn("background queue full, job dropped")
}

// Dropped returns the number of jobs dropped so far.
func (q *Serial) Dropped() int64 {
	return q.dropped.Load()
}

// Close stops intake, runs the jobs already queued and waits for the worker
// to exit. It is safe to call more than once.
func (q *Serial) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	<-q.done
}
