// Package scheduler runs the periodic maintenance jobs: retention cleanup and
// automatic backups.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron"
)

// Job is one run of a scheduled task.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Jobs get a context that is cancelled by
// Stop, and Stop waits for running jobs to return.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	jobs map[string]Job
	busy map[string]bool
}

func New(log *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]Job),
		busy:   make(map[string]bool),
	}
}

// Add registers job under name on a cron spec (six fields with seconds, or a
// descriptor such as @daily or @every 1h).
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	if _, ok := s.jobs[name]; ok {
		s.mu.Unlock()
		return fmt.Errorf("job %q already registered", name)
	}
	s.jobs[name] = job
	s.mu.Unlock()

	if err := s.cron.AddFunc(spec, func() { s.Trigger(name) }); err != nil {
		s.mu.Lock()
		delete(s.jobs, name)
		s.mu.Unlock()
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	s.log.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Trigger runs a registered job now and waits for it. A run is skipped when
// the previous run of the same job is still going or the scheduler is stopped.
func (s *Scheduler) Trigger(name string) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	if !ok || s.busy[name] || s.ctx.Err() != nil {
		s.mu.Unlock()
		if ok {
			s.log.Debug("job skipped", "job", name)
		}
		return
	}
	s.busy[name] = true
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy[name] = false
		s.mu.Unlock()
		s.wg.Done()
	}()

	start := time.Now()
	if err := job(s.ctx); err != nil {
		s.log.Error("job failed", "job", name, "error", err)
		return
	}
	s.log.Debug("job finished", "job", name, "duration", time.Since(start).String())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule, cancels running jobs and waits for them.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}
