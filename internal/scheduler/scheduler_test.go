package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/claude/loadprogress/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCleaner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCleaner) CleanupRetention(context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

type fakeBackuper struct {
	calls atomic.Int32
}

func (f *fakeBackuper) Create(context.Context) ([]string, error) {
	f.calls.Add(1)
	return []string{"exercises.backup"}, nil
}

// TestTrigger runs a job by name and ignores unknown names.
func TestTrigger(t *testing.T) {
	s := New(logging.Discard())
	defer s.Stop()

	c := &fakeCleaner{}
	if err := s.Add(JobRetention, "@daily", RetentionJob(c, logging.Discard())); err != nil {
		t.Fatal(err)
	}
	s.Trigger(JobRetention)
	s.Trigger("nope")
	if got := c.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

// TestAddRejectsBadSpecAndDuplicates verifies registration errors.
func TestAddRejectsBadSpecAndDuplicates(t *testing.T) {
	s := New(logging.Discard())
	defer s.Stop()

	job := func(context.Context) error { return nil }
	if err := s.Add("a", "every tuesday", job); err == nil {
		t.Error("expected error for bad spec")
	}
	// a failed Add leaves the name free
	if err := s.Add("a", "@hourly", job); err != nil {
		t.Fatalf("re-add after failure: %v", err)
	}
	if err := s.Add("a", "@hourly", job); err == nil {
		t.Error("expected error for duplicate name")
	}
}

// TestScheduleFires verifies the cron schedule runs the job.
func TestScheduleFires(t *testing.T) {
	s := New(logging.Discard())
	var runs atomic.Int32
	if err := s.Add("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()
	if runs.Load() == 0 {
		t.Fatal("job never ran")
	}
}

// TestStopCancelsRunningJob verifies Stop cancels the job context and waits.
func TestStopCancelsRunningJob(t *testing.T) {
	s := New(logging.Discard())
	started := make(chan struct{})
	var cancelled atomic.Bool
	if err := s.Add("slow", "@daily", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}); err != nil {
		t.Fatal(err)
	}

	go s.Trigger("slow")
	<-started
	s.Stop()
	if !cancelled.Load() {
		t.Error("Stop returned before the job saw cancellation")
	}

	// triggers after Stop are ignored
	s.Trigger("slow")
}

// TestBackupJobGate verifies the backup job honours the enabled flag.
func TestBackupJobGate(t *testing.T) {
	b := &fakeBackuper{}
	enabled := false
	job := BackupJob(b, func() bool { return enabled }, logging.Discard())

	if err := job(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.calls.Load() != 0 {
		t.Error("backup ran while disabled")
	}
	enabled = true
	if err := job(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.calls.Load() != 1 {
		t.Errorf("backup calls = %d, want 1", b.calls.Load())
	}
}

// TestRetentionJobError verifies cleanup errors propagate.
func TestRetentionJobError(t *testing.T) {
	c := &fakeCleaner{err: errors.New("disk full")}
	if err := RetentionJob(c, logging.Discard())(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
