package scheduler

import (
	"context"
	"log/slog"
)

const (
	JobRetention = "retention"
	JobBackup    = "backup"
)

// Cleaner removes sets outside the retention window.
type Cleaner interface {
	CleanupRetention(ctx context.Context) (int, error)
}

// Backuper writes a backup of the stored collections.
type Backuper interface {
	Create(ctx context.Context) ([]string, error)
}

// RetentionJob deletes workout sets older than the retention window.
func RetentionJob(c Cleaner, log *slog.Logger) Job {
	return func(ctx context.Context) error {
		n, err := c.CleanupRetention(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("retention cleanup", "deleted", n)
		}
		return nil
	}
}

// BackupJob writes a backup when enabled reports true, so the user setting
// can be flipped without rescheduling.
func BackupJob(b Backuper, enabled func() bool, log *slog.Logger) Job {
	return func(ctx context.Context) error {
		if !enabled() {
			return nil
		}
		files, err := b.Create(ctx)
		if err != nil {
			return err
		}
		log.Info("automatic backup written", "files", len(files))
		return nil
	}
}
