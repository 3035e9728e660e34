// Package settings persists user preferences under the settings key.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/loadprogress/internal/storage"
)

type Settings struct {
	UseMetricSystem   bool `json:"useMetricSystem"`
	AutoBackupEnabled bool `json:"autoBackupEnabled"`
}

// Defaults are used until settings are first saved.
func Defaults() Settings {
	return Settings{UseMetricSystem: true}
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	UseMetricSystem   *bool `json:"useMetricSystem"`
	AutoBackupEnabled *bool `json:"autoBackupEnabled"`
}

type Manager struct {
	store storage.Store
	log   *slog.Logger

	mu  sync.RWMutex
	cur Settings
}

func New(store storage.Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log, cur: Defaults()}
}

// Load reads stored settings. Missing or corrupt settings fall back to defaults.
func (m *Manager) Load(ctx context.Context) error {
	s := Defaults()
	found, err := storage.LoadJSON(ctx, m.store, storage.KeySettings, &s)
	if err != nil {
		if !found {
			return fmt.Errorf("loading settings: %w", err)
		}
		m.log.Error("failed to decode settings, using defaults", "error", err)
		s = Defaults()
	}
	m.mu.Lock()
	m.cur = s
	m.mu.Unlock()
	return nil
}

// Get returns the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Apply updates the fields set in p and persists the result.
func (m *Manager) Apply(ctx context.Context, p Patch) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.cur
	if p.UseMetricSystem != nil {
		next.UseMetricSystem = *p.UseMetricSystem
	}
	if p.AutoBackupEnabled != nil {
		next.AutoBackupEnabled = *p.AutoBackupEnabled
	}
	if next == m.cur {
		return next, nil
	}

	if err := storage.SaveJSON(ctx, m.store, storage.KeySettings, next); err != nil {
		return m.cur, fmt.Errorf("saving settings: %w", err)
	}
	if next.UseMetricSystem != m.cur.UseMetricSystem {
		m.log.Info("unit system changed", "system", unitName(next.UseMetricSystem))
	}
	if next.AutoBackupEnabled != m.cur.AutoBackupEnabled {
		m.log.Info("auto backup changed", "enabled", next.AutoBackupEnabled)
	}
	m.cur = next
	return next, nil
}

func (m *Manager) SetUseMetric(ctx context.Context, v bool) error {
	_, err := m.Apply(ctx, Patch{UseMetricSystem: &v})
	return err
}

func (m *Manager) SetAutoBackup(ctx context.Context, v bool) error {
	_, err := m.Apply(ctx, Patch{AutoBackupEnabled: &v})
	return err
}

// ToggleUnitSystem flips between metric and imperial and returns the new value.
func (m *Manager) ToggleUnitSystem(ctx context.Context) (bool, error) {
	v := !m.Get().UseMetricSystem
	return v, m.SetUseMetric(ctx, v)
}

// ToggleAutoBackup flips the auto backup flag and returns the new value.
func (m *Manager) ToggleAutoBackup(ctx context.Context) (bool, error) {
	v := !m.Get().AutoBackupEnabled
	return v, m.SetAutoBackup(ctx, v)
}

func unitName(metric bool) string {
	if metric {
		return "metric"
	}
	return "imperial"
}
