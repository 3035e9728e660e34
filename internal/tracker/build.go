package tracker

import (
	"log/slog"
	"time"

	"github.com/claude/loadprogress/internal/catalog"
	"github.com/claude/loadprogress/internal/metrics"
	"github.com/claude/loadprogress/internal/records"
	"github.com/claude/loadprogress/internal/sets"
	"github.com/claude/loadprogress/internal/settings"
	"github.com/claude/loadprogress/internal/storage"
)

// Build constructs every component over one store. Call Load before use.
func Build(store storage.Store, pub records.Publisher, m *metrics.Manager, log *slog.Logger, loc *time.Location, opts ...Option) *Service {
	cat := catalog.New(store, log.With("component", "catalog"), m)
	ws := sets.New(store, cat, log.With("component", "sets"), m, loc)
	ledger := records.New(store, log.With("component", "records"), m, pub, loc)
	st := settings.New(store, log.With("component", "settings"))
	return New(cat, ws, ledger, st, m, log, opts...)
}
