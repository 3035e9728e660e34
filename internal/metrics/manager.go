package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterSetsAdded           prometheus.Counter
	CounterPersonalRecords     *prometheus.CounterVec
	CounterPersistenceFailures *prometheus.CounterVec
	CounterQueueDropped        prometheus.Counter
	CounterBackups             *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration   prometheus.Histogram
	HistOperationDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("loadprogress", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("loadprogress", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		CounterSetsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workout_sets_added",
			Help:      "The total number of workout sets recorded",
		}),
		CounterPersonalRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "personal_records",
			Help:      "The total number of personal records achieved",
		}, []string{"type"}),
		CounterPersistenceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "persistence_failures",
			Help:      "Failed writes to the key-value store, by key",
		}, []string{"key"}),
		CounterQueueDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_dropped_jobs",
			Help:      "Background jobs dropped because the queue was full",
		}),
		CounterBackups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backups",
			Help:      "Backup and restore runs, by kind and result",
		}, []string{"kind", "result"}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}),
		HistOperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			Name:      "operation_duration_seconds",
			Help:      "Duration of tracker operations in seconds",
		}, []string{"operation"}),
	}
}

// Time starts timing operation; call the returned func when it finishes.
//
//	defer m.Time("add_workout_set")()
func (m *Manager) Time(operation string) func() {
	start := time.Now()
	return func() {
		m.HistOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
