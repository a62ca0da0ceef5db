package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scanner metrics
	ScanRuns       *prometheus.CounterVec
	ScanDuration   prometheus.Histogram
	TasksScanned   prometheus.Counter
	ActiveSessions prometheus.Gauge

	// Ledger metrics
	LedgerEntries prometheus.Gauge
	LedgerClears  prometheus.Counter

	// Notification metrics
	NotificationsEmitted    *prometheus.CounterVec
	NotificationsSuppressed *prometheus.CounterVec
	NotificationsFailed     *prometheus.CounterVec
	NotificationsCleaned    prometheus.Counter

	// Event metrics
	EventsProcessed *prometheus.CounterVec

	// Store metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Redis metrics
	BrokerPublishes *prometheus.CounterVec
	RedisOperations *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them on reg.
// A nil registerer yields working but unregistered collectors, which is what tests use.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ScanRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scan_runs_total",
			Help:      "Total number of deadline scans per user session",
		}, []string{"status"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scan_duration_seconds",
			Help:      "Time spent scanning one user's projects",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		TasksScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_scanned_total",
			Help:      "Total number of tasks classified by the scanner",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Current number of user scan sessions",
		}),

		LedgerEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ledger_entries",
			Help:      "Current number of keys held across all ledgers",
		}),
		LedgerClears: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ledger_clears_total",
			Help:      "Total number of wholesale ledger resets",
		}),

		NotificationsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_emitted_total",
			Help:      "Total number of notifications persisted",
		}, []string{"type"}),
		NotificationsSuppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_suppressed_total",
			Help:      "Total number of notifications not sent",
		}, []string{"type", "reason"}),
		NotificationsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_failed_total",
			Help:      "Total number of notifications whose write failed",
		}, []string{"type"}),
		NotificationsCleaned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_cleaned_total",
			Help:      "Total number of read notifications removed by retention",
		}),

		EventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_processed_total",
			Help:      "Total number of domain events handled",
		}, []string{"event_type", "status"}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		BrokerPublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broker_publishes_total",
			Help:      "Total number of real-time publishes",
		}, []string{"channel", "status"}),
		RedisOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "redis_operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
	}
}

// New returns unregistered metrics, for tests and tools.
func New(namespace string) *Metrics {
	return NewMetrics(namespace, "", nil)
}
