package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for reminder operations.
type Metrics struct {
	// RemindersCreated counts create attempts by frequency and outcome.
	RemindersCreated *prometheus.CounterVec

	// RemindersDeleted counts delete attempts by outcome.
	RemindersDeleted *prometheus.CounterVec

	// NotificationsSent counts fired notifications by outcome.
	NotificationsSent *prometheus.CounterVec

	// ScheduledJobs is the current number of scheduler entries.
	ScheduledJobs prometheus.Gauge
}

// New creates metrics registered on reg. A nil reg uses a private registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RemindersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_created_total",
				Help:      "Total number of reminder create attempts",
			},
			[]string{"frequency", "status"},
		),
		RemindersDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_deleted_total",
				Help:      "Total number of reminder delete attempts",
			},
			[]string{"status"},
		),
		NotificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_sent_total",
				Help:      "Total number of fired reminder notifications",
			},
			[]string{"status"},
		),
		ScheduledJobs: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scheduled_jobs",
				Help:      "Current number of scheduled notification jobs",
			},
		),
	}
}

// Status labels.
const (
	StatusOK       = "ok"
	StatusInvalid  = "invalid"
	StatusFailed   = "failed"
	StatusNotFound = "not_found"
)
