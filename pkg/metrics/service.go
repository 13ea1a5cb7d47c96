package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/vfs"
)

// serviceMetrics is the Prometheus implementation of vfs.Metrics.
type serviceMetrics struct {
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	moveInconsistences *prometheus.CounterVec
}

// NewServiceMetrics creates a Prometheus-backed vfs.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewServiceMetrics() vfs.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newServiceMetrics(GetRegistry())
}

func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	return &serviceMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of filesystem operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_milliseconds",
				Help:      "Duration of filesystem operations in milliseconds",
				Buckets:   durationBuckets,
			},
			[]string{"operation"},
		),
		moveInconsistences: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "move_inconsistencies_total",
				Help:      "Moves whose content was relocated but whose metadata update failed",
			},
			[]string{"type"},
		),
	}
}

// ObserveOperation implements vfs.Metrics.
func (m *serviceMetrics) ObserveOperation(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(op, status(err)).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(duration.Microseconds()) / 1000)
}

// RecordMoveInconsistency implements vfs.Metrics.
func (m *serviceMetrics) RecordMoveInconsistency(itemType content.ItemType) {
	if m == nil {
		return
	}
	m.moveInconsistences.WithLabelValues(string(itemType)).Inc()
}
