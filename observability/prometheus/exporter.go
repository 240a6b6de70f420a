// Package prometheus adapts go-reqproc observability hooks and stats
// snapshots to Prometheus collectors.
package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/strisk/go-reqproc/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter implements core.Metrics on Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskFailureTotal    *prom.CounterVec
	batchTimeoutTotal   *prom.CounterVec
	tasksInFlight       *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers the collectors. Registering into
// a registry that already holds them reuses the existing collectors instead
// of failing.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "reqproc"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"component"})
	failureVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_failure_total",
		Help:      "Total number of failed tasks.",
	}, []string{"component"})
	timeoutVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "batch_timeout_total",
		Help:      "Total number of batches that missed their deadline.",
	}, []string{"component"})
	inFlightVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "tasks_in_flight",
		Help:      "Number of tasks currently executing.",
	}, []string{"component"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if failureVec, err = registerCollector(reg, failureVec); err != nil {
		return nil, err
	}
	if timeoutVec, err = registerCollector(reg, timeoutVec); err != nil {
		return nil, err
	}
	if inFlightVec, err = registerCollector(reg, inFlightVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds: durationVec,
		taskFailureTotal:    failureVec,
		batchTimeoutTotal:   timeoutVec,
		tasksInFlight:       inFlightVec,
	}, nil
}

// RecordTaskDuration records execution duration for one unit of work.
func (m *MetricsExporter) RecordTaskDuration(component string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(component)).Observe(duration.Seconds())
}

// RecordTaskFailure records one failed unit of work.
func (m *MetricsExporter) RecordTaskFailure(component string) {
	if m == nil {
		return
	}
	m.taskFailureTotal.WithLabelValues(normalizeLabel(component)).Inc()
}

// RecordTimeout records one missed batch deadline.
func (m *MetricsExporter) RecordTimeout(component string) {
	if m == nil {
		return
	}
	m.batchTimeoutTotal.WithLabelValues(normalizeLabel(component)).Inc()
}

// RecordInFlight records the current number of executing tasks.
func (m *MetricsExporter) RecordInFlight(component string, n int) {
	if m == nil {
		return
	}
	m.tasksInFlight.WithLabelValues(normalizeLabel(component)).Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
