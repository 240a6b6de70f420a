package core

import "time"

// Metrics is the hook interface for exporting component events to a
// monitoring system (Prometheus, StatsD, etc.). Methods must be fast and
// non-blocking; they run on the hot path of task execution.
//
// The component label is the value set via WithName, or the component's
// default name ("task_queue", "batch_processor", "fetcher").
type Metrics interface {
	// RecordTaskDuration records how long one unit of work took, whether it
	// succeeded or failed.
	RecordTaskDuration(component string, duration time.Duration)

	// RecordTaskFailure records that a unit of work returned an error.
	RecordTaskFailure(component string)

	// RecordTimeout records that a batch missed its deadline.
	RecordTimeout(component string)

	// RecordInFlight records the number of units currently executing.
	RecordInFlight(component string, n int)
}

// NilMetrics is the no-op default.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(component string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskFailure(component string)                          {}
func (m *NilMetrics) RecordTimeout(component string)                              {}
func (m *NilMetrics) RecordInFlight(component string, n int)                      {}
