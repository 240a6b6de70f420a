package core

import "time"

// componentConfig holds the knobs shared by all core components.
type componentConfig struct {
	name           string
	logger         Logger
	metrics        Metrics
	batchTimeout   time.Duration
	sampleCapacity int
}

func defaultComponentConfig() componentConfig {
	return componentConfig{
		logger:         NewNoOpLogger(),
		metrics:        &NilMetrics{},
		batchTimeout:   DefaultBatchTimeout,
		sampleCapacity: DefaultSampleCapacity,
	}
}

// Option configures a core component at construction time.
type Option func(*componentConfig)

// WithName sets the component name used in logs and metric labels.
func WithName(name string) Option {
	return func(c *componentConfig) { c.name = name }
}

// WithLogger sets the logger. Defaults to NoOpLogger.
func WithLogger(l Logger) Option {
	return func(c *componentConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics hook. Defaults to NilMetrics.
func WithMetrics(m Metrics) Option {
	return func(c *componentConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithBatchTimeout sets the per-batch deadline for BatchProcessor.
// Other components ignore it.
func WithBatchTimeout(d time.Duration) Option {
	return func(c *componentConfig) {
		if d > 0 {
			c.batchTimeout = d
		}
	}
}

// WithSampleCapacity bounds the latency sample window of RequestMetrics.
// Other components ignore it.
func WithSampleCapacity(n int) Option {
	return func(c *componentConfig) {
		if n > 0 {
			c.sampleCapacity = n
		}
	}
}

func (c *componentConfig) componentName(fallback string) string {
	if c.name != "" {
		return c.name
	}
	return fallback
}
