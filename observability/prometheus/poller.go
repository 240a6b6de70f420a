package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/strisk/go-reqproc/core"
	"github.com/strisk/go-reqproc/pool"
	"github.com/strisk/go-reqproc/ratelimit"
)

// QueueStatsProvider provides current task queue snapshots.
type QueueStatsProvider interface {
	Stats() core.QueueStats
}

// PoolStatsProvider provides current connection pool snapshots.
type PoolStatsProvider interface {
	Stats() pool.Stats
}

// LimiterStatsProvider provides current rate limiter snapshots.
type LimiterStatsProvider interface {
	Stats() ratelimit.Stats
}

// RequestStatsProvider provides current request metrics snapshots.
type RequestStatsProvider interface {
	Stats() (core.RequestStats, bool)
}

// SnapshotPoller periodically exports Stats() snapshots of queues, pools,
// limiters, and request trackers into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	queues      map[string]QueueStatsProvider
	pools       map[string]PoolStatsProvider
	limiters    map[string]LimiterStatsProvider
	trackers    map[string]RequestStatsProvider

	queueCompleted   *prom.GaugeVec
	queueFailed      *prom.GaugeVec
	queueInFlight    *prom.GaugeVec
	queueSuccessRate *prom.GaugeVec

	poolAvailable *prom.GaugeVec
	poolSize      *prom.GaugeVec
	poolReplaced  *prom.GaugeVec

	limiterInWindow *prom.GaugeVec
	limiterMax      *prom.GaugeVec

	requestTotal      *prom.GaugeVec
	requestFailed     *prom.GaugeVec
	requestLatencyAvg *prom.GaugeVec
	requestLatencyP95 *prom.GaugeVec
	requestLatencyP99 *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	var gauges []**prom.GaugeVec
	newGauge := func(name, help, label string, target **prom.GaugeVec) {
		*target = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "reqproc",
			Name:      name,
			Help:      help,
		}, []string{label})
		gauges = append(gauges, target)
	}

	p := &SnapshotPoller{
		interval: interval,
		queues:   make(map[string]QueueStatsProvider),
		pools:    make(map[string]PoolStatsProvider),
		limiters: make(map[string]LimiterStatsProvider),
		trackers: make(map[string]RequestStatsProvider),
	}

	newGauge("queue_completed", "Completed task count snapshot per queue.", "queue", &p.queueCompleted)
	newGauge("queue_failed", "Failed task count snapshot per queue.", "queue", &p.queueFailed)
	newGauge("queue_in_flight", "Tasks currently executing per queue.", "queue", &p.queueInFlight)
	newGauge("queue_success_rate", "Completed over finished tasks per queue.", "queue", &p.queueSuccessRate)

	newGauge("pool_available", "Free connections per pool.", "pool", &p.poolAvailable)
	newGauge("pool_size", "Configured connection count per pool.", "pool", &p.poolSize)
	newGauge("pool_replaced_total", "Connections replaced after failed health checks.", "pool", &p.poolReplaced)

	newGauge("limiter_in_window", "Admissions inside the current window per limiter.", "limiter", &p.limiterInWindow)
	newGauge("limiter_max_requests", "Admission capacity per limiter.", "limiter", &p.limiterMax)

	newGauge("request_total", "Tracked request count snapshot.", "tracker", &p.requestTotal)
	newGauge("request_failed", "Failed request count snapshot.", "tracker", &p.requestFailed)
	newGauge("request_latency_avg_seconds", "Average request latency.", "tracker", &p.requestLatencyAvg)
	newGauge("request_latency_p95_seconds", "95th percentile request latency.", "tracker", &p.requestLatencyP95)
	newGauge("request_latency_p99_seconds", "99th percentile request latency.", "tracker", &p.requestLatencyP99)

	for _, target := range gauges {
		registered, err := registerCollector(reg, *target)
		if err != nil {
			return nil, err
		}
		*target = registered
	}

	return p, nil
}

// AddQueue adds or replaces a queue snapshot provider by name.
func (p *SnapshotPoller) AddQueue(name string, provider QueueStatsProvider) {
	if p == nil || provider == nil {
		return
	}
	p.providersMu.Lock()
	p.queues[normalizeLabel(name)] = provider
	p.providersMu.Unlock()
}

// AddPool adds or replaces a connection pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolStatsProvider) {
	if p == nil || provider == nil {
		return
	}
	p.providersMu.Lock()
	p.pools[normalizeLabel(name)] = provider
	p.providersMu.Unlock()
}

// AddLimiter adds or replaces a limiter snapshot provider by name.
func (p *SnapshotPoller) AddLimiter(name string, provider LimiterStatsProvider) {
	if p == nil || provider == nil {
		return
	}
	p.providersMu.Lock()
	p.limiters[normalizeLabel(name)] = provider
	p.providersMu.Unlock()
}

// AddRequestTracker adds or replaces a request metrics provider by name.
func (p *SnapshotPoller) AddRequestTracker(name string, provider RequestStatsProvider) {
	if p == nil || provider == nil {
		return
	}
	p.providersMu.Lock()
	p.trackers[normalizeLabel(name)] = provider
	p.providersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()

	for name, provider := range p.queues {
		stats := provider.Stats()
		p.queueCompleted.WithLabelValues(name).Set(float64(stats.Completed))
		p.queueFailed.WithLabelValues(name).Set(float64(stats.Failed))
		p.queueInFlight.WithLabelValues(name).Set(float64(stats.InFlight))
		p.queueSuccessRate.WithLabelValues(name).Set(stats.SuccessRate)
	}

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolAvailable.WithLabelValues(name).Set(float64(stats.Available))
		p.poolSize.WithLabelValues(name).Set(float64(stats.Size))
		p.poolReplaced.WithLabelValues(name).Set(float64(stats.Replaced))
	}

	for name, provider := range p.limiters {
		stats := provider.Stats()
		p.limiterInWindow.WithLabelValues(name).Set(float64(stats.InWindow))
		p.limiterMax.WithLabelValues(name).Set(float64(stats.MaxRequests))
	}

	for name, provider := range p.trackers {
		stats, ok := provider.Stats()
		if !ok {
			continue
		}
		p.requestTotal.WithLabelValues(name).Set(float64(stats.TotalRequests))
		p.requestFailed.WithLabelValues(name).Set(float64(stats.Failed))
		p.requestLatencyAvg.WithLabelValues(name).Set(stats.AvgTime.Seconds())
		p.requestLatencyP95.WithLabelValues(name).Set(stats.P95Time.Seconds())
		p.requestLatencyP99.WithLabelValues(name).Set(stats.P99Time.Seconds())
	}
}
