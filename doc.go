// Package reqproc provides concurrency-limited request processing building
// blocks: a bounded task queue, a batch processor with per-batch deadlines,
// a lossy parallel fetcher, sliding-window rate limiting, request latency
// metrics, a health-checked connection pool, and a cache layer.
//
// # Quick Start
//
// Construct the components you need and pass them to your request handling
// code; there is no global state:
//
//	queue := reqproc.NewTaskQueue[string](20)
//	result, err := queue.Run(ctx, func(ctx context.Context) (string, error) {
//		return assess(ctx, portfolioID)
//	})
//
// Batch processing preserves input order and captures per-item errors in
// place:
//
//	proc := reqproc.NewBatchProcessor[int, int](100, 5)
//	results, err := proc.Process(ctx, items, square)
//
// # Admission and Observability
//
// ratelimit.New gives a sliding-window limiter; ratelimit.NewStore keys
// token buckets by client. core.RequestMetrics tracks latency percentiles
// over a bounded sample window. The observability/prometheus package exports
// hooks and stats snapshots as Prometheus collectors.
//
// # Errors
//
// Per-item failures are captured as Result values and never abort sibling
// work. A batch missing its deadline fails the whole Process call with an
// error satisfying errors.Is(err, context.DeadlineExceeded), and no partial
// results are returned.
//
// See the examples directory for runnable programs.
package reqproc
