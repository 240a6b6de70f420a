// Package core implements the concurrency primitives of go-reqproc.
//
// The building blocks are:
//
//   - TaskQueue: runs tasks under a fixed concurrency limit and keeps
//     completed/failed counters.
//   - BatchProcessor: splits a slice into fixed-size batches and processes
//     each batch concurrently with a per-batch deadline.
//   - Fetcher: lossy bounded fan-out over independent fetch functions.
//   - RequestMetrics: latency tracking with percentile summaries over a
//     bounded sample window.
//
// All components accept an optional Logger and Metrics hook via functional
// options. Shared state is protected with mutexes and atomics; components are
// safe for concurrent use from multiple goroutines.
package core
