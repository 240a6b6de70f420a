// Package cache provides a small caching layer for expensive request
// results (model scores, dashboard aggregates, query results).
//
// Cache failures are best-effort by design: a broken cache degrades to a
// miss, never to a failed request. RedisCache is the production backend;
// MemoryCache serves tests and cacheless deployments.
package cache
