// Package ratelimit provides request admission control.
//
// Two strategies are available:
//
//   - Limiter: a sliding-window counter. Admission is decided by counting
//     recorded timestamps inside a trailing window; stale entries are pruned
//     on every check. Simple and exact for small limits.
//   - Store: one token-bucket limiter (golang.org/x/time/rate) per client
//     key, with idle-key eviction. Use this when admission must be keyed by
//     IP, API key, or user.
package ratelimit
