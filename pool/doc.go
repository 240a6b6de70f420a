// Package pool implements a fixed-size connection pool with health checks.
//
// Pool is generic over the connection type, so the same machinery serves
// database clients, Redis connections, or anything else that can be dialed,
// probed, and closed. Connections failing their health check on acquire are
// replaced transparently; Execute adds retry with exponential backoff on
// top.
package pool
