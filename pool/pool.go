package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strisk/go-reqproc/core"
)

// ErrClosed is returned for operations on a closed pool.
var ErrClosed = errors.New("pool: closed")

// Config describes how to build and maintain connections of type C.
type Config[C any] struct {
	// Size is the number of pooled connections. Must be at least 1.
	Size int

	// Factory dials a new connection. Required.
	Factory func(ctx context.Context) (C, error)

	// HealthCheck probes a connection before it is handed out. Optional;
	// when nil, connections are handed out unprobed.
	HealthCheck func(ctx context.Context, conn C) error

	// Close releases a connection. Optional.
	Close func(conn C) error

	// Retry governs Execute's retry behavior. Defaults to
	// core.DefaultRetryPolicy.
	Retry core.RetryPolicy

	// Logger receives pool lifecycle events. Defaults to NoOpLogger.
	Logger core.Logger
}

// Stats is a point-in-time snapshot of a Pool.
type Stats struct {
	Size      int
	Available int
	Replaced  int64
	Closed    bool
}

// Pool is a fixed-size connection pool. Connections are handed out through
// an index channel, so at most Size holders exist at once; a failed health
// check replaces the connection in place before it is handed out.
type Pool[C any] struct {
	cfg Config[C]

	mu        sync.Mutex
	conns     []C
	available chan int

	replaced atomic.Int64
	closed   atomic.Bool
}

// New creates and dials the pool. All Size connections are established up
// front; the first dial error aborts initialization and closes what was
// already dialed.
func New[C any](ctx context.Context, cfg Config[C]) (*Pool[C], error) {
	if cfg.Size < 1 {
		return nil, fmt.Errorf("pool: size must be at least 1, got %d", cfg.Size)
	}
	if cfg.Factory == nil {
		return nil, errors.New("pool: factory is required")
	}
	if cfg.Retry == (core.RetryPolicy{}) {
		cfg.Retry = core.DefaultRetryPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = core.NewNoOpLogger()
	}

	p := &Pool[C]{
		cfg:       cfg,
		conns:     make([]C, cfg.Size),
		available: make(chan int, cfg.Size),
	}

	for i := 0; i < cfg.Size; i++ {
		conn, err := cfg.Factory(ctx)
		if err != nil {
			p.closeDialed(i)
			return nil, fmt.Errorf("pool: dial connection %d: %w", i, err)
		}
		p.conns[i] = conn
		p.available <- i
		cfg.Logger.Debug("pool connection established", core.F("index", i))
	}

	cfg.Logger.Info("pool initialized", core.F("size", cfg.Size))
	return p, nil
}

// Acquire hands out a healthy connection, blocking until one is free or ctx
// ends. The release function must be called exactly once; it returns the
// slot whether or not the caller's operation succeeded.
func (p *Pool[C]) Acquire(ctx context.Context) (C, func(), error) {
	var zero C
	if p.closed.Load() {
		return zero, nil, ErrClosed
	}

	select {
	case idx := <-p.available:
		conn, err := p.healthyConn(ctx, idx)
		if err != nil {
			p.available <- idx
			return zero, nil, err
		}
		var once sync.Once
		release := func() {
			once.Do(func() { p.available <- idx })
		}
		return conn, release, nil
	case <-ctx.Done():
		return zero, nil, fmt.Errorf("pool: acquire: %w", ctx.Err())
	}
}

// healthyConn returns the connection at idx, replacing it first if the
// health check fails.
func (p *Pool[C]) healthyConn(ctx context.Context, idx int) (C, error) {
	p.mu.Lock()
	conn := p.conns[idx]
	p.mu.Unlock()

	if p.cfg.HealthCheck == nil {
		return conn, nil
	}
	checkErr := p.cfg.HealthCheck(ctx, conn)
	if checkErr == nil {
		return conn, nil
	}
	p.cfg.Logger.Warn("pool connection failed health check",
		core.F("index", idx), core.F("error", checkErr))

	if p.cfg.Close != nil {
		if err := p.cfg.Close(conn); err != nil {
			p.cfg.Logger.Warn("error closing broken connection",
				core.F("index", idx), core.F("error", err))
		}
	}

	fresh, err := p.cfg.Factory(ctx)
	if err != nil {
		var zero C
		return zero, fmt.Errorf("pool: replace connection %d: %w", idx, err)
	}

	p.mu.Lock()
	p.conns[idx] = fresh
	p.mu.Unlock()
	p.replaced.Add(1)
	p.cfg.Logger.Info("pool connection replaced", core.F("index", idx))
	return fresh, nil
}

// Execute runs fn with a pooled connection, retrying with exponential
// backoff per the configured policy. Each attempt gets a fresh acquire, so
// a broken connection does not poison the retries.
func (p *Pool[C]) Execute(ctx context.Context, fn func(ctx context.Context, conn C) error) error {
	var lastErr error

	for attempt := 0; attempt <= p.cfg.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.cfg.Retry.Delay(attempt - 1)
			p.cfg.Logger.Warn("retrying pooled operation",
				core.F("attempt", attempt), core.F("delay", delay), core.F("error", lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("pool: execute: %w", ctx.Err())
			}
		}

		conn, release, err := p.Acquire(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return err
			}
			lastErr = err
			continue
		}

		err = fn(ctx, conn)
		release()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("pool: execute: %w", ctx.Err())
		}
	}

	return fmt.Errorf("pool: operation failed after %d attempts: %w",
		p.cfg.Retry.MaxRetries+1, lastErr)
}

// Stats returns a snapshot of the pool.
func (p *Pool[C]) Stats() Stats {
	return Stats{
		Size:      p.cfg.Size,
		Available: len(p.available),
		Replaced:  p.replaced.Load(),
		Closed:    p.closed.Load(),
	}
}

// Close marks the pool closed and closes every connection. In-flight
// holders may still use their connection until they release it.
func (p *Pool[C]) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	var firstErr error
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.Close != nil {
		for i, conn := range p.conns {
			if err := p.cfg.Close(conn); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("pool: close connection %d: %w", i, err)
			}
		}
	}

	p.cfg.Logger.Info("pool closed", core.F("size", p.cfg.Size))
	return firstErr
}

// closeDialed closes the first n connections after a failed initialization.
func (p *Pool[C]) closeDialed(n int) {
	if p.cfg.Close == nil {
		return
	}
	for i := 0; i < n; i++ {
		if err := p.cfg.Close(p.conns[i]); err != nil {
			p.cfg.Logger.Warn("error closing connection during teardown",
				core.F("index", i), core.F("error", err))
		}
	}
}
