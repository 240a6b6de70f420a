package core

import "context"

// slotPool is a counting semaphore backed by a buffered channel. At most
// cap(sem) holders exist at any time.
type slotPool struct {
	sem chan struct{}
}

func newSlotPool(max int) *slotPool {
	return &slotPool{sem: make(chan struct{}, max)}
}

// acquire blocks until a slot is free or ctx ends. On success it returns a
// release function that must be called exactly once.
func (p *slotPool) acquire(ctx context.Context) (release func(), ok bool) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *slotPool) inUse() int {
	return len(p.sem)
}

func (p *slotPool) capacity() int {
	return cap(p.sem)
}
