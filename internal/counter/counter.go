package counter

import (
	"context"
	"sync"
	"time"
)

// Counter is a non-negative integer that waiters can block on. Every change
// closes the current changed channel and replaces it.
type Counter struct {
	mu      sync.Mutex
	value   int
	changed chan struct{}
}

func New() *Counter {
	var c = &Counter{}
	c.changed = make(chan struct{})
	return c
}

func (this *Counter) Incr() int {
	this.mu.Lock()
	defer this.mu.Unlock()

	this.value++
	this.broadcast()
	return this.value
}

func (this *Counter) Reset() {
	this.mu.Lock()
	defer this.mu.Unlock()

	this.value = 0
	this.broadcast()
}

func (this *Counter) Load() int {
	this.mu.Lock()
	defer this.mu.Unlock()

	return this.value
}

// must hold mu
func (this *Counter) broadcast() {
	close(this.changed)
	this.changed = make(chan struct{})
}

func (this *Counter) snapshot() (int, <-chan struct{}) {
	this.mu.Lock()
	defer this.mu.Unlock()

	return this.value, this.changed
}

// WaitAtLeast blocks until the value is >= target, the timeout elapses or ctx
// is done. It returns the value observed last and whether target was reached.
// A timeout <= 0 checks once without blocking.
func (this *Counter) WaitAtLeast(ctx context.Context, target int, timeout time.Duration) (int, bool) {
	var value, changed = this.snapshot()
	if value >= target {
		return value, true
	}
	if timeout <= 0 {
		return value, false
	}

	var timer = time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-changed:
		case <-timer.C:
			value = this.Load()
			return value, value >= target
		case <-ctx.Done():
			value = this.Load()
			return value, value >= target
		}

		value, changed = this.snapshot()
		if value >= target {
			return value, true
		}
	}
}
