// Package condvar provides a condition variable paired with mutex.Mutex.
//
// A Condvar keeps a generation counter that every notification advances.
// Waiters record the generation before releasing the mutex and then park on
// the counter word until it moves, so a notification issued any time after
// the record is never missed, and spurious returns of the underlying wait are
// absorbed by the loop.
//
// Usage:
//
//	g := m.Lock()
//	for !ready(*g.Value()) {
//	    g = condvar.Wait(cv, g)
//	}
//	g.Unlock()
package condvar

import (
	"sync/atomic"

	"github.com/kolkov/synckit/internal/futex"
	"github.com/kolkov/synckit/mutex"
)

// Condvar is a condition variable. The zero value is ready to use.
//
// A Condvar must not be copied after first use.
type Condvar struct {
	// generation advances on every notification that finds a waiter.
	generation atomic.Uint32

	// waiters counts goroutines inside Wait. It only lets Notify skip the
	// wake when nobody is waiting.
	waiters atomic.Int64
}

// New returns a Condvar with no waiters.
func New() *Condvar {
	return &Condvar{}
}

// Wait atomically releases g's mutex, blocks until notified, reacquires the
// mutex and returns the new guard. g must not be used afterwards.
//
// Wait may return without the caller's condition holding (another goroutine
// may have changed it first); always call it in a loop.
func Wait[T any](c *Condvar, g mutex.Guard[T]) mutex.Guard[T] {
	c.waiters.Add(1)
	gen := c.generation.Load()

	m := g.Mutex()
	g.Unlock()

	for c.generation.Load() == gen {
		futex.Wait(&c.generation, gen)
	}

	c.waiters.Add(-1)
	return m.Lock()
}

// NotifyOne wakes one goroutine blocked in Wait, if any.
func (c *Condvar) NotifyOne() {
	if c.waiters.Load() > 0 {
		c.generation.Add(1)
		futex.WakeOne(&c.generation)
	}
}

// NotifyAll wakes every goroutine blocked in Wait.
func (c *Condvar) NotifyAll() {
	if c.waiters.Load() > 0 {
		c.generation.Add(1)
		futex.WakeAll(&c.generation)
	}
}
