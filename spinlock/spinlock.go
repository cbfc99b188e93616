// Package spinlock provides a busy-waiting mutual exclusion lock guarding one
// value.
//
// A SpinLock never parks: a contended Lock spins until the holder lets go.
// It is only appropriate for critical sections that are a handful of
// instructions long. For anything else use the mutex package.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// spinsBeforeYield bounds the pure busy loop; after that many failed
// attempts Lock yields the processor between attempts so the holder can run
// even with GOMAXPROCS=1.
const spinsBeforeYield = 64

// SpinLock guards a value of type T.
//
// Invariant: locked is true iff exactly one Guard is live.
//
// A SpinLock must not be copied after first use.
type SpinLock[T any] struct {
	locked atomic.Bool
	value  T
}

// New returns an unlocked SpinLock holding v.
func New[T any](v T) *SpinLock[T] {
	return &SpinLock[T]{value: v}
}

// Lock spins until the lock is acquired and returns its guard.
func (l *SpinLock[T]) Lock() Guard[T] {
	for spins := 0; l.locked.Swap(true); spins++ {
		// Spin on a plain load so waiting cores share the cache line instead
		// of bouncing it with swaps.
		for l.locked.Load() {
			if spins++; spins >= spinsBeforeYield {
				runtime.Gosched()
			}
		}
	}
	return Guard[T]{lock: l}
}

// TryLock acquires the lock if it is free. It never spins.
func (l *SpinLock[T]) TryLock() (Guard[T], bool) {
	if l.locked.Swap(true) {
		return Guard[T]{}, false
	}
	return Guard[T]{lock: l}, true
}

// Guard is proof of holding a SpinLock.
//
// The guard grants access to the value until Unlock. Using a guard or a
// pointer obtained from Value after Unlock is a data race.
type Guard[T any] struct {
	lock *SpinLock[T]
}

// Value returns the guarded value.
func (g Guard[T]) Value() *T {
	return &g.lock.value
}

// Unlock releases the lock. It panics if the lock is not held.
func (g Guard[T]) Unlock() {
	if !g.lock.locked.Swap(false) {
		panic("spinlock: unlock of unlocked SpinLock")
	}
}
