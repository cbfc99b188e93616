// Package mutex provides a blocking mutual exclusion lock guarding one value,
// built on a three-state futex word.
//
// State machine:
//
//	unlocked ──Lock (CAS)──────────────► locked
//	locked ────Lock (contended, swap)──► lockedWithWaiters ──park──┐
//	locked ────Unlock──────────────────► unlocked (no wake)        │
//	lockedWithWaiters ──Unlock─────────► unlocked + wake one ◄─────┘
//
// Distinguishing locked from lockedWithWaiters lets Unlock skip the wake
// entirely when nobody is known to be waiting. A woken waiter re-acquires by
// swapping in lockedWithWaiters, since it cannot know whether others are
// still parked.
package mutex

import (
	"sync/atomic"

	"github.com/kolkov/synckit/internal/futex"
)

// Lock word states.
const (
	unlocked          uint32 = 0
	locked            uint32 = 1
	lockedWithWaiters uint32 = 2
)

// spinLimit bounds the optimistic spin before a contended Lock parks.
const spinLimit = 100

// Mutex guards a value of type T.
//
// The value is only ever reachable through a Guard, and a Guard only exists
// while the lock is held.
//
// A Mutex must not be copied after first use.
type Mutex[T any] struct {
	state atomic.Uint32
	value T
}

// New returns an unlocked Mutex holding v.
func New[T any](v T) *Mutex[T] {
	return &Mutex[T]{value: v}
}

// Lock blocks until the mutex is acquired and returns its guard.
func (m *Mutex[T]) Lock() Guard[T] {
	if !m.state.CompareAndSwap(unlocked, locked) {
		m.lockContended()
	}
	return Guard[T]{mu: m}
}

// TryLock acquires the mutex if it is free. It never blocks.
func (m *Mutex[T]) TryLock() (Guard[T], bool) {
	if m.state.CompareAndSwap(unlocked, locked) {
		return Guard[T]{mu: m}, true
	}
	return Guard[T]{}, false
}

func (m *Mutex[T]) lockContended() {
	// Short critical sections are often over before a park would even
	// start. Spin only while the holder has no waiters queued behind it.
	for spin := 0; spin < spinLimit && m.state.Load() == locked; spin++ {
	}

	if m.state.CompareAndSwap(unlocked, locked) {
		return
	}

	// Announce ourselves as a waiter. If the swap observed unlocked we own
	// the mutex now, conservatively marked as having waiters.
	for m.state.Swap(lockedWithWaiters) != unlocked {
		futex.Wait(&m.state, lockedWithWaiters)
	}
}

func (m *Mutex[T]) unlock() {
	switch m.state.Swap(unlocked) {
	case unlocked:
		panic("mutex: unlock of unlocked Mutex")
	case lockedWithWaiters:
		futex.WakeOne(&m.state)
	}
}

// Guard is proof of holding a Mutex.
//
// Using a guard, or a pointer obtained from Value, after Unlock is a data
// race.
type Guard[T any] struct {
	mu *Mutex[T]
}

// Value returns the guarded value.
func (g Guard[T]) Value() *T {
	return &g.mu.value
}

// Unlock releases the mutex, waking one waiter if any are parked.
// It panics if the mutex is not locked.
func (g Guard[T]) Unlock() {
	g.mu.unlock()
}

// Mutex returns the mutex this guard holds.
func (g Guard[T]) Mutex() *Mutex[T] {
	return g.mu
}
