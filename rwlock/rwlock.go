// Package rwlock provides a reader-writer lock guarding one value, built on
// futex wait/wake.
//
// The whole lock state lives in one word:
//
//	0             unlocked
//	2n            n readers, no writer waiting
//	2n+1          n readers, a writer waiting (new readers block)
//	math.MaxUint32 a writer holds the lock
//
// Writer preference is approximate: a waiting writer sets the low bit so no
// new reader gets in, the last reader out wakes one writer, and a departing
// writer hands the lock straight to the next pending writer before readers
// get another chance. There is no FIFO ordering among waiters.
package rwlock

import (
	"math"
	"sync/atomic"

	"github.com/kolkov/synckit/internal/futex"
)

const (
	// writeLocked is the state while a writer holds the lock. It is odd, so
	// readers treat it like "writer waiting" and block.
	writeLocked uint32 = math.MaxUint32

	// maxReaderState is the largest state a reader may still add itself to.
	maxReaderState = writeLocked - 3
)

// RwLock guards a value of type T, allowing many concurrent readers or one
// writer.
//
// Invariant: writeLocked and a nonzero reader count are mutually exclusive.
//
// An RwLock must not be copied after first use.
type RwLock[T any] struct {
	state atomic.Uint32

	// writerWake is bumped whenever a parked writer should retry. Writers
	// park here, readers park on state.
	writerWake atomic.Uint32

	// pendingWriters counts writers between the start of Write and their
	// Unlock, including the one holding the lock.
	pendingWriters atomic.Uint32

	value T
}

// New returns an unlocked RwLock holding v.
func New[T any](v T) *RwLock[T] {
	return &RwLock[T]{value: v}
}

// Read blocks until a read lock is acquired and returns its guard.
//
// Recursive read locking can deadlock: a writer waiting between the two
// Read calls blocks the second one.
func (l *RwLock[T]) Read() ReadGuard[T] {
	s := l.state.Load()
	for {
		if s%2 == 0 {
			if s > maxReaderState {
				panic("rwlock: too many readers")
			}
			if l.state.CompareAndSwap(s, s+2) {
				return ReadGuard[T]{lock: l}
			}
			s = l.state.Load()
			continue
		}

		// A writer holds the lock or is waiting for it.
		futex.Wait(&l.state, s)
		s = l.state.Load()
	}
}

// TryRead acquires a read lock if no writer holds or awaits the lock.
func (l *RwLock[T]) TryRead() (ReadGuard[T], bool) {
	for {
		s := l.state.Load()
		if s%2 == 1 || s > maxReaderState {
			return ReadGuard[T]{}, false
		}
		if l.state.CompareAndSwap(s, s+2) {
			return ReadGuard[T]{lock: l}, true
		}
	}
}

// Write blocks until the write lock is acquired and returns its guard.
func (l *RwLock[T]) Write() WriteGuard[T] {
	l.pendingWriters.Add(1)

	s := l.state.Load()
	for {
		// Unlocked, with or without the writer-waiting bit.
		if s <= 1 {
			if l.state.CompareAndSwap(s, writeLocked) {
				return WriteGuard[T]{lock: l}
			}
			s = l.state.Load()
			continue
		}

		// Readers only: raise the bit so no new reader gets in.
		if s%2 == 0 {
			if !l.state.CompareAndSwap(s, s+1) {
				s = l.state.Load()
				continue
			}
		}

		// Read the wake counter before re-checking the state: a reader or
		// writer that releases after this point bumps the counter, and the
		// wait below then returns immediately.
		w := l.writerWake.Load()
		s = l.state.Load()
		if s >= 2 {
			futex.Wait(&l.writerWake, w)
			s = l.state.Load()
		}
	}
}

// TryWrite acquires the write lock if the lock is completely free.
func (l *RwLock[T]) TryWrite() (WriteGuard[T], bool) {
	if !l.state.CompareAndSwap(0, writeLocked) {
		return WriteGuard[T]{}, false
	}
	l.pendingWriters.Add(1)
	return WriteGuard[T]{lock: l}, true
}

func (l *RwLock[T]) readUnlock() {
	prev := l.state.Add(^uint32(1)) + 2 // state -= 2
	switch {
	case prev == 3:
		// Last reader out, and a writer is waiting.
		l.writerWake.Add(1)
		futex.WakeOne(&l.writerWake)
	case prev == 0 || prev == 1 || prev == writeLocked:
		panic("rwlock: read unlock of unlocked RwLock")
	}
}

func (l *RwLock[T]) writeUnlock() {
	if l.state.Load() != writeLocked {
		panic("rwlock: write unlock of unlocked RwLock")
	}

	if l.pendingWriters.Add(^uint32(0))+1 > 1 {
		// Hand off to the next writer, keeping readers out.
		l.state.Store(1)
		l.writerWake.Add(1)
		futex.WakeOne(&l.writerWake)
		return
	}

	l.state.Store(0)
	// A writer may have registered after the count was read and parked on
	// the counter. Bumping it makes that wait return.
	l.writerWake.Add(1)
	futex.WakeOne(&l.writerWake)
	futex.WakeAll(&l.state)
}

// ReadGuard is proof of holding a read lock.
//
// Other readers may hold the lock at the same time, so the value must not be
// modified through a ReadGuard.
type ReadGuard[T any] struct {
	lock *RwLock[T]
}

// Value returns the guarded value for reading.
func (g ReadGuard[T]) Value() *T {
	return &g.lock.value
}

// Unlock releases the read lock.
func (g ReadGuard[T]) Unlock() {
	g.lock.readUnlock()
}

// WriteGuard is proof of holding the write lock.
type WriteGuard[T any] struct {
	lock *RwLock[T]
}

// Value returns the guarded value for reading and writing.
func (g WriteGuard[T]) Value() *T {
	return &g.lock.value
}

// Unlock releases the write lock.
func (g WriteGuard[T]) Unlock() {
	g.lock.writeUnlock()
}
