package park

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/synckit/internal/goid"
)

// Thread is the parking handle of one goroutine.
//
// Current returns the same *Thread for every call made by the same
// goroutine, so a handle captured in one place can be used to wake a Park
// issued anywhere else by that goroutine.
type Thread struct {
	// id is the goroutine identifier (see internal/goid).
	id int64

	// seq orders registrations; Sweep only considers entries registered
	// before it took its snapshot of live goroutines.
	seq uint64

	parker Parker
}

// ID returns the goroutine identifier this handle belongs to.
func (t *Thread) ID() int64 {
	return t.id
}

// Unpark makes the goroutine's park token available.
func (t *Thread) Unpark() {
	t.parker.Unpark()
}

// Park blocks until t's token is available. Only the goroutine t belongs to
// may call it. May return spuriously.
func (t *Thread) Park() {
	t.parker.Park()
}

// sweepInterval is how many registrations pass between sweeps of dead
// goroutines out of the registry.
const sweepInterval = 1024

var (
	// threads maps goroutine ID (int64) to *Thread.
	//
	// sync.Map fits the access pattern: each key is written once by its own
	// goroutine and then only read.
	threads sync.Map

	// registrations counts new registry entries, to trigger sweeps.
	registrations atomic.Uint64
)

// Current returns the handle of the calling goroutine, registering it on
// first use.
func Current() *Thread {
	id := goid.ID()

	if t, ok := threads.Load(id); ok {
		return t.(*Thread)
	}

	// Only this goroutine registers under its own ID, so there is no race
	// between the Load above and this Store.
	seq := registrations.Add(1)
	t := &Thread{id: id, seq: seq}
	threads.Store(id, t)

	if seq%sweepInterval == 0 {
		go Sweep()
	}
	return t
}

// Park blocks the calling goroutine until its token is available.
// May return spuriously.
func Park() {
	Current().parker.Park()
}

// Forget removes the calling goroutine's handle from the registry.
//
// Handles already captured keep working for Unpark, but a later Current on
// this goroutine returns a fresh handle. Only call Forget when no one can
// still be waiting to wake this goroutine.
func Forget() {
	threads.Delete(goid.ID())
}

// Sweep removes registry entries of goroutines that have exited.
//
// Goroutine IDs are never reused while the goroutine lives, so an entry whose
// ID is absent from the live set can never be returned by Current again.
// Entries registered after the snapshot is taken are left alone.
func Sweep() {
	cutoff := registrations.Load()

	live := make(map[int64]struct{})
	for _, id := range goid.Live() {
		live[id] = struct{}{}
	}

	threads.Range(func(key, value any) bool {
		if value.(*Thread).seq > cutoff {
			return true
		}
		if _, ok := live[key.(int64)]; !ok {
			threads.CompareAndDelete(key, value)
		}
		return true
	})
}
