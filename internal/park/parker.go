// Package park implements goroutine parking: a per-goroutine token that one
// goroutine can wait on and another can set.
//
// This is the thread park/unpark facility used by the one-shot channel:
//
//	// Receiver goroutine             // Sender goroutine
//	me := park.Current()              ...
//	for !ready.Load() {               ready.Store(true)
//	    park.Park()                   me.Unpark()
//	}
//
// Semantics:
//   - Unpark before Park is not lost: the token is remembered and the next
//     Park returns immediately.
//   - Tokens do not accumulate: any number of Unparks before a Park leave
//     exactly one token.
//   - Park may return spuriously. Callers re-check their condition.
package park

import (
	"sync/atomic"

	"github.com/kolkov/synckit/internal/futex"
)

// Token states.
const (
	empty    uint32 = 0
	notified uint32 = 1
)

// Parker is a single park token. The zero value has no token.
//
// Only one goroutine may Park on a given Parker at a time; any goroutine may
// Unpark it.
type Parker struct {
	state atomic.Uint32
}

// Park blocks until the token is available, then consumes it.
// May return spuriously without consuming a token.
func (p *Parker) Park() {
	// Fast path: a token was left by an earlier Unpark.
	if p.state.CompareAndSwap(notified, empty) {
		return
	}

	futex.Wait(&p.state, empty)

	// Consume the token if the wake was real; a spurious return leaves
	// the state untouched.
	p.state.CompareAndSwap(notified, empty)
}

// Unpark makes the token available, waking the parked goroutine if there is
// one.
func (p *Parker) Unpark() {
	if p.state.Swap(notified) == empty {
		futex.WakeOne(&p.state)
	}
}
