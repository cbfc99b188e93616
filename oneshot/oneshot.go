// Package oneshot provides a single-use channel that hands one value from a
// sender goroutine to the goroutine that created the channel.
//
// The receiver is fixed at creation: New captures the calling goroutine, and
// Send wakes exactly that goroutine after publishing the value.
//
//	tx, rx := oneshot.New[string]()
//	go tx.Send("hello")
//	msg := rx.Receive() // "hello"
//	rx.Close()
//
// Each endpoint holds a share of the channel state until it is finished:
// Send finishes the sender, while the receiver stays open after Receive and
// must be closed.
//
// The value is written before the ready flag is set, and read only after the
// flag is observed set, so Receive never sees a partially written value.
//
// Single use is enforced at run time: a second Send or Receive, a Receive on
// any goroutine other than the creator, or use of a closed endpoint panics
// with one of the errors below.
//
// If the last endpoint goes away while a sent value was never received, the
// value is dropped (see arc.Dropper) exactly once.
package oneshot

import (
	"errors"
	"sync/atomic"

	"github.com/kolkov/synckit/arc"
	"github.com/kolkov/synckit/internal/goid"
	"github.com/kolkov/synckit/internal/park"
)

// Contract violations. Each is raised with panic.
var (
	// ErrSent is raised by a second Send.
	ErrSent = errors.New("oneshot: send on used sender")

	// ErrReceived is raised by a second Receive.
	ErrReceived = errors.New("oneshot: receive on used receiver")

	// ErrWrongReceiver is raised by Receive on a goroutine other than the
	// one that created the channel.
	ErrWrongReceiver = errors.New("oneshot: receive from foreign goroutine")

	// ErrClosed is raised by Send or Receive on a closed endpoint.
	ErrClosed = errors.New("oneshot: use of closed endpoint")
)

// Endpoint states.
const (
	open uint32 = iota
	used
	closed
)

// channel is the state shared by both endpoints through an arc.Arc.
type channel[T any] struct {
	ready   atomic.Bool
	message T
}

// Drop runs when the last endpoint releases the channel. A value still
// marked ready was sent but never received.
func (c *channel[T]) Drop() {
	if c.ready.Load() {
		arc.DropValue(&c.message)
	}
}

// New creates a channel whose receiving end belongs to the calling
// goroutine.
func New[T any]() (*Sender[T], *Receiver[T]) {
	shared := arc.New(channel[T]{})
	me := park.Current()

	return &Sender[T]{shared: shared.Clone(), receiver: me},
		&Receiver[T]{shared: shared, owner: me}
}

// Sender is the sending end of a channel.
type Sender[T any] struct {
	state    atomic.Uint32
	shared   *arc.Arc[channel[T]]
	receiver *park.Thread
}

// Send publishes v and wakes the receiver. The sender is finished
// afterwards.
func (s *Sender[T]) Send(v T) {
	if !s.state.CompareAndSwap(open, used) {
		if s.state.Load() == closed {
			panic(ErrClosed)
		}
		panic(ErrSent)
	}

	// The endpoints' protocol, not the arc, serializes access to the slot:
	// only Send writes it, and only before ready is set.
	c := s.shared.Get()
	c.message = v
	c.ready.Store(true)
	s.receiver.Unpark()

	s.shared.Release()
}

// Close releases the sender without sending. Close after Send, or a second
// Close, does nothing.
func (s *Sender[T]) Close() {
	if s.state.CompareAndSwap(open, closed) {
		s.shared.Release()
	}
}

// Receiver is the receiving end of a channel. It belongs to the goroutine
// that called New.
type Receiver[T any] struct {
	state  atomic.Uint32
	shared *arc.Arc[channel[T]]
	owner  *park.Thread
}

// IsReady reports whether a value has been sent and not yet received.
func (r *Receiver[T]) IsReady() bool {
	if r.state.Load() != open {
		return false
	}
	return r.shared.Get().ready.Load()
}

// Receive blocks until the value is sent and returns it. The receiver
// keeps its share of the channel until Close.
func (r *Receiver[T]) Receive() T {
	if goid.ID() != r.owner.ID() {
		panic(ErrWrongReceiver)
	}
	if !r.state.CompareAndSwap(open, used) {
		if r.state.Load() == closed {
			panic(ErrClosed)
		}
		panic(ErrReceived)
	}

	c := r.shared.Get()
	for !c.ready.Swap(false) {
		r.owner.Park()
	}

	v := c.message
	var zero T
	c.message = zero
	return v
}

// Close releases the receiver. An unreceived value is dropped once the
// sender is gone too. A second Close does nothing.
func (r *Receiver[T]) Close() {
	for {
		s := r.state.Load()
		if s == closed {
			return
		}
		if r.state.CompareAndSwap(s, closed) {
			r.shared.Release()
			return
		}
	}
}
