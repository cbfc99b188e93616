package arc

import (
	"math"
	"runtime"
	"sync/atomic"
)

// weakLocked is the sentinel GetMut stores in the weak count while it
// checks for uniqueness.
const weakLocked = math.MaxUint64

// Dropper is implemented by values that own resources to release when the
// last strong handle goes away.
type Dropper interface {
	Drop()
}

// inner is the shared allocation.
type inner[T any] struct {
	// strong counts *Arc handles.
	strong atomic.Uint64

	// weak counts *Weak handles, plus one while strong > 0.
	weak atomic.Uint64

	arena *Arena
	value T
}

// DropValue destroys *v in place: it calls Drop if T (or *T) implements
// Dropper and then zeroes *v.
func DropValue[T any](v *T) {
	if d, ok := any(v).(Dropper); ok {
		d.Drop()
	} else if d, ok := any(*v).(Dropper); ok {
		d.Drop()
	}
	var zero T
	*v = zero
}

// destroy runs once, after strong reached zero.
func (p *inner[T]) destroy() {
	DropValue(&p.value)
	p.arena.destroyed.Add(1)
}

// releaseWeak drops one weak reference and frees on the last one.
func (p *inner[T]) releaseWeak() {
	if p.weak.Add(^uint64(0)) == 0 {
		p.arena.freed.Add(1)
		p.arena = nil
	}
}

// Arc is a strong handle: it keeps the value alive.
//
// Copying the *Arc pointer does not create a new reference; use Clone.
// Each handle must be released exactly once.
type Arc[T any] struct {
	ptr      *inner[T]
	released atomic.Bool
}

// New allocates v in the default arena and returns the first strong handle.
func New[T any](v T) *Arc[T] {
	return NewIn(&defaultArena, v)
}

// NewIn allocates v in arena a and returns the first strong handle.
func NewIn[T any](a *Arena, v T) *Arc[T] {
	p := &inner[T]{arena: a, value: v}
	p.strong.Store(1)
	p.weak.Store(1)
	a.allocated.Add(1)
	return &Arc[T]{ptr: p}
}

func (a *Arc[T]) live() *inner[T] {
	if a.released.Load() {
		panic("arc: use of released handle")
	}
	return a.ptr
}

// Get returns a pointer to the shared value.
//
// Other handles may be reading the value concurrently; it must not be
// modified through this pointer. Use GetMut to mutate.
func (a *Arc[T]) Get() *T {
	return &a.live().value
}

// Clone returns a new strong handle to the same value.
func (a *Arc[T]) Clone() *Arc[T] {
	p := a.live()
	// This handle keeps the allocation alive, so no ordering is needed
	// beyond the increment itself.
	p.strong.Add(1)
	return &Arc[T]{ptr: p}
}

// Downgrade returns a weak handle to the same value.
func (a *Arc[T]) Downgrade() *Weak[T] {
	p := a.live()
	for {
		n := p.weak.Load()
		if n == weakLocked {
			// GetMut is checking uniqueness; it restores the count shortly.
			runtime.Gosched()
			continue
		}
		if p.weak.CompareAndSwap(n, n+1) {
			return &Weak[T]{ptr: p}
		}
	}
}

// GetMut returns a mutable pointer to the value if a is the only strong
// handle and no weak handle exists. Otherwise it returns nil, false.
//
// The pointer is valid until a is cloned, downgraded or released.
func (a *Arc[T]) GetMut() (*T, bool) {
	p := a.live()

	// Lock out Downgrade. Failure means weak handles exist.
	if !p.weak.CompareAndSwap(1, weakLocked) {
		return nil, false
	}

	// No Weak exists and none can be created, so only a's owner can change
	// strong from here on.
	unique := p.strong.Load() == 1

	// Publishes the unlock to any Downgrade spinning on the sentinel.
	p.weak.Store(1)

	if !unique {
		return nil, false
	}
	return &p.value, true
}

// Release drops this strong handle. Releasing the last one destroys the
// value. It panics if the handle was already released.
func (a *Arc[T]) Release() {
	if a.released.Swap(true) {
		panic("arc: release of released handle")
	}
	p := a.ptr
	a.ptr = nil

	if p.strong.Add(^uint64(0)) == 0 {
		p.destroy()
		// The strong handles collectively held one weak reference.
		p.releaseWeak()
	}
}

// StrongCount returns the number of strong handles. The value may be stale
// by the time it is used.
func (a *Arc[T]) StrongCount() uint64 {
	return a.live().strong.Load()
}

// WeakCount returns the number of weak handles, not counting the reference
// held collectively by the strong handles. The value may be stale by the
// time it is used.
func (a *Arc[T]) WeakCount() uint64 {
	n := a.live().weak.Load()
	if n == weakLocked {
		// A GetMut is in progress, which implies no weak handles.
		return 0
	}
	return n - 1
}

// Same reports whether a and b refer to the same allocation.
func (a *Arc[T]) Same(b *Arc[T]) bool {
	return a.live() == b.live()
}

// Weak is a weak handle: it keeps the allocation, but not the value, alive.
//
// Each handle must be released exactly once.
type Weak[T any] struct {
	ptr      *inner[T]
	released atomic.Bool
}

func (w *Weak[T]) live() *inner[T] {
	if w.released.Load() {
		panic("arc: use of released handle")
	}
	return w.ptr
}

// Upgrade returns a new strong handle if the value is still alive, or nil,
// false once the last strong handle was released.
func (w *Weak[T]) Upgrade() (*Arc[T], bool) {
	p := w.live()
	for {
		n := p.strong.Load()
		if n == 0 {
			return nil, false
		}
		if p.strong.CompareAndSwap(n, n+1) {
			return &Arc[T]{ptr: p}, true
		}
	}
}

// Clone returns a new weak handle to the same allocation.
func (w *Weak[T]) Clone() *Weak[T] {
	p := w.live()
	// w itself is a weak reference, so GetMut cannot hold the count locked.
	p.weak.Add(1)
	return &Weak[T]{ptr: p}
}

// Release drops this weak handle. Releasing the last reference frees the
// allocation. It panics if the handle was already released.
func (w *Weak[T]) Release() {
	if w.released.Swap(true) {
		panic("arc: release of released handle")
	}
	p := w.ptr
	w.ptr = nil
	p.releaseWeak()
}
