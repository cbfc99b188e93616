package arc

import "sync/atomic"

// Arena accounts for the allocations made through it.
//
// It exists so that callers (and tests) can observe the exactly-once
// guarantees: every allocation is counted when created, when its value is
// destroyed and when it is freed. The zero value is ready to use.
type Arena struct {
	allocated atomic.Int64
	destroyed atomic.Int64
	freed     atomic.Int64
}

// Stats is a snapshot of an Arena's counters.
type Stats struct {
	// Allocated is the number of allocations ever created.
	Allocated int64

	// Destroyed is the number of values whose last strong handle was
	// released.
	Destroyed int64

	// Freed is the number of allocations whose last weak reference was
	// released.
	Freed int64
}

// Live returns the number of allocations not yet freed.
func (s Stats) Live() int64 {
	return s.Allocated - s.Freed
}

// Stats returns the current counters.
//
// The three counters are read independently, so a snapshot taken while
// handles are being released may be momentarily inconsistent.
func (a *Arena) Stats() Stats {
	return Stats{
		Allocated: a.allocated.Load(),
		Destroyed: a.destroyed.Load(),
		Freed:     a.freed.Load(),
	}
}

// defaultArena backs New.
var defaultArena Arena

// DefaultArena returns the arena used by New.
func DefaultArena() *Arena {
	return &defaultArena
}
