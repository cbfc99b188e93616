// Package arc implements atomically reference-counted shared ownership with
// strong and weak handles.
//
// Every value lives in one allocation carrying two counters:
//
//	strong  number of live *Arc handles (they own the value)
//	weak    number of live *Weak handles, plus one shared by all *Arc handles
//
// Lifecycle:
//   - strong 1→0: the value is destroyed (Dropper.Drop runs, the slot is
//     zeroed) and the implicit weak reference is released.
//   - weak 1→0: the allocation is freed.
//
// Each of these happens exactly once, on whichever goroutine performs the
// final decrement.
//
// Unique mutation:
//
// GetMut hands out a mutable pointer only when the caller's handle is the
// only strong handle and no weak handle exists. Checking the two counters
// one after the other would race with a concurrent Downgrade followed by
// Upgrade, so GetMut first swaps weak from 1 to a locked sentinel. While
// locked, Downgrade spins, and no Weak exists to Upgrade from, so strong can
// only be changed by the caller itself. Reading strong == 1 under the lock
// therefore proves uniqueness.
//
// Memory is garbage collected, so "destroy" and "free" are logical: the
// value's resources are released through Dropper and the allocation is
// accounted as freed in its Arena. The handle that observed the final
// decrement clears the payload so the collector can reclaim it.
//
// Count overflow is not checked.
package arc
