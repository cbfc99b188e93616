// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package futex provides wait/wake on a 32-bit word.
//
// A futex is a way for a goroutine to sleep keyed by the address of a word,
// and for another goroutine to wake one or all sleepers keyed on the same
// address. A futex never changes the word. Wait only reads it, atomically with
// respect to Wake, so a wake that happens after the value changed cannot be
// lost:
//
//	// Waiter                           // Waker
//	for state.Load() == locked {        state.Store(unlocked)
//	    futex.Wait(&state, locked)      futex.WakeOne(&state)
//	}
//
// Wait may return spuriously. Callers always re-check their condition in a
// loop.
//
// Backends:
//   - "futex": the Linux FUTEX_WAIT/FUTEX_WAKE system call on the word itself
//     (default on linux).
//   - "emulated": a hashed table of per-address wait queues, each protected
//     by a short critical section (everything else, or any platform built
//     with the synckit_emulated tag).
//
// The native backend parks the OS thread inside the system call. The Go
// scheduler hands the P to another thread while it is blocked, so many
// concurrent waiters cost one thread each.
package futex
