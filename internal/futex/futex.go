// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package futex

import (
	"math"
	"sync/atomic"
)

// Wait blocks the calling goroutine until it is woken by WakeOne or WakeAll
// on addr, as long as *addr == expected at the time of the call. If the value
// already differs, Wait returns immediately.
//
// Wait may return spuriously.
func Wait(addr *atomic.Uint32, expected uint32) {
	wait(addr, expected)
}

// WakeOne wakes at most one goroutine blocked in Wait on addr.
func WakeOne(addr *atomic.Uint32) {
	wake(addr, 1)
}

// WakeAll wakes every goroutine blocked in Wait on addr.
func WakeAll(addr *atomic.Uint32) {
	wake(addr, math.MaxInt32)
}

// Backend reports which wait/wake implementation this build uses:
// "futex" or "emulated".
func Backend() string {
	return backend
}
