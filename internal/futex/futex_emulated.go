// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux || synckit_emulated

package futex

import "sync/atomic"

const backend = "emulated"

// global is the process-wide table used when no native futex is available.
var global Table

func wait(addr *atomic.Uint32, expected uint32) {
	global.Wait(addr, expected)
}

func wake(addr *atomic.Uint32, n int) {
	global.Wake(addr, n)
}
