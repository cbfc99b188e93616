// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux && !synckit_emulated

package futex

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const backend = "futex"

// Operation codes from <linux/futex.h>.
const (
	futexWait        = 0
	futexWake        = 1
	futexPrivateFlag = 128
)

// wait issues FUTEX_WAIT_PRIVATE.
//
// EAGAIN (value already changed) and EINTR (signal) are not reported: both
// look like a spurious wakeup to callers, which re-check in a loop anyway.
func wait(addr *atomic.Uint32, expected uint32) {
	//nolint:gosec // G103: the kernel needs the address of the word itself
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWait|futexPrivateFlag,
		uintptr(expected),
		0, 0, 0)
}

// wake issues FUTEX_WAKE_PRIVATE for up to n waiters.
func wake(addr *atomic.Uint32, n int) {
	//nolint:gosec // G103: the kernel needs the address of the word itself
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWake|futexPrivateFlag,
		uintptr(n),
		0, 0, 0)
}
