// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goid extracts goroutine identifiers.
//
// Goroutines have no public identity in Go. The runtime does print one in
// every stack trace header:
//
//	goroutine 123 [running]:
//
// and that number is stable for the lifetime of the goroutine and never reused
// while it is alive. This package parses it out of runtime.Stack.
//
// Performance: ~1-5µs per ID call (dominated by runtime.Stack). Callers should
// look the ID up once per blocking operation, not on a hot path.
package goid

import (
	"runtime"
)

// prefix starts every goroutine header in runtime.Stack output.
const prefix = "goroutine "

// ID returns the identifier of the calling goroutine, or 0 if it could not
// be determined.
func ID() int64 {
	// Only the first line is needed, so 64 bytes is sufficient.
	// Format: "goroutine 123 [running]:\n..."
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parse(buf[:n])
}

// Live returns the identifiers of all goroutines that exist at the time of
// the call.
//
// This stops the world for the duration of runtime.Stack(all=true). It is
// meant for occasional housekeeping, never for per-operation use.
func Live() []int64 {
	size := 64 * 1024
	for {
		buf := make([]byte, size)
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return parseAll(buf[:n])
		}
		// Truncated dump: headers past the cut would be missed.
		size *= 2
	}
}

// parse extracts the ID from a single "goroutine N [...]" header.
// Returns 0 if buf does not start with a goroutine header.
func parse(buf []byte) int64 {
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var id int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			// Non-digit terminates the ID (usually the space before "[running]").
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}

// parseAll extracts every goroutine ID from a runtime.Stack(all=true) dump.
//
// Input format:
//
//	goroutine 1 [running]:
//	main.main()
//	    /path/to/main.go:10 +0x20
//
//	goroutine 5 [chan receive]:
//	...
func parseAll(buf []byte) []int64 {
	var ids []int64

	for i := 0; i < len(buf); {
		end := i
		for end < len(buf) && buf[end] != '\n' {
			end++
		}

		if id := parse(buf[i:end]); id != 0 {
			ids = append(ids, id)
		}

		i = end + 1
	}

	return ids
}
