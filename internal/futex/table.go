// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package futex

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// numBuckets is the number of independently locked buckets in a Table.
// Must be a power of two.
const numBuckets = 256

// Table emulates futex wait/wake for platforms without a native futex.
//
// Words are hashed by address into a fixed array of buckets. Each bucket
// holds a FIFO of waiters per address, guarded by a short critical section.
// Waiters re-check the word under the bucket lock before enqueueing, and
// wakers dequeue under the same lock, so a Wake issued after the value
// changed is never lost:
//
//	Wait:  lock(b); if *addr != expected { unlock; return }; enqueue; unlock; sleep
//	Wake:  lock(b); dequeue up to n; unlock; signal each
//
// Memory: queues are created on first Wait for an address and deleted as soon
// as they drain, so a Table never accumulates entries for idle words.
//
// The zero value is ready to use. A Table must not be copied after first use.
//
// Thread Safety: All methods are safe for concurrent use.
type Table struct {
	buckets [numBuckets]bucket
}

// bucket is one hash slot of a Table.
type bucket struct {
	mu     sync.Mutex
	queues map[*atomic.Uint32][]chan struct{}

	// Padding to keep neighbouring bucket locks off the same cache line.
	_ [64]byte
}

// hash maps a word address to a bucket index.
//
// Multiplicative hashing with the 64-bit golden ratio constant spreads
// sequential addresses (adjacent fields, array elements) evenly; the top
// bits carry the best mixing.
//
//go:nosplit
func hash(addr uintptr) uint64 {
	const goldenRatio = 0x9E3779B97F4A7C15
	return (uint64(addr) * goldenRatio) >> (64 - 8)
}

func (t *Table) bucketFor(addr *atomic.Uint32) *bucket {
	//nolint:gosec // G103: the address is only used as a hash key
	return &t.buckets[hash(uintptr(unsafe.Pointer(addr)))&(numBuckets-1)]
}

// Wait blocks until woken by Wake on addr, provided *addr == expected when
// checked under the bucket lock. Returns immediately otherwise.
func (t *Table) Wait(addr *atomic.Uint32, expected uint32) {
	b := t.bucketFor(addr)

	b.mu.Lock()
	if addr.Load() != expected {
		b.mu.Unlock()
		return
	}
	if b.queues == nil {
		b.queues = make(map[*atomic.Uint32][]chan struct{})
	}
	ready := make(chan struct{})
	b.queues[addr] = append(b.queues[addr], ready)
	b.mu.Unlock()

	<-ready
}

// Wake wakes up to n goroutines waiting on addr, oldest first, and returns
// how many were woken.
func (t *Table) Wake(addr *atomic.Uint32, n int) int {
	b := t.bucketFor(addr)

	b.mu.Lock()
	queue := b.queues[addr]
	if n > len(queue) {
		n = len(queue)
	}
	woken := queue[:n]
	if rest := queue[n:]; len(rest) == 0 {
		delete(b.queues, addr)
	} else {
		b.queues[addr] = rest
	}
	b.mu.Unlock()

	for _, ready := range woken {
		close(ready)
	}
	return n
}

// Waiters returns the number of goroutines currently queued on addr.
func (t *Table) Waiters(addr *atomic.Uint32) int {
	b := t.bucketFor(addr)

	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[addr])
}
