// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package futex

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// waitForWaiters polls until n goroutines are queued on addr.
func waitForWaiters(t *testing.T, tab *Table, addr *atomic.Uint32, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for tab.Waiters(addr) != n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d waiters, have %d", n, tab.Waiters(addr))
		}
		time.Sleep(time.Millisecond)
	}
}

// TestTable_WaitValueChanged verifies Wait does not block on a stale value.
func TestTable_WaitValueChanged(t *testing.T) {
	var tab Table
	var word atomic.Uint32
	word.Store(7)

	done := make(chan struct{})
	go func() {
		tab.Wait(&word, 3) // 7 != 3
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait blocked although the value differed")
	}

	if n := tab.Waiters(&word); n != 0 {
		t.Errorf("Waiters() = %d after immediate return, want 0", n)
	}
}

// TestTable_WakeOne verifies WakeOne releases exactly one waiter, oldest first.
func TestTable_WakeOne(t *testing.T) {
	var tab Table
	var word atomic.Uint32

	order := make(chan int, 2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			tab.Wait(&word, 0)
			order <- i
		}(i)
		waitForWaiters(t, &tab, &word, i+1)
	}

	if n := tab.Wake(&word, 1); n != 1 {
		t.Fatalf("Wake(1) woke %d, want 1", n)
	}
	if got := <-order; got != 0 {
		t.Errorf("first woken waiter = %d, want 0 (FIFO)", got)
	}
	if n := tab.Waiters(&word); n != 1 {
		t.Errorf("Waiters() = %d after one wake, want 1", n)
	}

	if n := tab.Wake(&word, 1); n != 1 {
		t.Fatalf("second Wake(1) woke %d, want 1", n)
	}
	if got := <-order; got != 1 {
		t.Errorf("second woken waiter = %d, want 1", got)
	}
}

// TestTable_WakeAll verifies Wake with a large count drains the queue.
func TestTable_WakeAll(t *testing.T) {
	var tab Table
	var word atomic.Uint32
	const n = 16

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			tab.Wait(&word, 0)
		}()
	}
	waitForWaiters(t, &tab, &word, n)

	if woken := tab.Wake(&word, 1<<30); woken != n {
		t.Errorf("Wake(all) woke %d, want %d", woken, n)
	}
	wg.Wait()

	if w := tab.Waiters(&word); w != 0 {
		t.Errorf("Waiters() = %d after wake all, want 0", w)
	}
}

// TestTable_WakeNoWaiters verifies waking an idle word is a no-op.
func TestTable_WakeNoWaiters(t *testing.T) {
	var tab Table
	var word atomic.Uint32

	if n := tab.Wake(&word, 1); n != 0 {
		t.Errorf("Wake() on idle word woke %d, want 0", n)
	}
}

// TestTable_IndependentWords verifies waking one word leaves others asleep.
func TestTable_IndependentWords(t *testing.T) {
	var tab Table
	words := make([]atomic.Uint32, 2)

	done := make(chan int, 2)
	for i := range words {
		go func(i int) {
			tab.Wait(&words[i], 0)
			done <- i
		}(i)
		waitForWaiters(t, &tab, &words[i], 1)
	}

	tab.Wake(&words[1], 1)
	if got := <-done; got != 1 {
		t.Fatalf("woke waiter on word %d, want 1", got)
	}
	if n := tab.Waiters(&words[0]); n != 1 {
		t.Errorf("word 0 has %d waiters, want 1", n)
	}

	tab.Wake(&words[0], 1)
	<-done
}

// TestTable_NoLostWakeup runs the canonical check-then-wait loop under load.
func TestTable_NoLostWakeup(t *testing.T) {
	var tab Table
	var word atomic.Uint32
	const rounds = 2000

	done := make(chan struct{})
	go func() {
		for want := uint32(1); want <= rounds; want++ {
			for {
				v := word.Load()
				if v >= want {
					break
				}
				tab.Wait(&word, v)
			}
		}
		close(done)
	}()

	for i := 0; i < rounds; i++ {
		word.Add(1)
		tab.Wake(&word, 1)
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("waiter never observed the final value (lost wakeup)")
	}
}

// TestHash_Range verifies bucket indices stay inside the table.
func TestHash_Range(t *testing.T) {
	for addr := uintptr(0); addr < 1<<16; addr += 4 {
		if h := hash(addr); h >= numBuckets {
			t.Fatalf("hash(%#x) = %d, out of range", addr, h)
		}
	}
}

func BenchmarkTable_WakeIdle(b *testing.B) {
	var tab Table
	var word atomic.Uint32
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tab.Wake(&word, 1)
	}
}
