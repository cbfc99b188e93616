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

// TestBackend verifies the backend name is one of the documented values.
func TestBackend(t *testing.T) {
	switch b := Backend(); b {
	case "futex", "emulated":
	default:
		t.Errorf("Backend() = %q, want \"futex\" or \"emulated\"", b)
	}
}

// TestWait_ValueChanged verifies Wait returns at once for a stale expectation.
func TestWait_ValueChanged(t *testing.T) {
	var word atomic.Uint32
	word.Store(1)

	done := make(chan struct{})
	go func() {
		Wait(&word, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait blocked although the value differed")
	}
}

// TestWakeOne_Handoff passes a token back and forth through one word.
func TestWakeOne_Handoff(t *testing.T) {
	var word atomic.Uint32
	const rounds = 1000

	var wg sync.WaitGroup
	wg.Add(2)

	// Each side waits for its parity, then flips it.
	player := func(mine uint32) {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			for {
				v := word.Load()
				if v%2 == mine {
					break
				}
				Wait(&word, v)
			}
			word.Add(1)
			WakeOne(&word)
		}
	}
	go player(0)
	go player(1)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatalf("handoff stalled at %d", word.Load())
	}

	if got := word.Load(); got != 2*rounds {
		t.Errorf("word = %d, want %d", got, 2*rounds)
	}
}

// TestWakeAll_ReleasesEveryone releases a crowd blocked on a gate.
func TestWakeAll_ReleasesEveryone(t *testing.T) {
	var gate atomic.Uint32
	const n = 8

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for gate.Load() == 0 {
				Wait(&gate, 0)
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	gate.Store(1)
	WakeAll(&gate)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("not every waiter was released by WakeAll")
	}
}
