// Copyright 2025 The synckit Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goid

import (
	"sync"
	"testing"
)

// TestParse covers well-formed and malformed stack headers.
func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"simple", "goroutine 1 [running]:\n", 1},
		{"large", "goroutine 999999999 [running]:\n", 999999999},
		{"waiting", "goroutine 42 [chan receive]:", 42},
		{"empty", "", 0},
		{"short", "gorout", 0},
		{"wrong prefix", "thread 12 [running]:", 0},
		{"no digits", "goroutine [running]:", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parse([]byte(tt.input)); got != tt.want {
				t.Errorf("parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// TestParseAll verifies extraction of every header from a full dump.
func TestParseAll(t *testing.T) {
	dump := "goroutine 1 [running]:\nmain.main()\n\t/tmp/main.go:10 +0x20\n\n" +
		"goroutine 5 [chan receive]:\nmain.worker()\n\t/tmp/main.go:20 +0x40\n\n" +
		"goroutine 17 [select]:\n"

	got := parseAll([]byte(dump))
	want := []int64{1, 5, 17}

	if len(got) != len(want) {
		t.Fatalf("parseAll() returned %d ids, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseAll()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// TestID_Stable verifies the same goroutine always reports the same ID.
func TestID_Stable(t *testing.T) {
	first := ID()
	if first == 0 {
		t.Fatal("ID() returned 0 for the test goroutine")
	}
	for i := 0; i < 10; i++ {
		if got := ID(); got != first {
			t.Fatalf("ID() changed within one goroutine: %d then %d", first, got)
		}
	}
}

// TestID_Distinct verifies concurrently live goroutines get distinct IDs.
func TestID_Distinct(t *testing.T) {
	const n = 50

	ids := make([]int64, n)
	release := make(chan struct{})
	var ready, done sync.WaitGroup
	ready.Add(n)
	done.Add(n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer done.Done()
			ids[i] = ID()
			ready.Done()
			// Stay alive until every ID has been taken.
			<-release
		}(i)
	}

	ready.Wait()
	close(release)
	done.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		if id == 0 {
			t.Fatal("ID() returned 0")
		}
		if seen[id] {
			t.Errorf("duplicate goroutine id %d", id)
		}
		seen[id] = true
	}
}

// TestLive verifies Live reports the caller and a parked helper goroutine.
func TestLive(t *testing.T) {
	self := ID()

	helper := make(chan int64)
	stop := make(chan struct{})
	go func() {
		helper <- ID()
		<-stop
	}()
	other := <-helper
	defer close(stop)

	live := make(map[int64]bool)
	for _, id := range Live() {
		live[id] = true
	}

	if !live[self] {
		t.Errorf("Live() missing calling goroutine %d", self)
	}
	if !live[other] {
		t.Errorf("Live() missing helper goroutine %d", other)
	}
}

func BenchmarkID(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ID()
	}
}
