package mutex

import (
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutex_Uncontended(t *testing.T) {
	m := New(0)

	for i := 0; i < 5_000; i++ {
		g := m.Lock()
		*g.Value()++
		g.Unlock()
	}

	g := m.Lock()
	defer g.Unlock()
	assert.Equal(t, 5_000, *g.Value())
	assert.Equal(t, locked, m.state.Load(), "uncontended lock must not mark waiters")
}

// TestMutex_Contended is the N×K counter property: 10 goroutines each
// incrementing 5,000,000 times must end at exactly 50,000,000.
func TestMutex_Contended(t *testing.T) {
	workers, iterations := 10, 5_000_000
	if testing.Short() {
		iterations = 50_000
	}

	m := New(0)

	var wg conc.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			for i := 0; i < iterations; i++ {
				g := m.Lock()
				*g.Value()++
				g.Unlock()
			}
		})
	}
	wg.Wait()

	g := m.Lock()
	defer g.Unlock()
	assert.Equal(t, workers*iterations, *g.Value())
}

// TestMutex_BlocksUntilUnlock verifies a second Lock waits for the holder.
func TestMutex_BlocksUntilUnlock(t *testing.T) {
	m := New("")
	g := m.Lock()

	acquired := make(chan string)
	go func() {
		g2 := m.Lock()
		v := *g2.Value()
		g2.Unlock()
		acquired <- v
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock succeeded while the mutex was held")
	case <-time.After(20 * time.Millisecond):
	}

	*g.Value() = "written by holder"
	g.Unlock()

	select {
	case v := <-acquired:
		assert.Equal(t, "written by holder", v, "waiter must observe the holder's write")
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never acquired the mutex after Unlock")
	}

	assert.Equal(t, unlocked, m.state.Load())
}

// TestMutex_WaitersState verifies a parked waiter moves the word to
// lockedWithWaiters.
func TestMutex_WaitersState(t *testing.T) {
	m := New(0)
	g := m.Lock()

	done := make(chan struct{})
	go func() {
		m.Lock().Unlock()
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for m.state.Load() != lockedWithWaiters {
		require.False(t, time.Now().After(deadline), "waiter never announced itself")
		time.Sleep(time.Millisecond)
	}

	g.Unlock()
	<-done
	assert.Equal(t, unlocked, m.state.Load())
}

func TestMutex_TryLock(t *testing.T) {
	m := New(1)

	g, ok := m.TryLock()
	require.True(t, ok)

	_, ok = m.TryLock()
	assert.False(t, ok, "TryLock on a held mutex must fail")

	g.Unlock()
	g, ok = m.TryLock()
	require.True(t, ok)
	assert.Same(t, m, g.Mutex())
	g.Unlock()
}

func TestMutex_UnlockUnlocked(t *testing.T) {
	m := New(0)
	g := m.Lock()
	g.Unlock()

	assert.PanicsWithValue(t, "mutex: unlock of unlocked Mutex", func() {
		g.Unlock()
	})
}

func BenchmarkMutex_Uncontended(b *testing.B) {
	m := New(0)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g := m.Lock()
		*g.Value()++
		g.Unlock()
	}
}

func BenchmarkMutex_Parallel(b *testing.B) {
	m := New(0)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			g := m.Lock()
			*g.Value()++
			g.Unlock()
		}
	})
}
