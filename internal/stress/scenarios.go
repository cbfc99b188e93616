package stress

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/sourcegraph/conc"

	"github.com/kolkov/synckit/arc"
	"github.com/kolkov/synckit/condvar"
	"github.com/kolkov/synckit/internal/park"
	"github.com/kolkov/synckit/mutex"
	"github.com/kolkov/synckit/oneshot"
	"github.com/kolkov/synckit/rwlock"
	"github.com/kolkov/synckit/spinlock"
)

// maxChannels caps the oneshot scenario, which spawns a goroutine per
// channel.
const maxChannels = 10_000

// Scenarios returns every registered scenario.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "spinlock", Run: SpinLockCounter},
		{Name: "mutex", Run: MutexCounter},
		{Name: "condvar", Run: CondvarHandoff},
		{Name: "rwlock", Run: RwLockConsistency},
		{Name: "oneshot", Run: OneshotRoundTrip},
		{Name: "arc", Run: ArcLifecycle},
	}
}

// spawn runs fn on p.Threads workers and converts a worker panic into an
// error.
func spawn(p Params, fn func(worker int)) error {
	var wg conc.WaitGroup
	for w := range p.Threads {
		wg.Go(func() { fn(w) })
	}
	if r := wg.WaitAndRecover(); r != nil {
		return fmt.Errorf("worker panicked: %w", r.AsError())
	}
	return nil
}

// SpinLockCounter increments a SpinLock-protected counter from every worker
// and checks no increment was lost.
func SpinLockCounter(ctx context.Context, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := spinlock.New(0)
	err := spawn(p, func(int) {
		for range p.Iterations {
			g := lock.Lock()
			*g.Value()++
			g.Unlock()
		}
	})
	if err != nil {
		return err
	}

	g := lock.Lock()
	defer g.Unlock()
	return expectCount(*g.Value(), p.Threads*p.Iterations)
}

// MutexCounter is SpinLockCounter over a Mutex.
func MutexCounter(ctx context.Context, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mutex.New(0)
	err := spawn(p, func(int) {
		for range p.Iterations {
			g := m.Lock()
			*g.Value()++
			g.Unlock()
		}
	})
	if err != nil {
		return err
	}

	g := m.Lock()
	defer g.Unlock()
	return expectCount(*g.Value(), p.Threads*p.Iterations)
}

func expectCount(got, want int) error {
	if got != want {
		return fmt.Errorf("counter is %d, want %d: lost updates", got, want)
	}
	return nil
}

// queue is the state guarded by the condvar scenario's mutex.
type queue struct {
	pending  int
	consumed int
}

// CondvarHandoff has every worker produce items that a single consumer
// collects through a condition variable. A lost notification leaves the
// consumer waiting with items pending, which shows up as a hang.
func CondvarHandoff(ctx context.Context, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	total := p.Threads * p.Iterations
	m := mutex.New(queue{})
	cv := condvar.New()

	var wg conc.WaitGroup
	wg.Go(func() {
		g := m.Lock()
		for g.Value().consumed < total {
			for g.Value().pending == 0 {
				g = condvar.Wait(cv, g)
			}
			g.Value().consumed += g.Value().pending
			g.Value().pending = 0
		}
		g.Unlock()
	})

	err := spawn(p, func(int) {
		for range p.Iterations {
			g := m.Lock()
			g.Value().pending++
			g.Unlock()
			cv.NotifyOne()
		}
	})
	if r := wg.WaitAndRecover(); r != nil {
		return fmt.Errorf("consumer panicked: %w", r.AsError())
	}
	if err != nil {
		return err
	}

	g := m.Lock()
	defer g.Unlock()
	if g.Value().consumed != total {
		return fmt.Errorf("consumed %d items, want %d", g.Value().consumed, total)
	}
	return nil
}

// pair is written as a unit; a reader that sees a != b observed a write in
// progress.
type pair struct {
	a, b int
}

// RwLockConsistency splits the workers into readers and writers. Writers
// update both halves of a pair; readers must never see them differ.
func RwLockConsistency(ctx context.Context, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	writers := max(p.Threads/2, 1)
	l := rwlock.New(pair{})

	var torn atomic.Int64
	err := spawn(p, func(w int) {
		for range p.Iterations {
			if w < writers {
				g := l.Write()
				g.Value().a++
				g.Value().b++
				g.Unlock()
				continue
			}
			g := l.Read()
			if v := g.Value(); v.a != v.b {
				torn.Add(1)
			}
			g.Unlock()
		}
	})
	if err != nil {
		return err
	}

	if n := torn.Load(); n > 0 {
		return fmt.Errorf("readers observed %d torn writes", n)
	}

	g := l.Read()
	defer g.Unlock()
	return expectCount(g.Value().a, writers*p.Iterations)
}

// OneshotRoundTrip sends one value through each of many channels, each
// from a fresh goroutine, and checks every value arrives intact.
func OneshotRoundTrip(ctx context.Context, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	perWorker := min(p.Iterations, max(maxChannels/p.Threads, 1))

	var mismatched atomic.Int64
	err := spawn(p, func(w int) {
		defer park.Forget()

		for i := range perWorker {
			want := w*perWorker + i
			tx, rx := oneshot.New[int]()
			go tx.Send(want)
			if rx.Receive() != want {
				mismatched.Add(1)
			}
			rx.Close()
		}
	})
	if err != nil {
		return err
	}

	if n := mismatched.Load(); n > 0 {
		return fmt.Errorf("%d channels delivered the wrong value", n)
	}
	return nil
}

// tracked counts its drops.
type tracked struct {
	drops *atomic.Int64
}

func (t tracked) Drop() {
	t.drops.Add(1)
}

// ArcLifecycle clones, downgrades, upgrades and releases handles to one
// shared value from every worker, then checks the value was destroyed and
// its allocation freed exactly once.
func ArcLifecycle(ctx context.Context, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var arena arc.Arena
	var drops atomic.Int64
	root := arc.NewIn(&arena, tracked{drops: &drops})

	err := spawn(p, func(int) {
		for range p.Iterations {
			s := root.Clone()
			w := s.Downgrade()
			s.Release()
			if u, ok := w.Upgrade(); ok {
				u.Release()
			}
			w.Release()
		}
	})
	if err != nil {
		root.Release()
		return err
	}

	var merr *multierror.Error
	if n := root.StrongCount(); n != 1 {
		merr = multierror.Append(merr, fmt.Errorf("strong count is %d after workers finished, want 1", n))
	}
	if n := root.WeakCount(); n != 0 {
		merr = multierror.Append(merr, fmt.Errorf("weak count is %d after workers finished, want 0", n))
	}
	root.Release()

	stats := arena.Stats()
	if n := drops.Load(); n != 1 {
		merr = multierror.Append(merr, fmt.Errorf("value dropped %d times, want 1", n))
	}
	if stats.Destroyed != 1 || stats.Freed != 1 || stats.Live() != 0 {
		merr = multierror.Append(merr, fmt.Errorf("arena stats %+v, want one allocation destroyed and freed", stats))
	}
	return merr.ErrorOrNil()
}
