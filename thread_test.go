package joinable_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baxromumarov/joinable"
	"github.com/google/uuid"
)

func TestThreadZeroValueEmpty(t *testing.T) {
	var th joinable.Thread

	if th.Joinable() {
		t.Fatal("zero Thread must not be joinable")
	}
	if err := th.Join(); !errors.Is(err, joinable.ErrNotJoinable) {
		t.Fatalf("empty Join: expected ErrNotJoinable, got %v", err)
	}
	if err := th.Detach(); !errors.Is(err, joinable.ErrNotJoinable) {
		t.Fatalf("empty Detach: expected ErrNotJoinable, got %v", err)
	}
	if got := th.ID(); got != uuid.Nil {
		t.Fatalf("empty ID: expected uuid.Nil, got %v", got)
	}
	if err := th.Close(); err != nil {
		t.Fatalf("empty Close: %v", err)
	}
}

func TestThreadSpawnJoinCounter(t *testing.T) {
	var counter atomic.Int64

	th, err := joinable.NewThread(func() {
		for i := 0; i < 1000; i++ {
			counter.Add(1)
		}
	})
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}

	if err := th.Join(); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := counter.Load(); got != 1000 {
		t.Fatalf("expected counter 1000 after join, got %d", got)
	}
	if th.Joinable() {
		t.Fatal("Thread must be empty after join")
	}
}

func TestThreadAdoptJoinsPrior(t *testing.T) {
	release := make(chan struct{})
	var firstDone atomic.Bool

	th, err := joinable.NewThread(func() {
		<-release
		firstDone.Store(true)
	})
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}

	h2, err := joinable.Spawn(func() {})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	adopted := make(chan struct{})
	go func() {
		if err := th.Adopt(h2); err != nil {
			t.Errorf("Adopt: %v", err)
		}
		close(adopted)
	}()

	// Adopt must block on the prior association's join.
	select {
	case <-adopted:
		t.Fatal("Adopt returned while the prior execution unit was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-adopted:
	case <-time.After(2 * time.Second):
		t.Fatal("Adopt never completed after the prior unit finished")
	}

	if !firstDone.Load() {
		t.Fatal("prior execution unit was not joined before adoption")
	}
	if th.ID() != h2.ID() {
		t.Fatal("Thread must hold the adopted handle")
	}
	if err := th.Join(); err != nil {
		t.Fatalf("Join adopted: %v", err)
	}
}

func TestThreadTransferLeavesSourceEmpty(t *testing.T) {
	src, err := joinable.NewThread(func() {}, joinable.WithName("moved"))
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	id := src.ID()

	var dst joinable.Thread
	if err := dst.Transfer(src); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if src.Joinable() {
		t.Fatal("source must be empty after transfer")
	}
	if dst.ID() != id {
		t.Fatal("destination must hold exactly the original association")
	}
	if dst.Name() != "moved" {
		t.Fatalf("expected name %q, got %q", "moved", dst.Name())
	}
	if err := dst.Join(); err != nil {
		t.Fatalf("Join after transfer: %v", err)
	}
}

func TestThreadTransferSelfNoop(t *testing.T) {
	th, err := joinable.NewThread(func() {})
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	defer th.Close()

	if err := th.Transfer(th); err != nil {
		t.Fatalf("self Transfer: %v", err)
	}
	if !th.Joinable() {
		t.Fatal("self transfer must not disturb the association")
	}
}

func TestThreadReleaseMovesHandleOut(t *testing.T) {
	th, err := joinable.NewThread(func() {})
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}

	h := th.Release()
	if h == nil || !h.Joinable() {
		t.Fatal("Release must return the live handle")
	}
	if th.Joinable() {
		t.Fatal("Thread must be empty after Release")
	}
	if err := h.Join(); err != nil {
		t.Fatalf("Join released handle: %v", err)
	}

	if th.Release() != nil {
		t.Fatal("Release on an empty Thread must return nil")
	}
}

func TestThreadDetach(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	th, err := joinable.NewThread(func() { <-release })
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}

	if err := th.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if th.Joinable() {
		t.Fatal("Thread must be empty after detach")
	}
	if err := th.Join(); !errors.Is(err, joinable.ErrNotJoinable) {
		t.Fatalf("Join after Detach: expected ErrNotJoinable, got %v", err)
	}
	if err := th.Detach(); !errors.Is(err, joinable.ErrNotJoinable) {
		t.Fatalf("second Detach: expected ErrNotJoinable, got %v", err)
	}
}

func TestThreadSwap(t *testing.T) {
	a, err := joinable.NewThread(func() {}, joinable.WithName("a"))
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	b, err := joinable.NewThread(func() {}, joinable.WithName("b"))
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	defer a.Close()
	defer b.Close()

	idA, idB := a.ID(), b.ID()
	a.Swap(b)

	if a.ID() != idB || b.ID() != idA {
		t.Fatal("Swap must exchange the held handles")
	}
	if !a.Joinable() || !b.Joinable() {
		t.Fatal("Swap must not resolve either association")
	}

	a.Swap(a) // self-swap is a no-op
	if a.ID() != idB {
		t.Fatal("self swap must not disturb the handle")
	}
}

func TestThreadSwapConcurrentOppositeOrder(t *testing.T) {
	a, err := joinable.NewThread(func() {}, joinable.WithName("a"))
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	b, err := joinable.NewThread(func() {}, joinable.WithName("b"))
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}

	// Hammer the same pair from both directions; conflicting lock
	// orders would park both goroutines forever.
	const iterations = 10000
	done := make(chan struct{}, 2)
	go func() {
		for i := 0; i < iterations; i++ {
			a.Swap(b)
		}
		done <- struct{}{}
	}()
	go func() {
		for i := 0; i < iterations; i++ {
			b.Swap(a)
		}
		done <- struct{}{}
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("concurrent opposite-direction swaps deadlocked")
		}
	}

	// Both join obligations must have survived the shuffling.
	if !a.Joinable() || !b.Joinable() {
		t.Fatal("swapping must not resolve either association")
	}
	if err := a.Join(); err != nil {
		t.Fatalf("Join a: %v", err)
	}
	if err := b.Join(); err != nil {
		t.Fatalf("Join b: %v", err)
	}
}

func TestThreadSwapWithEmpty(t *testing.T) {
	th, err := joinable.NewThread(func() {})
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	id := th.ID()

	var empty joinable.Thread
	th.Swap(&empty)

	if th.Joinable() {
		t.Fatal("swapped-out Thread must be empty")
	}
	if empty.ID() != id {
		t.Fatal("empty side must receive the handle")
	}
	if err := empty.Join(); err != nil {
		t.Fatalf("Join after swap: %v", err)
	}
}

func TestThreadAdoptReportsPriorPanic(t *testing.T) {
	th, err := joinable.NewThread(func() { panic("prior failed") })
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}

	h2, err := joinable.Spawn(func() {})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	err = th.Adopt(h2)
	var pe *joinable.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected prior join's *PanicError, got %v", err)
	}

	// The adoption itself still happened.
	if th.ID() != h2.ID() {
		t.Fatal("Thread must hold the new handle despite the prior panic")
	}
	if err := th.Join(); err != nil {
		t.Fatalf("Join adopted: %v", err)
	}
}

func TestThreadCloseJoins(t *testing.T) {
	var ran atomic.Bool

	th, err := joinable.NewThread(func() { ran.Store(true) })
	if err != nil {
		t.Fatalf("NewThread: %v", err)
	}
	if err := th.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ran.Load() {
		t.Fatal("Close returned before the spawned function finished")
	}
	if err := th.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestThreadAdoptNonJoinableHandle(t *testing.T) {
	h, err := joinable.Spawn(func() {})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := h.Join(); err != nil {
		t.Fatalf("Join: %v", err)
	}

	th := joinable.AdoptHandle(h)
	if th.Joinable() {
		t.Fatal("adopting a resolved handle must yield an empty Thread")
	}
	if err := th.Join(); !errors.Is(err, joinable.ErrNotJoinable) {
		t.Fatalf("expected ErrNotJoinable, got %v", err)
	}
}

func TestThreadDropsExternallyResolvedHandle(t *testing.T) {
	h, err := joinable.Spawn(func() {})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	th := joinable.AdoptHandle(h)

	// Resolve the handle behind the wrapper's back.
	if err := h.Join(); err != nil {
		t.Fatalf("external Join: %v", err)
	}

	if err := th.Join(); !errors.Is(err, joinable.ErrNotJoinable) {
		t.Fatalf("wrapper Join: expected ErrNotJoinable, got %v", err)
	}
	// The dead handle must be dropped, leaving the Thread empty.
	if got := th.ID(); got != uuid.Nil {
		t.Fatalf("expected empty Thread after failed join, ID is %v", got)
	}

	h2, err := joinable.Spawn(func() {})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	th2 := joinable.AdoptHandle(h2)
	if err := h2.Detach(); err != nil {
		t.Fatalf("external Detach: %v", err)
	}
	if err := th2.Detach(); !errors.Is(err, joinable.ErrNotJoinable) {
		t.Fatalf("wrapper Detach: expected ErrNotJoinable, got %v", err)
	}
	if got := th2.ID(); got != uuid.Nil {
		t.Fatalf("expected empty Thread after failed detach, ID is %v", got)
	}
}
