package joinable

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/google/uuid"
)

// Thread is a move-only owner of at most one [*Handle]. The zero value
// is a valid empty Thread. It generalizes [ScopedThread]: it may be
// empty, it may be reassigned, and ownership can be moved between
// instances, but it upholds the same guarantee that destruction-time
// [Thread.Close] never abandons a joinable handle.
//
// The single-slot invariant: a Thread never holds two live associations.
// Every assignment ([Thread.Adopt], [Thread.Transfer]) first joins
// whatever the Thread currently holds, blocking the assigning caller
// until that prior execution unit finishes.
//
// Methods are safe for concurrent use on one instance. [Thread.Swap]
// locks both sides in address order and survives overlapping swaps of
// the same pair; [Thread.Transfer] moves the handle out of the source
// before touching the destination, so neither two-instance operation can
// deadlock. A Thread, like the handle it owns, is still meant to have
// one owner at a time: interleaving two-instance operations over the
// same instances gives unspecified (but join-safe) pairings.
type Thread struct {
	mu sync.Mutex
	h  *Handle
}

// NewThread spawns fn on a new execution unit and returns a Thread
// owning it. Spawn failures ([*SpawnError]) are passed through and no
// Thread is produced.
func NewThread(fn func(), opts ...SpawnOption) (*Thread, error) {
	h, err := Spawn(fn, opts...)
	if err != nil {
		return nil, err
	}
	return &Thread{h: h}, nil
}

// AdoptHandle returns a Thread owning h. Unlike [NewScopedThread] there
// is no joinability precondition: adopting a nil or already-resolved
// handle yields an empty Thread.
func AdoptHandle(h *Handle) *Thread {
	return &Thread{h: h}
}

// Adopt assigns h to the Thread. If the Thread currently holds a
// joinable handle it is joined first, blocking until that execution
// unit finishes; h is adopted regardless of the prior join's outcome.
//
// The returned error is the prior join's result: nil normally, or the
// prior task's [*PanicError] if it panicked. The adopted handle is
// unaffected by that error.
func (t *Thread) Adopt(h *Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.joinCurrent()
	t.h = h
	return err
}

// Transfer moves ownership of from's handle into t, leaving from empty.
// If t currently holds a joinable handle it is joined first, exactly as
// in [Thread.Adopt]; the returned error is that prior join's result.
// Transferring from a Thread to itself is a no-op.
func (t *Thread) Transfer(from *Thread) error {
	if t == from {
		return nil
	}

	from.mu.Lock()
	h := from.h
	from.h = nil
	from.mu.Unlock()

	return t.Adopt(h)
}

// Release moves the held handle out of the Thread, which becomes empty.
// The caller assumes the join obligation for the returned handle, which
// may be nil if the Thread was already empty.
func (t *Thread) Release() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.h
	t.h = nil
	return h
}

// Join blocks until the owned execution unit finishes and empties the
// Thread. Fails with [ErrNotJoinable] if the Thread is empty or its
// handle was already resolved. Returns the task's [*PanicError] if the
// spawned function panicked; the join still counts and the Thread is
// still emptied.
func (t *Thread) Join() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.h.Joinable() {
		// A handle resolved behind the wrapper's back is dead weight;
		// drop it so the Thread reads as empty.
		t.h = nil
		return ErrNotJoinable
	}
	err := t.h.Join()
	t.h = nil
	return err
}

// Detach hands the owned execution unit off to the runtime and empties
// the Thread; there is no further join obligation. Fails with
// [ErrNotJoinable] if the Thread is empty or its handle was already
// resolved.
func (t *Thread) Detach() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.h.Detach(); err != nil {
		t.h = nil
		return err
	}
	t.h = nil
	return nil
}

// Joinable reports whether the Thread holds a joinable handle.
func (t *Thread) Joinable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.h.Joinable()
}

// ID returns the held handle's identity, or uuid.Nil when empty.
func (t *Thread) ID() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.h.ID()
}

// Name returns the held handle's name, or "" when empty.
func (t *Thread) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.h.Name()
}

// Swap exchanges the handles held by t and other. Neither side is
// joined: both join obligations survive, just under swapped owners.
// Swapping a Thread with itself is a no-op.
//
// Both locks are taken in address order, so overlapping swaps of the
// same pair from different goroutines cannot deadlock.
func (t *Thread) Swap(other *Thread) {
	if t == other {
		return
	}

	first, second := t, other
	if uintptr(unsafe.Pointer(first)) > uintptr(unsafe.Pointer(second)) {
		first, second = second, first
	}

	first.mu.Lock()
	second.mu.Lock()
	t.h, other.h = other.h, t.h
	second.mu.Unlock()
	first.mu.Unlock()
}

// Close joins the owned handle if it is still joinable, then empties the
// Thread. An empty or already-resolved Thread closes as a no-op. Close
// re-panics the task's captured [*PanicError], if any, following the
// same cleanup policy as [Guard.Release].
func (t *Thread) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.joinCurrent()
	if err == nil {
		return nil
	}

	var pe *PanicError
	if errors.As(err, &pe) {
		panic(pe)
	}
	return err
}

// joinCurrent joins the held handle if joinable and empties the slot.
// Caller holds mu. Returns nil when there was nothing to join.
func (t *Thread) joinCurrent() error {
	if !t.h.Joinable() {
		t.h = nil
		return nil
	}

	err := t.h.Join()
	t.h = nil
	if errors.Is(err, ErrNotJoinable) {
		// Lost a join race to an external caller of the raw handle;
		// nothing left to wait for.
		return nil
	}
	return err
}
