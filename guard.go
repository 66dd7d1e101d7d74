package joinable

import (
	"errors"
	"sync/atomic"
)

// Guard borrows a [*Handle] and joins it on [Guard.Release] if it is
// still joinable. It never owns the handle: other code may join or
// detach it first, and Release then does nothing.
//
// The intended shape is a defer immediately after the spawn, so the join
// happens on every exit path from the scope, including panics:
//
//	h, err := joinable.Spawn(work)
//	if err != nil {
//	    return err
//	}
//	defer joinable.NewGuard(h).Release()
//
// A Guard must not outlive its handle's other borrowers' expectations:
// the caller is responsible for keeping the handle alive for the guard's
// lifetime. Guards must not be copied; a duplicated guard would race to
// double-join.
type Guard struct {
	noCopy noCopy

	h        *Handle
	released atomic.Bool
}

// NewGuard creates a guard over h. The handle need not be joinable; a
// guard over a nil or already-resolved handle is a valid no-op guard.
func NewGuard(h *Handle) *Guard {
	return &Guard{h: h}
}

// Release joins the borrowed handle if it is still joinable, blocking
// until the spawned function returns. It is idempotent: only the first
// call does anything.
//
// If the spawned function panicked, Release re-panics with the captured
// [*PanicError]. Release runs from cleanup paths with no caller to hand
// an error to; swallowing a task panic there would compound one bug with
// another. If Release runs during an unwind that is itself a panic, the
// runtime reports both, which is the intended outcome for a double fault.
func (g *Guard) Release() {
	if !g.released.CompareAndSwap(false, true) {
		return
	}
	if !g.h.Joinable() {
		return
	}

	err := g.h.Join()
	if err == nil || errors.Is(err, ErrNotJoinable) {
		// Losing a join race to an external caller leaves nothing
		// for the guard to do.
		return
	}

	var pe *PanicError
	if errors.As(err, &pe) {
		panic(pe)
	}
	panic(err)
}

// noCopy triggers go vet's copylocks check when embedded in a struct
// that must not be copied.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
