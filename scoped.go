package joinable

import (
	"errors"
	"sync"
)

// ScopedThread owns a [*Handle] for the duration of a scope and joins it
// unconditionally on [ScopedThread.Close]. Unlike [Guard] it takes
// ownership, and unlike [Thread] it cannot be emptied, reassigned, or
// moved: from construction to Close it always holds one joinable handle.
//
//	h, err := joinable.Spawn(work)
//	if err != nil {
//	    return err
//	}
//	st, err := joinable.NewScopedThread(h)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
type ScopedThread struct {
	noCopy noCopy

	h    *Handle
	once sync.Once
	err  error
}

// NewScopedThread takes ownership of h. It fails with [ErrInvalidHandle]
// if h is nil or not joinable: an owner whose only job is an
// unconditional join cannot accept a handle with nothing to join.
// On failure no object is produced and h is untouched.
func NewScopedThread(h *Handle) (*ScopedThread, error) {
	if !h.Joinable() {
		return nil, ErrInvalidHandle
	}
	return &ScopedThread{h: h}, nil
}

// Close joins the owned handle, blocking until the spawned function
// returns. It is idempotent; subsequent calls return the same result
// without blocking.
//
// The constructor invariant guarantees the handle is joinable here
// unless external code joined it behind the owner's back, which is a
// caller contract violation and reported as [ErrNotJoinable]. If the
// spawned function panicked, Close re-panics with the captured
// [*PanicError] (same policy as [Guard.Release]).
func (st *ScopedThread) Close() error {
	st.once.Do(func() {
		st.err = st.h.Join()
	})

	var pe *PanicError
	if st.err != nil && errors.As(st.err, &pe) {
		panic(pe)
	}
	return st.err
}

// Handle returns the owned handle for observation (ID, name,
// joinability). Ownership stays with the ScopedThread; calling Join or
// Detach on the returned handle violates the owner's invariant.
func (st *ScopedThread) Handle() *Handle {
	return st.h
}
