package joinable

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle states. A handle starts joinable and reaches exactly one of the
// two terminal states; every join/detach checks the tag first, so a
// double join is impossible.
const (
	stateJoinable int32 = iota
	stateJoined
	stateDetached
)

var errLimiterFull = errors.New("limiter has no free slot")

// Handle is a capability for one spawned execution unit. It is produced
// only by [Spawn]; a nil *Handle represents "no association" and is not
// joinable.
//
// A handle must be resolved exactly once, by [Handle.Join] or
// [Handle.Detach], before it is dropped. Dropping a still-joinable handle
// aborts the process once the garbage collector notices it: an unresolved
// join obligation is a program bug, not a condition to limp past. The
// wrappers in this package ([Guard], [ScopedThread], [Thread]) exist so
// that no code path can reach that abort.
//
// Concurrent Join/Detach calls on the same handle are serialized by the
// state tag: exactly one caller wins, the rest get [ErrNotJoinable].
type Handle struct {
	id   uuid.UUID
	name string

	state atomic.Int32
	done  chan struct{}

	// Written by the spawned goroutine before done is closed; the
	// channel close publishes it to joiners.
	panicErr *PanicError
}

// Spawn starts fn on a new goroutine and returns a joinable [*Handle]
// for it. Spawn panics if fn is nil.
//
// It fails with a [*SpawnError] when a limiter attached via [WithLimiter]
// has no free slot; no goroutine is started in that case.
//
// fn and anything it closes over are owned by the spawned goroutine from
// this point on; the caller's locals may go out of scope safely.
func Spawn(fn func(), opts ...SpawnOption) (*Handle, error) {
	if fn == nil {
		panic("joinable: Spawn requires non-nil fn")
	}

	var cfg spawnConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.limiter != nil && !cfg.limiter.acquire() {
		return nil, &SpawnError{Name: cfg.name, Cause: errLimiterFull}
	}

	h := &Handle{
		id:   uuid.New(),
		name: cfg.name,
		done: make(chan struct{}),
	}
	info := ThreadInfo{ID: h.id, Name: h.name}

	// Abandonment check: a handle collected while still joinable means
	// every owner dropped it without resolving the join. See abandon().
	runtime.SetFinalizer(h, (*Handle).abandon)

	Logger().Debug("spawned",
		zap.Stringer("id", h.id), zap.String("name", h.name))

	go func() {
		start := time.Now()

		if cfg.onStart != nil {
			cfg.onStart(info)
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					h.panicErr = newPanicError(r)
				}
			}()
			fn()
		}()

		if cfg.onExit != nil {
			// A panic here is intentionally unrecovered: an
			// observability hook must not panic.
			var hookErr error
			if h.panicErr != nil {
				hookErr = h.panicErr
			}
			cfg.onExit(info, hookErr, time.Since(start))
		}

		if cfg.limiter != nil {
			cfg.limiter.release()
		}

		close(h.done)
	}()

	return h, nil
}

// Join blocks until the spawned function returns, then reclaims the
// handle. It fails with [ErrNotJoinable] if the handle is nil, already
// joined, or detached. If the spawned function panicked, Join returns
// the captured [*PanicError].
//
// Join claims the handle before blocking: while one caller waits inside
// Join, [Handle.Joinable] already reports false and any concurrent
// Join/Detach fails.
func (h *Handle) Join() error {
	if h == nil || !h.state.CompareAndSwap(stateJoinable, stateJoined) {
		return ErrNotJoinable
	}
	runtime.SetFinalizer(h, nil)

	<-h.done

	Logger().Debug("joined",
		zap.Stringer("id", h.id), zap.String("name", h.name))

	if h.panicErr != nil {
		return h.panicErr
	}
	return nil
}

// Detach irrevocably hands the execution unit off to the runtime. The
// goroutine keeps running; nobody can wait for it anymore. Fails with
// [ErrNotJoinable] if the handle is nil, already joined, or detached.
func (h *Handle) Detach() error {
	if h == nil || !h.state.CompareAndSwap(stateJoinable, stateDetached) {
		return ErrNotJoinable
	}
	runtime.SetFinalizer(h, nil)

	Logger().Debug("detached",
		zap.Stringer("id", h.id), zap.String("name", h.name))

	return nil
}

// Joinable reports whether the handle may still be joined or detached.
// Safe on a nil handle, which is never joinable.
func (h *Handle) Joinable() bool {
	return h != nil && h.state.Load() == stateJoinable
}

// ID returns the handle's unique identity, or uuid.Nil for a nil handle.
func (h *Handle) ID() uuid.UUID {
	if h == nil {
		return uuid.Nil
	}
	return h.id
}

// Name returns the name given via [WithName], or "" for an unnamed or
// nil handle.
func (h *Handle) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}

// abandon runs as the handle's finalizer. Reaching it with the handle
// still joinable means the join obligation was dropped on the floor;
// that is exactly the hazard this package exists to prevent, so the
// process aborts instead of leaking the goroutine silently.
func (h *Handle) abandon() {
	if h.state.Load() != stateJoinable {
		return
	}
	Logger().Error("joinable handle abandoned without join or detach",
		zap.Stringer("id", h.id), zap.String("name", h.name))
	panic("joinable: handle abandoned while still joinable (missing Join or Detach)")
}
