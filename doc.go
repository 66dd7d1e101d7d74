// Package joinable provides ownership wrappers for goroutine lifecycles.
//
// A goroutine started with the go statement has no identity and cannot be
// waited on directly. [Spawn] starts a goroutine and returns a [*Handle],
// a move-only capability that must be resolved exactly once: either
// [Handle.Join] (block until it finishes) or [Handle.Detach] (hand it off
// to the runtime). A joinable handle that is simply dropped is a bug this
// package turns into a crash rather than a silent goroutine leak.
//
// # Handles
//
//	h, err := joinable.Spawn(work)
//	if err != nil {
//	    return err
//	}
//	defer joinable.NewGuard(h).Release()
//
// A handle is in exactly one of three states: joinable, joined, or
// detached. Join and Detach fail with [ErrNotJoinable] unless the handle
// is currently joinable, so a handle can never be joined twice.
//
// # Ownership wrappers
//
// Three wrappers encode who is responsible for the join:
//
//   - [Guard] borrows a handle and joins it on [Guard.Release] if still
//     joinable. It never owns the handle; pair it with defer so the join
//     happens on every exit path, including panics.
//   - [ScopedThread] owns a handle for the duration of a scope.
//     [NewScopedThread] rejects a non-joinable handle with
//     [ErrInvalidHandle]; [ScopedThread.Close] joins unconditionally.
//   - [Thread] is the full move-only wrapper: constructible empty,
//     from a function ([NewThread]), or from a handle ([AdoptHandle]).
//     Assignment via [Thread.Adopt] or [Thread.Transfer] joins whatever
//     the wrapper currently holds before accepting the new handle, so a
//     Thread never holds two live associations. [Thread.Release] moves
//     the handle out, leaving the wrapper empty.
//
// # Groups
//
// [Group] collects Threads and joins them all with [Group.JoinAll],
// aggregating failures via [errors.Join]. It is a container, not a pool:
// there is no queue and no worker reuse.
//
// # Panics
//
// A panic inside a spawned function is captured with its stack trace as a
// [*PanicError]. An explicit Join returns it as an ordinary error.
// Cleanup paths that have no caller to report to — [Guard.Release],
// [ScopedThread.Close], [Thread.Close] — re-panic it instead, so a task
// panic is never silently swallowed.
//
// # Spawn limits
//
// [Limiter] bounds the number of live execution units. Spawning under an
// exhausted limiter fails with [*SpawnError], mirroring how an OS reports
// thread-creation resource exhaustion. Slots are released when the
// spawned function returns.
//
// # Observability
//
// [WithName] names a handle for logs and errors. [WithOnStart] and
// [WithOnExit] register per-handle lifecycle hooks. Package-level debug
// logging goes through a no-op zap logger by default; install one with
// [SetLogger].
//
// # What this package is not
//
// No pools, schedulers, mutexes, futures, or cancellation. A spawned
// function cannot be stopped from outside; the only blocking operation
// is Join.
package joinable
