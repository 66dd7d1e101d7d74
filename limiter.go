package joinable

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of live execution units spawned through it.
// Attach one to [Spawn] via [WithLimiter]; when every slot is taken,
// Spawn fails with a [*SpawnError] rather than blocking, the same shape
// of failure an OS reports when it cannot allocate another thread.
//
// A Limiter may be shared across goroutines.
type Limiter struct {
	sem  *semaphore.Weighted
	cap  int64
	used atomic.Int64
}

// NewLimiter creates a limiter with n slots. Panics if n <= 0.
func NewLimiter(n int64) *Limiter {
	if n <= 0 {
		panic("joinable: NewLimiter requires n > 0")
	}
	return &Limiter{
		sem: semaphore.NewWeighted(n),
		cap: n,
	}
}

// acquire claims a slot without blocking.
func (l *Limiter) acquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.used.Add(1)
	return true
}

// release returns a slot. Called when the spawned function finishes.
func (l *Limiter) release() {
	l.used.Add(-1)
	l.sem.Release(1)
}

// InUse returns the number of slots currently claimed.
// The value may be stale in concurrent contexts.
func (l *Limiter) InUse() int64 {
	return l.used.Load()
}

// Cap returns the limiter's capacity.
func (l *Limiter) Cap() int64 {
	return l.cap
}
