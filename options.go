package joinable

import (
	"time"

	"github.com/google/uuid"
)

// ThreadInfo provides metadata about a spawned execution unit.
// It is passed to hooks registered via [WithOnStart] and [WithOnExit].
type ThreadInfo struct {
	ID   uuid.UUID
	Name string
}

type spawnConfig struct {
	name    string
	limiter *Limiter
	onStart func(ThreadInfo)
	onExit  func(ThreadInfo, error, time.Duration)
}

// SpawnOption configures a [Spawn] call.
type SpawnOption func(*spawnConfig)

// WithName names the spawned execution unit. The name appears in
// [ThreadInfo], spawn errors, and debug logs. Unnamed units are fine;
// the handle ID is always unique.
func WithName(name string) SpawnOption {
	return func(c *spawnConfig) {
		c.name = name
	}
}

// WithLimiter attaches a [Limiter] to the spawn. If the limiter has no
// free slot, Spawn fails with a [*SpawnError] instead of starting the
// goroutine. The slot is released when the spawned function returns.
func WithLimiter(l *Limiter) SpawnOption {
	if l == nil {
		panic("joinable: WithLimiter requires non-nil limiter")
	}
	return func(c *spawnConfig) {
		c.limiter = l
	}
}

// WithOnStart registers a hook invoked when the spawned function begins
// executing. The hook runs on the spawned goroutine, before the function.
func WithOnStart(fn func(ThreadInfo)) SpawnOption {
	return func(c *spawnConfig) {
		c.onStart = fn
	}
}

// WithOnExit registers a hook invoked when the spawned function returns.
// The hook receives the captured panic as a [*PanicError] (nil if the
// function returned normally) and the wall-clock duration. It runs on the
// spawned goroutine, after the function returns but before the handle
// becomes ready to join.
func WithOnExit(fn func(ThreadInfo, error, time.Duration)) SpawnOption {
	return func(c *spawnConfig) {
		c.onExit = fn
	}
}
