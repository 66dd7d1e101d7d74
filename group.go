package joinable

import (
	"errors"
	"sync"
)

// Group is an ordered collection of [Thread] values with a join-them-all
// finalizer. It covers the common "start N units, then wait for every
// one of them" shape without any scheduling: there is no queue, no
// worker reuse, and no concurrency cap beyond an optional [Limiter]
// passed per spawn.
//
// The zero value is an empty, usable Group.
type Group struct {
	mu      sync.Mutex
	threads []*Thread
}

// Go spawns fn and adds the resulting Thread to the group. Spawn
// failures are returned and leave the group unchanged.
func (g *Group) Go(fn func(), opts ...SpawnOption) error {
	t, err := NewThread(fn, opts...)
	if err != nil {
		return err
	}
	g.Add(t)
	return nil
}

// Add appends t to the group, which takes over calling Join on it.
// Adding an empty Thread is allowed and joins as a no-op.
func (g *Group) Add(t *Thread) {
	if t == nil {
		panic("joinable: Group.Add requires non-nil thread")
	}
	g.mu.Lock()
	g.threads = append(g.threads, t)
	g.mu.Unlock()
}

// JoinAll joins every thread in the group in insertion order and empties
// the group. Threads that are already empty or resolved are skipped.
// Task panics come back as [*PanicError] values aggregated via
// [errors.Join]; JoinAll keeps going past failures so no thread is left
// joinable behind an earlier one's error.
func (g *Group) JoinAll() error {
	g.mu.Lock()
	threads := g.threads
	g.threads = nil
	g.mu.Unlock()

	var errs []error
	for _, t := range threads {
		err := t.Join()
		if err == nil || errors.Is(err, ErrNotJoinable) {
			continue
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Len returns the number of threads currently held by the group.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.threads)
}

// Joinable returns the number of held threads that are still joinable.
// The value may be stale in concurrent contexts.
func (g *Group) Joinable() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, t := range g.threads {
		if t.Joinable() {
			n++
		}
	}
	return n
}
