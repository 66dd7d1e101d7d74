package joinable

import (
	"errors"
	"fmt"
)

// ErrNotJoinable is returned by Join and Detach when the target handle is
// not currently joinable: it was already joined, already detached, or the
// wrapper holds no handle at all.
var ErrNotJoinable = errors.New("joinable: handle is not joinable")

// ErrInvalidHandle is returned by [NewScopedThread] when given a nil or
// non-joinable handle. A ScopedThread's whole contract is an unconditional
// join at Close, so it refuses to own a handle that cannot satisfy it.
var ErrInvalidHandle = errors.New("joinable: handle is nil or not joinable")

// SpawnError reports that a new execution unit could not be started.
// The only spawn failure this package itself produces is limiter
// exhaustion; Cause carries the detail.
type SpawnError struct {
	Name  string
	Cause error
}

func (e *SpawnError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("joinable: spawn %q failed: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("joinable: spawn failed: %v", e.Cause)
}

func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// IsSpawnError reports whether err (or any error in its chain) is a
// [*SpawnError].
func IsSpawnError(err error) bool {
	if err == nil {
		return false
	}
	var se *SpawnError
	return errors.As(err, &se)
}

// CauseOf unwraps the first [*SpawnError] or [*PanicError] in err's chain
// and returns its underlying detail: the spawn cause, or the panic value
// wrapped as an error. If err is neither, it is returned as-is.
// Returns nil if err is nil.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}

	var se *SpawnError
	if errors.As(err, &se) {
		return se.Cause
	}

	var pe *PanicError
	if errors.As(err, &pe) {
		return fmt.Errorf("panic: %v", pe.Value)
	}

	return err
}
