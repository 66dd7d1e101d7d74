package joinable

import (
	"fmt"
	"runtime/debug"
)

// PanicError is how a panic inside a spawned function comes back to the
// code that owns its handle. The recover runs on the spawned goroutine,
// so the stack is captured there, at the point of the panic, before the
// handle becomes ready to join.
//
// Who sees it depends on who resolves the handle: an explicit
// [Handle.Join] or [Thread.Join] returns it as an ordinary error, while
// the cleanup paths ([Guard.Release], [ScopedThread.Close],
// [Thread.Close]) re-panic it because they have no caller to hand an
// error to.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the spawned goroutine's stack trace at the point of
	// the panic.
	Stack string
}

// Error renders the panic value followed by the captured stack trace.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns nil. PanicError does not wrap another error.
func (e *PanicError) Unwrap() error { return nil }

// newPanicError must be called from the deferred recover on the spawned
// goroutine, so debug.Stack sees the panicking frames.
func newPanicError(v any) *PanicError {
	return &PanicError{
		Value: v,
		Stack: string(debug.Stack()),
	}
}
