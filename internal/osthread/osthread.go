// Package osthread exposes the identity of the OS thread running the calling
// goroutine, for diagnostics.
package osthread

import (
	"runtime"
)

// ID returns the id of the OS thread currently running the caller, or -1 if
// unsupported on this platform. Unless the caller has locked its OS thread
// (see runtime.LockOSThread), the value may be stale by the time it's used.
func ID() int { return id() }

// Lock wires the calling goroutine to its current OS thread, returning the
// function to undo it, and the thread's ID.
func Lock() (unlock func(), tid int) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, id()
}
