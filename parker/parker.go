// Package parker implements a latched park/unpark primitive, used to block a
// single goroutine until another goroutine signals that progress is possible.
package parker

import (
	"sync"
)

// Parker blocks the calling goroutine in Park, until Unpark is called.
//
// The signal is latched, not edge-triggered: an Unpark that happens before
// the matching Park is not lost, and causes that Park to return immediately.
// Any number of Unpark calls, before a Park, collapse into a single pending
// resume. Parker is not a counting semaphore, and it is intended that only
// one goroutine parks on a given instance, at any one time.
//
// The zero value is ready to use. A Parker must not be copied after first use.
type Parker struct {
	// Prevent copying
	_ [0]func()

	mu        sync.Mutex
	cond      sync.Cond
	resumable bool
}

// New returns a new Parker. It is equivalent to new(Parker).
func New() *Parker {
	return new(Parker)
}

// Park blocks until the resumable flag is set, then resets it and returns.
func (x *Parker) Park() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.init()
	// spurious wakeups are possible
	for !x.resumable {
		x.cond.Wait()
	}
	x.resumable = false
}

// TryPark consumes a pending resume, returning true, or returns false
// immediately, if there was none.
func (x *Parker) TryPark() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.resumable {
		return false
	}
	x.resumable = false
	return true
}

// Unpark sets the resumable flag, and wakes the parked goroutine, if any.
// It is safe to call from any goroutine, any number of times.
func (x *Parker) Unpark() {
	x.mu.Lock()
	x.init()
	x.resumable = true
	x.mu.Unlock()
	x.cond.Signal()
}

// must be called with mu held
func (x *Parker) init() {
	if x.cond.L == nil {
		x.cond.L = &x.mu
	}
}
