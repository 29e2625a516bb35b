// Package waker provides the notification capability, used by suspended tasks
// to signal that re-polling may now make progress, without knowing anything
// about what is driving them.
package waker

import (
	"errors"
	"fmt"
	"sync/atomic"
)

type (
	// Handle models the capability to trigger a re-poll.
	//
	// Every handle instance owns exactly one reference, which must be released
	// exactly once, by either Wake or Drop. Using a handle instance after it
	// has been released panics, with an error wrapping ErrReleased.
	Handle interface {
		// Clone returns a new handle, sharing the same target, owning an
		// additional reference.
		Clone() Handle

		// Wake notifies the target, then releases this handle's reference.
		Wake()

		// WakeByRef notifies the target, without releasing any reference.
		WakeByRef()

		// Drop releases this handle's reference, without notifying.
		Drop()
	}

	// Notifier is the target of a Waker, e.g. *parker.Parker.
	Notifier interface {
		Unpark()
	}

	// Waker is the reference counted Handle implementation, bound to a single
	// Notifier. Instances must be initialized using New, or Clone.
	Waker struct {
		cell     *cell
		released atomic.Bool
	}

	cell struct {
		target atomic.Pointer[Notifier]
		refs   atomic.Int64
	}

	noopHandle struct{}
)

var (
	// ErrReleased indicates use of a handle whose reference was already
	// released, via Wake or Drop.
	ErrReleased = errors.New(`waker: handle already released`)

	// compile time assertions

	_ Handle = (*Waker)(nil)
	_ Handle = noopHandle{}
)

// New returns a Waker bound to target, owning the first reference.
// A panic will occur if target is nil.
func New(target Notifier) *Waker {
	if target == nil {
		panic(`waker: nil target`)
	}
	c := new(cell)
	c.target.Store(&target)
	c.refs.Store(1)
	return &Waker{cell: c}
}

// Noop returns a Handle that does nothing, useful for polling a future outside
// of any executor.
func Noop() Handle { return noopHandle{} }

// Clone implements Handle.Clone.
func (x *Waker) Clone() Handle {
	x.check(`clone`)
	x.cell.refs.Add(1)
	return &Waker{cell: x.cell}
}

// Wake implements Handle.Wake.
func (x *Waker) Wake() {
	x.acquireRelease(`wake`)
	// the reference isn't given up until after the notify
	x.notify()
	x.cell.release()
}

// WakeByRef implements Handle.WakeByRef.
func (x *Waker) WakeByRef() {
	x.check(`wake by ref`)
	x.notify()
}

// Drop implements Handle.Drop.
func (x *Waker) Drop() {
	x.acquireRelease(`drop`)
	x.cell.release()
}

// Refs returns the number of live references to the shared target, across
// all clones. It will be 0 once every handle has been released.
func (x *Waker) Refs() int64 {
	return x.cell.refs.Load()
}

// Released reports whether this handle instance has been released.
func (x *Waker) Released() bool {
	return x.released.Load()
}

func (x *Waker) check(op string) {
	if x.released.Load() {
		panic(fmt.Errorf(`%w: %s`, ErrReleased, op))
	}
}

func (x *Waker) acquireRelease(op string) {
	if !x.released.CompareAndSwap(false, true) {
		panic(fmt.Errorf(`%w: %s`, ErrReleased, op))
	}
}

func (x *Waker) notify() {
	if target := x.cell.target.Load(); target != nil {
		(*target).Unpark()
	}
}

func (x *cell) release() {
	switch refs := x.refs.Add(-1); {
	case refs == 0:
		// last reference, let go of the target
		x.target.Store(nil)
	case refs < 0:
		panic(fmt.Errorf(`%w: negative reference count %d`, ErrReleased, refs))
	}
}

func (noopHandle) Clone() Handle { return noopHandle{} }
func (noopHandle) Wake()         {}
func (noopHandle) WakeByRef()    {}
func (noopHandle) Drop()         {}
