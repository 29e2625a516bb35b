package timerfuture

import (
	"fmt"

	"github.com/joeycumines/go-timerfuture/waker"
)

// TaskStatus is the tag of a TaskState.
//
// State Machine:
//
//	(none)         → StatusNotReady [register]
//	StatusNotReady → StatusNotReady [poll, refreshes the stored handle]
//	StatusNotReady → StatusReady    [timer fired]
//	StatusReady    → StatusFinished [poll]
//	StatusFinished → (terminal)
//
// Any other transition is a contract violation.
type TaskStatus uint8

const (
	// StatusNotReady indicates the task is waiting on its timer.
	StatusNotReady TaskStatus = iota
	// StatusReady indicates the timer has fired, but the task hasn't yet
	// observed it.
	StatusReady
	// StatusFinished indicates the task has completed.
	StatusFinished
)

// String returns a human-readable representation of the status.
func (s TaskStatus) String() string {
	switch s {
	case StatusNotReady:
		return "NotReady"
	case StatusReady:
		return "Ready"
	case StatusFinished:
		return "Finished"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// TaskState models the reactor's record for a single task id.
//
// The handle is only set for StatusNotReady, and is owned by the reactor.
// Values returned by Reactor.Snapshot never carry a handle.
type TaskState struct {
	handle waker.Handle
	Status TaskStatus
}

func notReady(handle waker.Handle) TaskState {
	return TaskState{Status: StatusNotReady, handle: handle}
}

// String returns a human-readable representation of the state.
func (s TaskState) String() string {
	return s.Status.String()
}
