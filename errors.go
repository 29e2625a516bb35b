package timerfuture

import (
	"errors"
)

// Contract violations. These are used as (wrapped) panic values, with the
// exception of ErrReactorClosed, which may also be returned.
var (
	// ErrAlreadyRegistered indicates a task id was registered while it
	// already had a record.
	ErrAlreadyRegistered = errors.New(`timerfuture: task registered twice`)

	// ErrUnknownTask indicates a wake for a task id that was never
	// registered.
	ErrUnknownTask = errors.New(`timerfuture: unknown task`)

	// ErrDoubleWake indicates a wake for a task that had already finished.
	ErrDoubleWake = errors.New(`timerfuture: task woken twice`)

	// ErrTaskFinished indicates a task was polled after it completed.
	ErrTaskFinished = errors.New(`timerfuture: task polled after completion`)

	errUnreachable = errors.New(`timerfuture: unreachable`)

	// ErrReactorClosed is returned when a reactor reference is used after it
	// has been released.
	ErrReactorClosed = errors.New(`timerfuture: reactor reference already released`)
)
