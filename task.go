package timerfuture

import (
	"fmt"
	"sync/atomic"
)

// Task is a Future that completes, with its id, once its duration has
// elapsed, as observed by the reactor.
//
// The first poll registers the task with the reactor, which starts exactly one
// timer for it. Later polls refresh the stored waker, until the timer fires.
type Task struct {
	reactor    *Reactor
	duration   uint64
	id         int
	registered bool // guarded by the reactor's lock
	finished   atomic.Bool
}

var (
	// compile time assertions

	_ Future[int] = (*Task)(nil)
)

// NewTask initializes a task, that waits for duration units (see
// WithTimeUnit). The id must be unique among live tasks, of the reactor.
//
// The task holds its own reference to the reactor, which is released when it
// completes, or on Task.Close. A panic will occur if r has been released.
func NewTask(r *Reactor, duration uint64, id int) *Task {
	return &Task{
		reactor:  r.Clone(),
		duration: duration,
		id:       id,
	}
}

// ID returns the task's id.
func (x *Task) ID() int { return x.id }

// Poll implements Future. Polling a task that has already completed panics
// with an error wrapping ErrTaskFinished.
func (x *Task) Poll(cx *Context) Poll[int] {
	if x.finished.Load() {
		panic(fmt.Errorf(`%w: id %d`, ErrTaskFinished, x.id))
	}
	if x.reactor.released.Load() {
		panic(fmt.Errorf(`%w: poll of closed task: id %d`, ErrReactorClosed, x.id))
	}
	if !x.poll(cx) {
		return Pending[int]()
	}
	x.finished.Store(true)
	x.reactor.core.logger.Info().
		Int(`id`, x.id).
		Log(`task finished`)
	// must not hold the lock, this may shut the reactor down
	_ = x.reactor.Close()
	return Ready(x.id)
}

// Close releases the task's reference to the reactor, if it hasn't been
// already. It is only necessary for tasks abandoned before completion.
func (x *Task) Close() error {
	if err := x.reactor.Close(); err != nil && err != ErrReactorClosed {
		return err
	}
	return nil
}

func (x *Task) poll(cx *Context) bool {
	core := x.reactor.core
	core.mu.Lock()
	defer core.mu.Unlock()

	state, ok := core.tasks[x.id]
	if !ok {
		core.register(x.duration, cx.Waker().Clone(), x.id)
		x.registered = true
		return false
	}

	if !x.registered {
		// the record belongs to another task with the same id
		core.violation(fmt.Errorf(`%w: id %d`, ErrAlreadyRegistered, x.id))
	}

	switch state.Status {
	case StatusReady:
		core.tasks[x.id] = TaskState{Status: StatusFinished}
		return true

	case StatusNotReady:
		core.tasks[x.id] = notReady(cx.Waker().Clone())
		state.handle.Drop()
		core.logger.Trace().
			Int(`id`, x.id).
			Log(`task waker refreshed`)
		return false

	default:
		core.violation(fmt.Errorf(`%w: id %d`, ErrTaskFinished, x.id))
		panic(`unreachable`)
	}
}
