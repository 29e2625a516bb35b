// Package timerfuture is a minimal polled-task runtime, where the only source
// of events is elapsed time.
//
// # Architecture
//
// A [Future] is a suspendable unit of work, which is polled until it is
// ready. When it is not ready, it stashes a [waker.Handle], obtained from the
// [Context] it was polled with, somewhere that will eventually wake it.
//
// The [Reactor] is that somewhere. It owns a table of outstanding tasks, and
// a dispatcher goroutine (locked to its own OS thread, by default), which is
// the sole consumer of reactor [Event]s, and the sole spawner of timer
// goroutines. Each timer sleeps, then marks its task ready, and invokes the
// task's stored handle.
//
// A [Task] is the Future implemented on top of the reactor, resolving to its
// id once its duration has elapsed.
//
// [BlockOn] is the executor. It polls a single top-level future, parking the
// calling goroutine (see [parker.Parker]) between polls, until it completes.
//
// # Usage
//
//	r, err := timerfuture.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	id := timerfuture.BlockOn(timerfuture.NewTask(r, 1, 1))
//	fmt.Println("Got", id)
//
// # Contract Violations
//
// There is no recoverable error path for misuse of the task protocol.
// Registering an id twice, waking an unknown id, waking a finished task, and
// polling a finished task, all panic, with an error wrapping one of
// [ErrAlreadyRegistered], [ErrUnknownTask], [ErrDoubleWake], or
// [ErrTaskFinished].
package timerfuture
