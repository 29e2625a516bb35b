package timerfuture

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/joeycumines/go-timerfuture/internal/mailbox"
	"github.com/joeycumines/go-timerfuture/internal/osthread"
	"github.com/joeycumines/go-timerfuture/waker"
	"github.com/joeycumines/logiface"
	"golang.org/x/sync/errgroup"
)

type (
	// Reactor is an owning reference to a reactor, which brokers between tasks
	// waiting on timers, and the timers themselves.
	//
	// References are obtained via New and Reactor.Clone, and each must be
	// released, exactly once, via Reactor.Close. Releasing the last reference
	// stops the dispatcher goroutine, after waiting for every timer it spawned.
	Reactor struct {
		// Prevent copying
		_ [0]func()

		core     *reactor
		released atomic.Bool
	}

	// reactor is the shared state. The dispatcher and timer goroutines never
	// hold a strong reference to it.
	reactor struct {
		logger *logiface.Logger[logiface.Event]
		events *mailbox.Mailbox[Event]
		done   chan struct{} // closed on dispatcher exit
		tasks  map[int]TaskState
		refs   int // owning references, 0 after the last Close
		mu     sync.Mutex
	}

	dispatcher struct {
		logger       *logiface.Logger[logiface.Event]
		events       *mailbox.Mailbox[Event]
		core         weak.Pointer[reactor]
		done         chan struct{}
		timeUnit     time.Duration
		lockOSThread bool
	}
)

// New initializes a reactor, starting its dispatcher goroutine, and returns
// the first owning reference to it.
func New(opts ...Option) (*Reactor, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	core := &reactor{
		logger: cfg.logger,
		events: mailbox.New[Event](),
		done:   make(chan struct{}),
		tasks:  make(map[int]TaskState),
		refs:   1,
	}

	d := dispatcher{
		logger:       cfg.logger,
		events:       core.events,
		core:         weak.Make(core),
		done:         core.done,
		timeUnit:     cfg.timeUnit,
		lockOSThread: cfg.lockOSThread,
	}
	go d.run()

	// stops the dispatcher if every reference is leaked without Close
	runtime.AddCleanup(core, func(events *mailbox.Mailbox[Event]) {
		events.Send(Event{Kind: EventClose})
	}, core.events)

	return &Reactor{core: core}, nil
}

// Clone returns a new owning reference to the same reactor.
// A panic will occur if x has already been released.
func (x *Reactor) Clone() *Reactor {
	if x.released.Load() {
		panic(fmt.Errorf(`%w: clone`, ErrReactorClosed))
	}
	x.core.mu.Lock()
	defer x.core.mu.Unlock()
	if x.core.refs == 0 {
		panic(fmt.Errorf(`%w: clone`, ErrReactorClosed))
	}
	x.core.refs++
	return &Reactor{core: x.core}
}

// Close releases this reference. If it was the last, Close sends the close
// event, and blocks until the dispatcher and all timer goroutines have
// exited. Closing an already released reference returns ErrReactorClosed.
//
// Close must not be called by a timer goroutine, or with the reactor's lock
// held, e.g. from a waker.Handle.
func (x *Reactor) Close() error {
	if !x.released.CompareAndSwap(false, true) {
		return ErrReactorClosed
	}
	if x.core.release() {
		x.core.shutdown()
	}
	return nil
}

// Snapshot returns a copy of the task table, for diagnostics.
func (x *Reactor) Snapshot() map[int]TaskState {
	x.core.mu.Lock()
	defer x.core.mu.Unlock()
	snapshot := make(map[int]TaskState, len(x.core.tasks))
	for id, state := range x.core.tasks {
		snapshot[id] = TaskState{Status: state.Status}
	}
	return snapshot
}

// IsReady returns true if the task with the given id has been registered,
// and its timer has fired, but it hasn't yet been polled to completion.
func (x *Reactor) IsReady(id int) bool {
	x.core.mu.Lock()
	defer x.core.mu.Unlock()
	return x.core.isReady(id)
}

// Pending returns the number of tasks that have not finished.
func (x *Reactor) Pending() (n int) {
	x.core.mu.Lock()
	defer x.core.mu.Unlock()
	for _, state := range x.core.tasks {
		if state.Status != StatusFinished {
			n++
		}
	}
	return
}

// release drops an owning reference, returning true if it was the last
func (x *reactor) release() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.refs <= 0 {
		panic(fmt.Errorf(`%w: negative reference count`, ErrReactorClosed))
	}
	x.refs--
	return x.refs == 0
}

func (x *reactor) shutdown() {
	x.events.Send(Event{Kind: EventClose})
	<-x.done

	x.mu.Lock()
	tasks := x.tasks
	x.tasks = make(map[int]TaskState)
	x.mu.Unlock()

	// release handles of tasks that never became ready
	for _, state := range tasks {
		if state.handle != nil {
			state.handle.Drop()
		}
	}

	x.logger.Debug().
		Int(`tasks`, len(tasks)).
		Log(`reactor shut down`)
}

// must be called with mu held
func (x *reactor) register(duration uint64, handle waker.Handle, id int) {
	if _, ok := x.tasks[id]; ok {
		x.violation(fmt.Errorf(`%w: id %d`, ErrAlreadyRegistered, id))
	}
	x.tasks[id] = notReady(handle)
	x.logger.Debug().
		Int(`id`, id).
		Uint64(`duration`, duration).
		Log(`task registered`)
	x.events.Send(Event{Kind: EventTimeout, Duration: duration, ID: id})
}

// must be called with mu held
func (x *reactor) wake(id int) {
	prev, ok := x.tasks[id]
	if !ok {
		x.violation(fmt.Errorf(`%w: id %d`, ErrUnknownTask, id))
	}
	switch prev.Status {
	case StatusNotReady:
		x.tasks[id] = TaskState{Status: StatusReady}
		x.logger.Debug().
			Int(`id`, id).
			Log(`task ready`)
		prev.handle.Wake()
	case StatusFinished:
		x.violation(fmt.Errorf(`%w: id %d`, ErrDoubleWake, id))
	default:
		x.violation(fmt.Errorf(`%w: wake of %s task: id %d`, errUnreachable, prev.Status, id))
	}
}

// must be called with mu held
func (x *reactor) isReady(id int) bool {
	state, ok := x.tasks[id]
	return ok && state.Status == StatusReady
}

// timerFired is called by timer goroutines, which resolve x via a weak
// pointer, and must have no effect once the last reference is released.
func (x *reactor) timerFired(id int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.refs == 0 {
		x.logger.Debug().
			Int(`id`, id).
			Log(`timer fired after release`)
		return
	}
	x.wake(id)
}

func (x *reactor) violation(err error) {
	x.logger.Crit().
		Err(err).
		Log(`contract violation`)
	panic(err)
}

func (x *dispatcher) run() {
	defer close(x.done)

	tid := osthread.ID()
	if x.lockOSThread {
		var unlock func()
		unlock, tid = osthread.Lock()
		defer unlock()
	}

	var timers errgroup.Group
	for {
		event := x.events.Recv()

		x.logger.Info().
			Stringer(`event`, event).
			Int(`tid`, tid).
			Int(`queued`, x.events.Len()).
			Log(`reactor event`)

		if event.Kind == EventClose {
			break
		}

		if event.Kind == EventTimeout {
			timers.Go(x.timer(x.duration(event.Duration), event.ID))
		}
	}

	// events queued behind the close are dropped
	for {
		event, ok := x.events.TryRecv()
		if !ok {
			break
		}
		x.logger.Debug().
			Stringer(`event`, event).
			Log(`reactor event discarded`)
	}

	// no timer may outlive the dispatcher
	_ = timers.Wait()
}

// duration converts whole units to a time.Duration, saturating at the
// maximum, rather than overflowing
func (x *dispatcher) duration(units uint64) time.Duration {
	if units > uint64(math.MaxInt64/int64(x.timeUnit)) {
		return math.MaxInt64
	}
	return time.Duration(units) * x.timeUnit
}

func (x *dispatcher) timer(d time.Duration, id int) func() error {
	ref := x.core
	return func() error {
		time.Sleep(d)
		if core := ref.Value(); core != nil {
			core.timerFired(id)
		}
		return nil
	}
}
