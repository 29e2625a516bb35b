package timerfuture

import (
	"github.com/joeycumines/go-timerfuture/waker"
)

type (
	// Future is a suspendable computation, driven by repeated calls to Poll.
	//
	// If Poll returns a pending result, the implementation must have arranged
	// for a clone of the Context's waker to be woken, once re-polling may make
	// progress. Poll must not be called again after it returns a ready result.
	Future[T any] interface {
		Poll(cx *Context) Poll[T]
	}

	// FutureFunc adapts a function to a Future.
	FutureFunc[T any] func(cx *Context) Poll[T]

	// Poll is the result of polling a Future, either ready with a value, or
	// pending. The zero value is pending.
	Poll[T any] struct {
		value T
		ready bool
	}

	// Context is passed to Future.Poll, carrying the waker for the current
	// poll. The waker is borrowed: implementations must Clone it, to retain
	// it beyond the call to Poll.
	Context struct {
		waker waker.Handle
	}

	// Pair is the output of Join.
	Pair[A, B any] struct {
		First  A
		Second B
	}

	readyFuture[T any] struct {
		value T
	}

	thenFuture[T, U any] struct {
		first  Future[T]
		fn     func(T) Future[U]
		second Future[U]
	}

	joinFuture[A, B any] struct {
		a     Future[A]
		b     Future[B]
		out   Pair[A, B]
		aDone bool
		bDone bool
	}
)

// Ready returns a ready Poll with the given value.
func Ready[T any](value T) Poll[T] { return Poll[T]{value: value, ready: true} }

// Pending returns a pending Poll.
func Pending[T any]() Poll[T] { return Poll[T]{} }

// IsReady returns true if the poll is ready.
func (x Poll[T]) IsReady() bool { return x.ready }

// Value returns the value, and true, if ready.
func (x Poll[T]) Value() (T, bool) { return x.value, x.ready }

// NewContext returns a Context for the given waker. A nil handle uses
// waker.Noop.
func NewContext(handle waker.Handle) *Context {
	if handle == nil {
		handle = waker.Noop()
	}
	return &Context{waker: handle}
}

// Waker returns the (borrowed) waker handle for the current poll.
func (x *Context) Waker() waker.Handle { return x.waker }

// Poll implements Future.
func (f FutureFunc[T]) Poll(cx *Context) Poll[T] { return f(cx) }

// ReadyFuture returns a Future that is immediately ready with value.
func ReadyFuture[T any](value T) Future[T] { return &readyFuture[T]{value: value} }

func (x *readyFuture[T]) Poll(*Context) Poll[T] { return Ready(x.value) }

// Then runs first to completion, then the Future returned by fn, given the
// output of first. The result is the output of the second future.
func Then[T, U any](first Future[T], fn func(T) Future[U]) Future[U] {
	if first == nil || fn == nil {
		panic(`timerfuture: nil future or function`)
	}
	return &thenFuture[T, U]{first: first, fn: fn}
}

func (x *thenFuture[T, U]) Poll(cx *Context) Poll[U] {
	if x.second == nil {
		value, ok := x.first.Poll(cx).Value()
		if !ok {
			return Pending[U]()
		}
		x.second = x.fn(value)
		x.first, x.fn = nil, nil
	}
	return x.second.Poll(cx)
}

// Map transforms the output of f using fn.
func Map[T, U any](f Future[T], fn func(T) U) Future[U] {
	if fn == nil {
		panic(`timerfuture: nil function`)
	}
	return Then(f, func(value T) Future[U] { return ReadyFuture(fn(value)) })
}

// Join polls a and b, interleaved, until both are complete.
func Join[A, B any](a Future[A], b Future[B]) Future[Pair[A, B]] {
	if a == nil || b == nil {
		panic(`timerfuture: nil future`)
	}
	return &joinFuture[A, B]{a: a, b: b}
}

func (x *joinFuture[A, B]) Poll(cx *Context) Poll[Pair[A, B]] {
	if !x.aDone {
		x.out.First, x.aDone = x.a.Poll(cx).Value()
	}
	if !x.bDone {
		x.out.Second, x.bDone = x.b.Poll(cx).Value()
	}
	if x.aDone && x.bDone {
		return Ready(x.out)
	}
	return Pending[Pair[A, B]]()
}
