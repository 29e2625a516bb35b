package timerfuture

import (
	"github.com/joeycumines/go-timerfuture/parker"
	"github.com/joeycumines/go-timerfuture/waker"
)

// BlockOn drives f to completion on the calling goroutine, returning its
// output. Between polls, the goroutine is parked, until f's waker is woken.
//
// Only one top-level future is driven at a time; compose futures (e.g. with
// Then or Join) to run more than one.
func BlockOn[T any](f Future[T]) T {
	p := parker.New()
	w := waker.New(p)
	defer w.Drop()

	cx := NewContext(w)
	for {
		if value, ok := f.Poll(cx).Value(); ok {
			return value
		}
		// woken during the poll
		if p.TryPark() {
			continue
		}
		p.Park()
	}
}
