package timerfuture

import (
	"bytes"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-timerfuture/waker"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

// testUnit is the time unit used by most tests, short enough to keep the
// suite fast, long enough to avoid scheduling noise
const testUnit = 50 * time.Millisecond

// checkNumGoroutines records the current number of goroutines, and returns a
// function that fails the test if that number hasn't been returned to within
// the timeout, e.g. `defer checkNumGoroutines(time.Second)(t)`.
func checkNumGoroutines(timeout time.Duration) func(t *testing.T) {
	before := runtime.NumGoroutine()
	return func(t *testing.T) {
		t.Helper()
		deadline := time.Now().Add(timeout)
		for {
			after := runtime.NumGoroutine()
			if after <= before {
				return
			}
			if time.Now().After(deadline) {
				t.Errorf(`goroutine leak: before=%d after=%d`, before, after)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// newTestReactor initializes a reactor using testUnit, closing it on test
// cleanup, if it wasn't already
func newTestReactor(t *testing.T, opts ...Option) *Reactor {
	t.Helper()
	r, err := New(append([]Option{WithTimeUnit(testUnit)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// requirePanicErr asserts fn panics with an error matching target.
func requirePanicErr(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, `expected a panic wrapping %v`, target)
		err, ok := r.(error)
		require.True(t, ok, `expected an error, got %T: %v`, r, r)
		require.True(t, errors.Is(err, target), `unexpected error: %v`, err)
	}()
	fn()
}

// countingNotifier is a waker.Notifier that counts Unpark calls, and
// optionally signals each one on a channel.
type countingNotifier struct {
	ch      chan struct{}
	unparks atomic.Int32
}

func newCountingNotifier() *countingNotifier {
	return &countingNotifier{ch: make(chan struct{}, 64)}
}

func (x *countingNotifier) Unpark() {
	x.unparks.Add(1)
	select {
	case x.ch <- struct{}{}:
	default:
	}
}

func (x *countingNotifier) waitUnpark(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-x.ch:
	case <-time.After(timeout):
		t.Fatalf(`no unpark within %s`, timeout)
	}
}

func newCountingWaker() (*waker.Waker, *countingNotifier) {
	n := newCountingNotifier()
	return waker.New(n), n
}

// syncBuffer is a bytes.Buffer safe for concurrent writes
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (x *syncBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.Write(p)
}

func (x *syncBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.String()
}

func newTestLogger(w *syncBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}
