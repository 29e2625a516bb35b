package waker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	unparks atomic.Int32
}

func (x *countingNotifier) Unpark() { x.unparks.Add(1) }

// requireReleasedPanic asserts fn panics with an error wrapping ErrReleased.
func requireReleasedPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, `expected a panic`)
		err, ok := r.(error)
		require.True(t, ok, `expected an error, got %T: %v`, r, r)
		require.True(t, errors.Is(err, ErrReleased), `unexpected error: %v`, err)
	}()
	fn()
}

func TestNew_nilTarget(t *testing.T) {
	assert.PanicsWithValue(t, `waker: nil target`, func() { New(nil) })
}

func TestWaker_wakeConsumes(t *testing.T) {
	n := new(countingNotifier)
	w := New(n)
	require.EqualValues(t, 1, w.Refs())
	w.Wake()
	assert.EqualValues(t, 1, n.unparks.Load())
	assert.EqualValues(t, 0, w.Refs())
	assert.True(t, w.Released())
	assert.Nil(t, w.cell.target.Load(), `target should be released at zero refs`)
}

func TestWaker_wakeByRefRetains(t *testing.T) {
	n := new(countingNotifier)
	w := New(n)
	for i := 0; i < 3; i++ {
		w.WakeByRef()
	}
	assert.EqualValues(t, 3, n.unparks.Load())
	assert.EqualValues(t, 1, w.Refs())
	assert.False(t, w.Released())
	w.Drop()
	assert.EqualValues(t, 3, n.unparks.Load(), `drop must not notify`)
	assert.EqualValues(t, 0, w.Refs())
}

func TestWaker_cloneSharesTarget(t *testing.T) {
	n := new(countingNotifier)
	w := New(n)
	c := w.Clone()
	require.EqualValues(t, 2, w.Refs())

	w.Drop()
	assert.EqualValues(t, 1, w.Refs())
	assert.NotNil(t, w.cell.target.Load(), `clone still holds the target`)

	c.Wake()
	assert.EqualValues(t, 1, n.unparks.Load())
	assert.EqualValues(t, 0, w.Refs())
	assert.Nil(t, w.cell.target.Load())
}

func TestWaker_misuse(t *testing.T) {
	for _, tc := range [...]struct {
		name  string
		first func(w *Waker)
		then  func(w *Waker)
	}{
		{`wake twice`, (*Waker).Wake, (*Waker).Wake},
		{`drop twice`, (*Waker).Drop, (*Waker).Drop},
		{`drop after wake`, (*Waker).Wake, (*Waker).Drop},
		{`wake after drop`, (*Waker).Drop, (*Waker).Wake},
		{`clone after drop`, (*Waker).Drop, func(w *Waker) { w.Clone() }},
		{`wake by ref after wake`, (*Waker).Wake, (*Waker).WakeByRef},
	} {
		t.Run(tc.name, func(t *testing.T) {
			n := new(countingNotifier)
			w := New(n)
			tc.first(w)
			refs := w.Refs()
			requireReleasedPanic(t, func() { tc.then(w) })
			assert.Equal(t, refs, w.Refs(), `refs must not change on misuse`)
			assert.GreaterOrEqual(t, w.Refs(), int64(0))
		})
	}
}

func TestWaker_concurrentCloneRelease(t *testing.T) {
	n := new(countingNotifier)
	w := New(n)
	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		c := w.Clone()
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.Wake()
			} else {
				c.Drop()
			}
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, w.Refs())
	assert.EqualValues(t, workers/2, n.unparks.Load())
	w.Drop()
	assert.EqualValues(t, 0, w.Refs())
}

func TestNoop(t *testing.T) {
	h := Noop()
	c := h.Clone()
	c.WakeByRef()
	c.Wake()
	h.Drop()
	h.Drop()
}
