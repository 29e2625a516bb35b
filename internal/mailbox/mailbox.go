// Package mailbox implements an unbounded, multi-producer single-consumer
// FIFO, where sends never block.
package mailbox

import (
	"sync"

	"github.com/eapache/queue"
)

// Mailbox is an unbounded FIFO. Send is safe for concurrent use, and never
// blocks (beyond briefly acquiring an internal mutex). Recv blocks until a
// value is available, and is intended to be called by a single consumer.
//
// Instances must be initialized using New.
type Mailbox[T any] struct {
	mu    sync.Mutex
	cond  sync.Cond
	queue *queue.Queue
}

// New initializes a new, empty, Mailbox.
func New[T any]() *Mailbox[T] {
	x := &Mailbox[T]{queue: queue.New()}
	x.cond.L = &x.mu
	return x
}

// Send appends value to the back of the mailbox.
func (x *Mailbox[T]) Send(value T) {
	x.mu.Lock()
	x.queue.Add(value)
	x.mu.Unlock()
	x.cond.Signal()
}

// Recv removes and returns the value at the front of the mailbox, blocking
// until one is available.
func (x *Mailbox[T]) Recv() T {
	x.mu.Lock()
	defer x.mu.Unlock()
	for x.queue.Length() == 0 {
		x.cond.Wait()
	}
	return x.queue.Remove().(T)
}

// TryRecv is the non-blocking variant of Recv.
func (x *Mailbox[T]) TryRecv() (value T, ok bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.queue.Length() == 0 {
		return value, false
	}
	return x.queue.Remove().(T), true
}

// Len returns the number of buffered values.
func (x *Mailbox[T]) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.queue.Length()
}
