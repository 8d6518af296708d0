package models

import (
	"context"
	"sync"
)

// Future hands back the result of work scheduled on the render pool. It can
// be consumed either by polling or by receiving from C.
type Future[T any] struct {
	input    chan T
	out      chan T
	resolved bool
	value    T
	cancel   context.CancelFunc
	lock     sync.Mutex
}

func NewFuture[T any](input chan T, cancel context.CancelFunc) *Future[T] {
	f := &Future[T]{
		input:  input,
		out:    make(chan T, 1),
		cancel: cancel,
	}

	go func() {
		v := <-f.input
		f.lock.Lock()
		f.value = v
		f.resolved = true
		f.lock.Unlock()

		f.out <- v
		f.cancel()
	}()

	return f
}

// C yields the result exactly once when the work completes. The channel is
// buffered, so an abandoned future does not leak its worker.
func (f *Future[T]) C() <-chan T {
	return f.out
}

func (f *Future[T]) Poll() (value T, isResolved bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.resolved {
		return f.value, true
	}

	var none T
	return none, false
}

// Stop cancels the context the work runs under.
func (f *Future[T]) Stop() {
	f.cancel()
}
