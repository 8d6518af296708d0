package models

import "context"

// Work is a unit of computation executed by the scheduler. Implementations
// must honor ctx cancellation.
type Work[T any] func(ctx context.Context) (T, error)

// Result carries the outcome of a Work call.
type Result[T any] struct {
	Data T
	Err  error
}

// Queue is a FIFO queue. It is not safe for concurrent use.
type Queue[T any] struct {
	items []T
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

func (q *Queue[T]) Push(item T) {
	q.items = append(q.items, item)
}

// Pop removes and returns the oldest item. It panics on an empty queue,
// callers check Len first.
func (q *Queue[T]) Pop() T {
	item := q.items[0]
	q.items = q.items[1:]
	return item
}
