// Package scheduler runs chart queries on a bounded pool of workers so a
// dashboard render never holds more than a fixed number of database
// statements in flight.
package scheduler

import (
	"context"
	"fmt"

	"github.com/dashlite/dashlite/internal/models"
)

// Result is the outcome delivered by a work future.
type Result[T any] = models.Result[T]

type workRequest struct {
	fn  models.Work[any]
	c   chan models.Result[any]
	ctx context.Context
}

type worker struct {
	done chan any
}

func (w worker) Work(r workRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			r.c <- models.Result[any]{Err: fmt.Errorf("worker panicked: %v", rec)}
		}
		w.done <- struct{}{}
	}()

	v, err := r.fn(r.ctx)
	r.c <- models.Result[any]{Data: v, Err: err}
}

func newWorker(done chan any) worker {
	return worker{done: done}
}

type Scheduler struct {
	workers    *models.Queue[worker]
	workQueue  *models.Queue[workRequest]
	close      chan chan any
	done       chan any
	work       chan workRequest
	mainCtx    context.Context
	mainCancel context.CancelFunc
}

func NewScheduler(nbWorkers int) *Scheduler {
	done := make(chan any)
	wq := &models.Queue[worker]{}
	for range nbWorkers {
		wq.Push(newWorker(done))
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		workers:    wq,
		workQueue:  &models.Queue[workRequest]{},
		close:      make(chan chan any),
		done:       done,
		work:       make(chan workRequest),
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	go s.run()
	return s
}

// AddWork queues w for execution and returns a future resolving to its
// result. After Close the future resolves immediately with the canceled
// context's error.
func (s *Scheduler) AddWork(w models.Work[any]) *models.Future[models.Result[any]] {
	c := make(chan models.Result[any], 1)
	ctx, cancel := context.WithCancel(s.mainCtx)
	select {
	case s.work <- workRequest{w, c, ctx}:
	case <-s.mainCtx.Done():
		c <- models.Result[any]{Err: s.mainCtx.Err()}
	}
	return models.NewFuture(c, cancel)
}

// Close cancels the context of every pending and running work item, then
// blocks until the workers drain.
func (s *Scheduler) Close() {
	s.mainCancel()
	ack := make(chan any)
	s.close <- ack
	<-ack
}

func (s *Scheduler) run() {
	inflight := 0
	var closing chan any
	for {
		select {
		case w := <-s.work:
			s.workQueue.Push(w)
			if s.workers.Len() == 0 {
				continue
			}
			s.dispatch(s.workQueue.Pop())
			inflight++
		case <-s.done:
			inflight--
			s.workers.Push(newWorker(s.done))

			if s.workQueue.Len() > 0 {
				s.dispatch(s.workQueue.Pop())
				inflight++
			}
			if closing != nil && inflight == 0 && s.workQueue.Len() == 0 {
				close(closing)
				return
			}
		case ack := <-s.close:
			closing = ack
			if inflight == 0 && s.workQueue.Len() == 0 {
				close(closing)
				return
			}
		}
	}
}

func (s *Scheduler) dispatch(r workRequest) {
	worker := s.workers.Pop()
	go worker.Work(r)
}
