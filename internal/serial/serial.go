// Package serial provides a FIFO executor backed by a single goroutine.
package serial

import "sync"

// Queue runs functions one at a time, in submission order, on a single
// goroutine. It serves as the delivery context for cache callbacks: work
// may finish on any goroutine, but callers always observe results here.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	fns    []func()
	closed bool
	done   chan struct{}
}

// NewQueue creates a Queue and starts its worker goroutine.
func NewQueue() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Async enqueues fn for execution. Functions enqueued before Close run in
// submission order; Async after Close drops fn.
func (q *Queue) Async(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	q.cond.Signal()
}

// Close drains already-enqueued functions, stops the worker goroutine, and
// waits for it to exit. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Signal()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.fns) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.fns) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.fns[0]
		q.fns = q.fns[1:]
		q.mu.Unlock()
		fn()
	}
}
