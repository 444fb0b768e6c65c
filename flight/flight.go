// Package flight coalesces concurrent requests for the same unit of work.
//
// A Registry tracks at most one task per task ID. The first request for an
// ID starts the work; later requests attach to the already-running task
// without starting it again. Each request can be cancelled independently;
// the task itself is cancelled only when its last request detaches. On
// completion every still-attached request receives the same result, in the
// order the requests were added.
package flight

import "sync"

// RequestID identifies a single attached request within a Registry.
type RequestID uint64

// Registry deduplicates concurrent work by task ID.
//
// All completion callbacks (the task-level callback and the per-request
// callbacks) run on the executor supplied to New, so callers observe
// deliveries on one serialized context regardless of which goroutine
// finished the work. Registry methods never invoke callbacks while holding
// internal locks.
type Registry[K comparable, V any] struct {
	exec func(func())

	mu     sync.Mutex
	nextID RequestID
	tasks  map[K]*task[V]
	owners map[RequestID]K
}

type task[V any] struct {
	cancel   func()
	taskDone func(V)
	requests []request[V] // insertion order
}

type request[V any] struct {
	id   RequestID
	done func(V)
}

// New creates a Registry whose callbacks run via exec. If exec is nil,
// each completion's callbacks run together on a fresh goroutine.
func New[K comparable, V any](exec func(func())) *Registry[K, V] {
	if exec == nil {
		exec = func(fn func()) { go fn() }
	}
	return &Registry[K, V]{
		exec:   exec,
		tasks:  make(map[K]*task[V]),
		owners: make(map[RequestID]K),
	}
}

// Add attaches a request to the task for id, creating the task if none
// exists. The returned created flag reports whether this call created the
// task.
//
// When the task is created, start is invoked exactly once on a new
// goroutine, after the registry state for the request is committed, so a
// completion can never race the bookkeeping that makes the returned
// RequestID cancellable. start receives a finish
// function that the work must call once with the task's result; finishing
// a task whose requests were all cancelled discards the result silently.
//
// cancel and taskDone are recorded only by the Add that creates the task;
// joiners' values are ignored. cancel (if non-nil) runs exactly once if
// every attached request is cancelled before completion. On completion,
// taskDone runs first, then each still-attached request's done callback in
// insertion order.
func (r *Registry[K, V]) Add(id K, start func(finish func(V)), cancel func(), taskDone func(V), done func(V)) (RequestID, bool) {
	r.mu.Lock()
	r.nextID++
	reqID := r.nextID
	t, exists := r.tasks[id]
	if !exists {
		t = &task[V]{cancel: cancel, taskDone: taskDone}
		r.tasks[id] = t
	}
	t.requests = append(t.requests, request[V]{id: reqID, done: done})
	r.owners[reqID] = id
	r.mu.Unlock()

	if !exists {
		go start(func(v V) { r.complete(id, t, v) })
	}
	return reqID, !exists
}

// Cancel detaches the request. If the request's task has no remaining
// requests, the task's cancel callback runs exactly once and the task is
// removed; otherwise the in-flight work continues for the remaining
// requests. Cancelling an unknown, already-cancelled, or already-completed
// request is a no-op, and concurrent Cancel calls for the same id detach
// at most once.
func (r *Registry[K, V]) Cancel(reqID RequestID) {
	r.mu.Lock()
	key, ok := r.owners[reqID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.owners, reqID)
	t := r.tasks[key]
	for i := range t.requests {
		if t.requests[i].id == reqID {
			t.requests = append(t.requests[:i], t.requests[i+1:]...)
			break
		}
	}
	var cancel func()
	if len(t.requests) == 0 {
		delete(r.tasks, key)
		cancel = t.cancel
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *Registry[K, V]) complete(key K, t *task[V], v V) {
	r.mu.Lock()
	cur, ok := r.tasks[key]
	if !ok || cur != t {
		// Every request detached before the work finished, or a successor
		// task already owns the key. Discard the result.
		r.mu.Unlock()
		return
	}
	delete(r.tasks, key)
	requests := t.requests
	for _, req := range requests {
		delete(r.owners, req.id)
	}
	r.mu.Unlock()

	r.exec(func() {
		if t.taskDone != nil {
			t.taskDone(v)
		}
		for _, req := range requests {
			if req.done != nil {
				req.done(v)
			}
		}
	})
}
