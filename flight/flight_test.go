package flight_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaredsinclair/contentcache/flight"
)

const (
	testWait = 2 * time.Second
	testTick = 10 * time.Millisecond
)

// syncExec runs completion callbacks inline on the finishing goroutine,
// which keeps delivery timing deterministic for tests.
func syncExec(fn func()) { fn() }

func TestAddCoalescesConcurrentRequests(t *testing.T) {
	t.Parallel()

	r := flight.New[string, int](syncExec)

	gate := make(chan struct{})
	var starts atomic.Int32

	const n = 8
	var mu sync.Mutex
	var got []int
	var order []flight.RequestID
	var wg sync.WaitGroup
	wg.Add(n)

	ids := make([]flight.RequestID, 0, n)
	for i := 0; i < n; i++ {
		var id flight.RequestID
		id, created := r.Add("task",
			func(finish func(int)) {
				starts.Add(1)
				<-gate
				finish(42)
			},
			nil, nil,
			func(v int) {
				mu.Lock()
				order = append(order, id)
				got = append(got, v)
				mu.Unlock()
				wg.Done()
			},
		)
		ids = append(ids, id)
		assert.Equal(t, i == 0, created, "only the first request creates the task")
	}

	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), starts.Load(), "start must run exactly once")
	require.Len(t, got, n)
	for _, v := range got {
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, ids, order, "results must be delivered in insertion order")
}

func TestTaskDoneRunsBeforeRequestCallbacks(t *testing.T) {
	t.Parallel()

	r := flight.New[string, string](syncExec)

	var mu sync.Mutex
	var events []string
	done := make(chan struct{})

	r.Add("task",
		func(finish func(string)) { finish("v") },
		nil,
		func(v string) {
			mu.Lock()
			events = append(events, "taskDone")
			mu.Unlock()
		},
		func(v string) {
			mu.Lock()
			events = append(events, "request")
			mu.Unlock()
			close(done)
		},
	)

	<-done
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"taskDone", "request"}, events)
}

func TestCancelDetachesOneRequest(t *testing.T) {
	t.Parallel()

	r := flight.New[string, string](syncExec)

	gate := make(chan struct{})
	var cancelled atomic.Bool
	first := make(chan string, 1)
	second := make(chan string, 1)

	r.Add("task",
		func(finish func(string)) {
			<-gate
			finish("ok")
		},
		func() { cancelled.Store(true) },
		nil,
		func(v string) { first <- v },
	)
	id2, created := r.Add("task", nil, nil, nil, func(v string) { second <- v })
	require.False(t, created)

	r.Cancel(id2)
	close(gate)

	assert.Equal(t, "ok", <-first)
	select {
	case v := <-second:
		t.Fatalf("cancelled request received %q", v)
	default:
	}
	assert.False(t, cancelled.Load(), "task cancel must not fire while requests remain")
}

func TestCancelAllFiresTaskCancelOnce(t *testing.T) {
	t.Parallel()

	r := flight.New[string, int](syncExec)

	gate := make(chan struct{})
	workerDone := make(chan struct{})
	var cancelCount atomic.Int32
	var delivered atomic.Int32

	done := func(int) { delivered.Add(1) }
	id1, _ := r.Add("task",
		func(finish func(int)) {
			<-gate
			finish(1)
			close(workerDone)
		},
		func() { cancelCount.Add(1) },
		func(int) { delivered.Add(1) },
		done,
	)
	id2, _ := r.Add("task", nil, nil, nil, done)

	// Hammer both ids from several goroutines; detach happens at most once
	// per id and the task cancel exactly once overall.
	var wg sync.WaitGroup
	for _, id := range []flight.RequestID{id1, id1, id2, id2, id1, id2} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Cancel(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), cancelCount.Load())

	// The abandoned work still finishes; its result must be discarded.
	close(gate)
	<-workerDone
	assert.Equal(t, int32(0), delivered.Load())
}

func TestCancelUnknownRequestIsNoop(t *testing.T) {
	t.Parallel()

	r := flight.New[string, int](syncExec)
	r.Cancel(12345)

	// Cancelling after completion is also a no-op.
	done := make(chan struct{})
	id, _ := r.Add("task",
		func(finish func(int)) { finish(7) },
		nil, nil,
		func(int) { close(done) },
	)
	<-done
	r.Cancel(id)
}

func TestTaskIDReusableAfterCompletion(t *testing.T) {
	t.Parallel()

	r := flight.New[string, int](syncExec)

	run := func(want int) {
		done := make(chan int, 1)
		_, created := r.Add("task",
			func(finish func(int)) { finish(want) },
			nil, nil,
			func(v int) { done <- v },
		)
		require.True(t, created)
		assert.Equal(t, want, <-done)
	}

	run(1)
	run(2)
}

func TestCancelAllThenReAddStartsFresh(t *testing.T) {
	t.Parallel()

	r := flight.New[string, int](syncExec)

	gate := make(chan struct{})
	var starts atomic.Int32

	id, _ := r.Add("task",
		func(finish func(int)) {
			starts.Add(1)
			<-gate
			finish(0)
		},
		nil, nil, nil,
	)
	r.Cancel(id)

	done := make(chan int, 1)
	_, created := r.Add("task",
		func(finish func(int)) {
			starts.Add(1)
			finish(9)
		},
		nil, nil,
		func(v int) { done <- v },
	)
	require.True(t, created, "a cancelled task must not linger under its id")
	assert.Equal(t, 9, <-done)

	close(gate)
	assert.Eventually(t, func() bool { return starts.Load() == 2 }, testWait, testTick)
}
