package serial

import (
	"sync"
	"testing"
)

func TestQueueRunsInOrder(t *testing.T) {
	t.Parallel()

	q := NewQueue()

	const n = 100
	var mu sync.Mutex
	got := make([]int, 0, n)
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		i := i
		q.Async(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			wg.Done()
		})
	}
	wg.Wait()
	q.Close()

	if len(got) != n {
		t.Fatalf("ran %d functions, want %d", len(got), n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestQueueCloseDrains(t *testing.T) {
	t.Parallel()

	q := NewQueue()

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		q.Async(func() {
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	if ran != 10 {
		t.Fatalf("ran = %d, want 10 (Close must drain)", ran)
	}
}

func TestQueueAsyncAfterCloseDropped(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	q.Close()

	q.Async(func() {
		t.Error("function ran after Close")
	})
	q.Close()
}
