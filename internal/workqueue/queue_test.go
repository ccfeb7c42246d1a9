package workqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		if !q.Enqueue(i) {
			t.Fatalf("Enqueue(%d) = false", i)
		}
	}
	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}
	ctx := context.Background()
	for want := 0; want < 5; want++ {
		got, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() failed: %v", err)
		}
		if got != want {
			t.Errorf("Dequeue() = %d, want %d", got, want)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_DuplicatesKept(t *testing.T) {
	q := New[string]()
	q.Enqueue("a")
	q.Enqueue("a")
	q.Enqueue("a")
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (no dedup at enqueue)", q.Len())
	}
}

func TestQueue_DequeueBlocksUntilItem(t *testing.T) {
	q := New[int]()
	got := make(chan int, 1)
	go func() {
		v, err := q.Dequeue(context.Background())
		if err == nil {
			got <- v
		}
	}()

	select {
	case v := <-got:
		t.Fatalf("Dequeue() returned %d before any Enqueue", v)
	case <-time.After(30 * time.Millisecond):
	}

	q.Enqueue(42)
	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("Dequeue() = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue() did not wake after Enqueue")
	}
}

func TestQueue_DequeueContextCancel(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.Dequeue(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Dequeue() err = %v, want DeadlineExceeded", err)
	}
}

func TestQueue_CloseDrainsThenErrClosed(t *testing.T) {
	q := New[int]()
	q.Enqueue(1)
	q.Enqueue(2)
	q.Close()
	q.Close() // idempotent

	if q.Enqueue(3) {
		t.Error("Enqueue() after Close = true, want false")
	}
	ctx := context.Background()
	for _, want := range []int{1, 2} {
		v, err := q.Dequeue(ctx)
		if err != nil || v != want {
			t.Fatalf("Dequeue() = %d, %v; want %d, nil", v, err, want)
		}
	}
	if _, err := q.Dequeue(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Dequeue() on drained closed queue err = %v, want ErrClosed", err)
	}
}

func TestQueue_CloseWakesWaiters(t *testing.T) {
	q := New[int]()
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := q.Dequeue(context.Background())
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	q.Close()
	for i := 0; i < 3; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrClosed) {
				t.Errorf("waiter err = %v, want ErrClosed", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Close() did not wake a waiting consumer")
		}
	}
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	const producers, perProducer, consumers = 8, 500, 4
	q := New[int]()
	ctx := context.Background()

	var mu sync.Mutex
	seen := make(map[int]int)
	var cwg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, err := q.Dequeue(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	var pwg sync.WaitGroup
	for p := 0; p < producers; p++ {
		pwg.Add(1)
		go func(p int) {
			defer pwg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(p*perProducer + i)
			}
		}(p)
	}
	pwg.Wait()
	q.Close()
	cwg.Wait()

	if len(seen) != producers*perProducer {
		t.Fatalf("consumed %d distinct items, want %d", len(seen), producers*perProducer)
	}
	for v, n := range seen {
		if n != 1 {
			t.Errorf("item %d consumed %d times", v, n)
		}
	}
}
