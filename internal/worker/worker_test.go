package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolProcessesJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool[int](ctx, 2)
	jobs := make(chan int, 8)
	var sum atomic.Int64
	var wg sync.WaitGroup
	wg.Add(3)
	p.Run(jobs, func(_ context.Context, j int) {
		sum.Add(int64(j))
		wg.Done()
	})

	for _, j := range []int{1, 2, 3} {
		if err := p.Enqueue(ctx, jobs, j); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	wg.Wait()
	if sum.Load() != 6 {
		t.Errorf("sum = %d, want 6", sum.Load())
	}
}

func TestSemaphoreBoundsConcurrency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool[int](ctx, 1)
	var inFlight, maxInFlight atomic.Int32
	var wg sync.WaitGroup

	// Two pumps sharing one slot.
	for i := 0; i < 2; i++ {
		jobs := make(chan int, 4)
		p.Run(jobs, func(_ context.Context, j int) {
			cur := inFlight.Add(1)
			for {
				seen := maxInFlight.Load()
				if cur <= seen || maxInFlight.CompareAndSwap(seen, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			wg.Done()
		})
		for j := 0; j < 3; j++ {
			wg.Add(1)
			if err := p.Enqueue(ctx, jobs, j); err != nil {
				t.Fatalf("Enqueue: %v", err)
			}
		}
	}
	wg.Wait()
	if maxInFlight.Load() > 1 {
		t.Errorf("max in-flight = %d, want <= 1", maxInFlight.Load())
	}
}

func TestEnqueueFailsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool[int](ctx, 1)
	cancel()

	jobs := make(chan int) // unbuffered, nobody reading
	if err := p.Enqueue(context.Background(), jobs, 1); err == nil {
		t.Error("expected error after pool context cancel")
	}
}
