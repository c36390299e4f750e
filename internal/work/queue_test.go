package work

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestQueueRunsTasks(t *testing.T) {
	q := NewQueue(2, 8, zap.NewNop())
	defer q.Stop()

	var n atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		q.Submit(func() {
			n.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	if n.Load() != 20 {
		t.Fatalf("ran %d tasks, want 20", n.Load())
	}
}

func TestQueueOverflowStillRuns(t *testing.T) {
	q := NewQueue(1, 1, zap.NewNop())
	defer q.Stop()

	block := make(chan struct{})
	q.Submit(func() { <-block })

	var n atomic.Int32
	var wg sync.WaitGroup
	// More than the depth fits; overflow tasks must run anyway.
	for i := 0; i < 10; i++ {
		wg.Add(1)
		q.Submit(func() {
			n.Add(1)
			wg.Done()
		})
	}
	close(block)
	wg.Wait()
	if n.Load() != 10 {
		t.Fatalf("ran %d overflow tasks, want 10", n.Load())
	}
}

func TestQueueStopDrains(t *testing.T) {
	q := NewQueue(1, 16, zap.NewNop())
	var n atomic.Int32
	for i := 0; i < 5; i++ {
		q.Submit(func() {
			time.Sleep(time.Millisecond)
			n.Add(1)
		})
	}
	q.Stop()
	if n.Load() != 5 {
		t.Fatalf("Stop returned before tasks drained: %d of 5", n.Load())
	}
}

func TestQueueSubmitAfterStopDiscards(t *testing.T) {
	q := NewQueue(1, 4, zap.NewNop())
	q.Stop()

	ran := make(chan struct{}, 1)
	q.Submit(func() { ran <- struct{}{} })
	select {
	case <-ran:
		t.Fatal("task ran after Stop")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestQueueTaskPanicDoesNotKillWorker(t *testing.T) {
	q := NewQueue(1, 4, zap.NewNop())
	defer q.Stop()

	q.Submit(func() { panic("boom") })

	done := make(chan struct{})
	q.Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after task panic")
	}
}
