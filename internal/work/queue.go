// Package work provides the asynchronous task executor packet handlers
// schedule heavy work onto. There is no ordering guarantee between tasks
// submitted for different sessions and no mutual exclusion on shared
// entity state: handlers that commit cross-party effects must re-validate
// ground truth at commit time instead of trusting earlier snapshots.
package work

import (
	"sync"

	"go.uber.org/zap"
)

// Queue is a fixed pool of workers draining a buffered task channel.
type Queue struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool

	log *zap.Logger
}

// NewQueue starts a pool of workers.
func NewQueue(workers, depth int, log *zap.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		tasks: make(chan func(), depth),
		log:   log,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Submit schedules a task. Never blocks the caller: if the queue is full
// the task runs on its own goroutine. The task owns everything it
// captured; the caller must not reuse those values after submission.
func (q *Queue) Submit(task func()) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		q.log.Debug("task submitted after stop, discarded")
		return
	}
	select {
	case q.tasks <- task:
		q.mu.Unlock()
	default:
		q.mu.Unlock()
		q.log.Debug("work queue full, spawning task goroutine")
		go q.run(task)
	}
}

// Stop rejects further submissions and waits for queued tasks to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.tasks)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for task := range q.tasks {
		q.run(task)
	}
}

// run executes one task with panic recovery so a single bad task cannot
// take down a worker.
func (q *Queue) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			q.log.Error("task panic recovered", zap.Any("panic", rec))
		}
	}()
	task()
}
