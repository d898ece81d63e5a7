package sched

import "sync"

// injector is the global FIFO queue new tasks enter through.
//
// FIFO here is deliberate: independently submitted work is served fairly,
// while the per-worker deques stay LIFO for locality. The injector is
// unbounded so fan-out bursts never block a spawner.
//
// Workers take batches, not single tasks, so the injector's mutex is
// touched once per batch and stays off the per-task hot path. The signal
// channel has a buffer of one and coalesces: it marks "work may be
// available", not one token per task.
type injector struct {
	mu     sync.Mutex
	tasks  []*Task
	closed bool
	signal chan struct{}
}

func newInjector() *injector {
	return &injector{
		tasks:  make([]*Task, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// push adds a task to the back of the queue.
// Returns false if the injector is closed.
func (q *injector) push(t *Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, t)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// drainUpTo removes and returns at most max tasks from the front.
// Returns nil when the queue is empty.
func (q *injector) drainUpTo(max int) []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.tasks)
	if n == 0 {
		return nil
	}
	if n > max {
		n = max
	}

	batch := make([]*Task, n)
	copy(batch, q.tasks[:n])

	// Nil out drained slots so the backing array does not retain task
	// pointers under steady load.
	for i := 0; i < n; i++ {
		q.tasks[i] = nil
	}
	if n == len(q.tasks) {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[n:]
	}
	return batch
}

// length returns the current queue length.
func (q *injector) length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// close marks the injector closed and wakes all waiters.
func (q *injector) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
