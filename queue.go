package wavedit

import "sync"

// Queue is a single-threaded FIFO of deferred tasks. Tasks submitted while a
// tick is running wait for the next tick, so a task never runs inside the
// call that scheduled it.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
}

// Submit schedules fn for the next tick.
func (q *Queue) Submit(fn func()) {
	if fn == nil {
		return
	}

	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Tick runs the tasks queued before the call and returns how many ran.
func (q *Queue) Tick() int {
	q.mu.Lock()
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}

	return len(batch)
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}
