package dispatch

import (
	"sync"
	"time"
)

// task is one pending delayed registration. gen distinguishes it from
// earlier registrations under the same id whose timers may still be in
// flight.
type task struct {
	timer *time.Timer
	gen   uint64
}

// Scheduler runs delayed tasks keyed by id. Registering an id that already
// has a pending task replaces it; the task fires at most once. Used for
// retry backoff timers and future-scheduled messages.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	gen     uint64
	stopped bool
}

// NewScheduler creates an empty delayed-task scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// Register queues fn to run after delay under the given id. A pending task
// with the same id is cancelled first; a replaced timer that already fired
// and is waiting on the lock sees its generation superseded and does
// nothing.
func (s *Scheduler) Register(id string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if old, ok := s.tasks[id]; ok {
		old.timer.Stop()
	}

	s.gen++
	gen := s.gen
	t := &task{gen: gen}
	t.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		cur, ok := s.tasks[id]
		if !ok || cur.gen != gen || s.stopped {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, id)
		s.mu.Unlock()
		fn()
	})
	s.tasks[id] = t
}

// Cancel removes a pending task. It reports whether a task was still
// pending for the id.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	t.timer.Stop()
	return true
}

// Pending reports how many tasks are waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop cancels every pending task. The scheduler accepts no further
// registrations afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, id)
	}
}
