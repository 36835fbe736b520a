// internal/game/scheduler.go
package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type task struct {
	timer clockwork.Timer
}

// Scheduler runs one-shot deferred callbacks keyed by name, e.g. "lobby:12345"
// or "game:<uuid>". Scheduling a key again replaces the pending task. A callback
// only runs if its task is still the one registered under its key when the
// timer fires, so a cancelled or replaced task never runs late.
type Scheduler struct {
	clock clockwork.Clock

	mu    sync.Mutex
	tasks map[string]*task
}

// NewScheduler returns a Scheduler driven by clock.
func NewScheduler(clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		tasks: make(map[string]*task),
	}
}

// Schedule arms fn to run once after d under key, replacing any pending task.
func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[key]; ok {
		old.timer.Stop()
	}
	t := &task{}
	s.tasks[key] = t
	t.timer = s.clock.AfterFunc(d, func() {
		if !s.claim(key, t) {
			return
		}
		fn()
	})
}

// claim removes t from the table if it is still the current task for key.
func (s *Scheduler) claim(key string, t *task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[key] != t {
		return false
	}
	delete(s.tasks, key)
	return true
}

// Cancel stops the task under key. Reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Pending reports whether a task is armed under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Len returns the number of armed tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// StopAll cancels every pending task.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
}

func lobbyTaskKey(code string) string { return "lobby:" + code }

func gameTaskKey(id string) string { return "game:" + id }
