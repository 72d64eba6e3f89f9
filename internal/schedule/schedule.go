// Package schedule runs delayed callbacks that are cancelled together when
// their owner is closed.
package schedule

import (
	"errors"
	"sync"
	"time"
)

var ErrClosed = errors.New("scheduler closed")

// Scheduler owns a set of pending callbacks. After Close returns, no
// callback scheduled on it will start, and any that had already started
// have finished.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	next    uint64
	closed  bool
	running sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[uint64]*time.Timer)}
}

// After runs fn once d has elapsed. A non-positive d runs fn before After
// returns. The returned cancel func reports whether it stopped fn from running.
// fn must not call Close on the same scheduler.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func() bool, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() bool { return false }, ErrClosed
	}

	if d <= 0 {
		s.running.Add(1)
		s.mu.Unlock()
		defer s.running.Done()
		fn()
		return func() bool { return false }, nil
	}

	id := s.next
	s.next++
	s.timers[id] = time.AfterFunc(d, func() {
		if !s.claim(id) {
			return
		}
		defer s.running.Done()
		fn()
	})
	s.mu.Unlock()

	return func() bool { return s.cancel(id) }, nil
}

// claim removes id from the pending set and marks its callback as running.
func (s *Scheduler) claim(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timers[id]; !ok || s.closed {
		return false
	}
	delete(s.timers, id)
	s.running.Add(1)
	return true
}

func (s *Scheduler) cancel(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, id)
	return true
}

// Pending returns the number of callbacks waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close cancels every pending callback and waits for running ones.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.running.Wait()
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.running.Wait()
}
