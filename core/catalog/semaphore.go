package catalog

import "sync"

// semaphore is an unbounded counting semaphore.
type semaphore struct {
	mu     sync.Mutex
	cond   sync.Cond
	count  int
	closed bool
}

func newSemaphore() *semaphore {
	s := &semaphore{}
	s.cond.L = &s.mu
	return s
}

// Add makes n more units available.
func (s *semaphore) Add(n int) {
	s.mu.Lock()
	s.count += n
	s.mu.Unlock()
	if n == 1 {
		s.cond.Signal()
	} else {
		s.cond.Broadcast()
	}
}

// Wait blocks until a unit is available and takes it. It returns false once
// the semaphore is closed.
func (s *semaphore) Wait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return false
	}
	s.count--
	return true
}

// TryWait takes a unit if one is available without blocking.
func (s *semaphore) TryWait() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 || s.closed {
		return false
	}
	s.count--
	return true
}

// Close wakes every waiter. Subsequent waits fail.
func (s *semaphore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
