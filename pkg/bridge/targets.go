package bridge

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// TargetStore holds the most recent gaze target streamed from the AR
// device. Only the latest value matters; a newer target supersedes an
// older one. Implements session.TargetSource.
type TargetStore struct {
	mu     sync.RWMutex
	target r3.Vec
	ok     bool
}

// NewTargetStore creates an empty store.
func NewTargetStore() *TargetStore {
	return &TargetStore{}
}

// Set records the latest gaze target.
func (s *TargetStore) Set(v r3.Vec) {
	s.mu.Lock()
	s.target = v
	s.ok = true
	s.mu.Unlock()
}

// Target returns the latest gaze target; ok is false until a first
// target has arrived.
func (s *TargetStore) Target() (r3.Vec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target, s.ok
}

// Clear forgets the current target (e.g. when the AR device drops).
func (s *TargetStore) Clear() {
	s.mu.Lock()
	s.ok = false
	s.mu.Unlock()
}
