// Package frame provides the per-frame callback scheduler. All control
// work in this repo runs on one goroutine ticking at a fixed rate;
// components register named hooks and tear them down when their mode
// ends, which is what keeps the synthesizer and the idle poll from ever
// running concurrently.
package frame

import (
	"sort"
	"sync"
	"time"
)

// DefaultRate is the control frame interval (50Hz).
const DefaultRate = 20 * time.Millisecond

// Hook is a per-frame callback.
type Hook func(now time.Time)

// Registrar is the subset of Scheduler that components use to install
// and remove per-frame hooks.
type Registrar interface {
	Register(name string, h Hook)
	Unregister(name string)
}

// Scheduler invokes registered hooks once per frame from a single
// goroutine. Register/Unregister are safe from any goroutine and from
// within hooks.
type Scheduler struct {
	rate time.Duration

	mu    sync.Mutex
	hooks map[string]Hook

	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler with the given frame interval.
func NewScheduler(rate time.Duration) *Scheduler {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Scheduler{
		rate:  rate,
		hooks: make(map[string]Hook),
		stop:  make(chan struct{}),
	}
}

// Rate returns the frame interval.
func (s *Scheduler) Rate() time.Duration {
	return s.rate
}

// Register installs a hook under the given name, replacing any previous
// hook with that name.
func (s *Scheduler) Register(name string, h Hook) {
	s.mu.Lock()
	s.hooks[name] = h
	s.mu.Unlock()
}

// Unregister removes the named hook. Removing an absent hook is a no-op.
func (s *Scheduler) Unregister(name string) {
	s.mu.Lock()
	delete(s.hooks, name)
	s.mu.Unlock()
}

// Has reports whether a hook is registered under the given name.
func (s *Scheduler) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.hooks[name]
	return ok
}

// Hooks returns the sorted names of registered hooks.
func (s *Scheduler) Hooks() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.hooks))
	for name := range s.hooks {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)
	return names
}

// Run starts the frame loop. Blocks until Stop is called.
func (s *Scheduler) Run() {
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.Step(now)
		}
	}
}

// Step runs one frame's worth of hooks. Run calls this every tick;
// tests and embedders with their own loop may drive it directly.
func (s *Scheduler) Step(now time.Time) {
	s.mu.Lock()
	frame := make([]Hook, 0, len(s.hooks))
	for _, h := range s.hooks {
		frame = append(frame, h)
	}
	s.mu.Unlock()

	for _, h := range frame {
		h(now)
	}
}

// Stop halts the frame loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
