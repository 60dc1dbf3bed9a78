// Package tween animates a value from 0 to 1 over a fixed duration on
// the frame scheduler, with smoothstep easing. A tween resolves in one
// of two ways, completed or cancelled; both converge to the same
// caller-visible continuation via Handle.Wait.
package tween

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/reachy-ar/pkg/frame"
)

// Outcome reports how a tween resolved.
type Outcome int

const (
	// Completed means the tween ran its full duration.
	Completed Outcome = iota
	// Cancelled means Cancel was called before completion.
	Cancelled
)

// Handle tracks an in-flight tween.
type Handle struct {
	reg  frame.Registrar
	name string

	mu       sync.Mutex
	resolved bool
	outcome  Outcome
	done     chan struct{}
}

// Start registers a per-frame hook under name that calls apply with an
// eased alpha in [0,1] each frame. apply(1) is guaranteed exactly once
// on completion; a cancelled tween leaves the value wherever it was.
func Start(reg frame.Registrar, name string, duration time.Duration, apply func(alpha float64)) *Handle {
	h := &Handle{
		reg:  reg,
		name: name,
		done: make(chan struct{}),
	}

	if duration <= 0 {
		apply(1)
		h.resolve(Completed)
		return h
	}

	var start time.Time
	reg.Register(name, func(now time.Time) {
		if h.isResolved() {
			return
		}
		if start.IsZero() {
			start = now
		}
		elapsed := now.Sub(start)
		if elapsed >= duration {
			apply(1)
			h.resolve(Completed)
			return
		}
		apply(smoothstep(elapsed.Seconds() / duration.Seconds()))
	})
	return h
}

// Cancel resolves the tween immediately through the cancellation path.
// Safe to call after completion; the first resolution wins.
func (h *Handle) Cancel() {
	h.resolve(Cancelled)
}

// Wait blocks until the tween resolves or the context ends.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.outcome, nil
	case <-ctx.Done():
		return Cancelled, ctx.Err()
	}
}

func (h *Handle) isResolved() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolved
}

func (h *Handle) resolve(o Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved {
		return
	}
	h.resolved = true
	h.outcome = o
	h.reg.Unregister(h.name)
	close(h.done)
}

// Lerp performs linear interpolation.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// smoothstep provides smooth easing (slow start/end).
func smoothstep(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
