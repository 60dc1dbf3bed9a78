package lookat

import "math"

// Wobble is a deterministic procedural noise signal: three summed sine
// waves at related but distinct frequencies. A pure function of elapsed
// time, so the motion is smooth and phase-continuous across ticks while
// looking non-repeating. Output is a unit signal in roughly [-1, 1];
// callers apply their own amplitude.
type Wobble struct {
	Speed float64 // base angular frequency, rad/s
	Phase float64 // phase offset, decorrelates instances
}

// At evaluates the signal at elapsed session time t (seconds).
func (w Wobble) At(t float64) float64 {
	p := t*w.Speed + w.Phase
	return 0.5*math.Sin(p) + 0.3*math.Sin(p*1.7+1.1) + 0.2*math.Sin(p*2.3+2.4)
}
