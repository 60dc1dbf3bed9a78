// Package lookat synthesizes natural-looking head, body, and antenna
// motion from a 3D gaze target. Each tick it band-limits the rate of
// change toward the desired angles, derives a motion-intensity scalar
// from head velocity, and layers procedural wobble on top for character.
package lookat

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/reachy-ar/pkg/daemon"
)

// singularEps is the horizontal-distance threshold below which the
// target is treated as directly above or below the head pivot.
const singularEps = 0.001

// TrackingState is the smoothed pose state, advanced once per tick.
type TrackingState struct {
	HeadYaw      float64 // world/body-combined frame
	HeadPitch    float64
	HeadRoll     float64
	BodyYaw      float64
	LeftAntenna  float64
	RightAntenna float64

	// MotionIntensity in [0,1] is an EMA of head angular velocity,
	// driving antenna amplitude.
	MotionIntensity float64

	lastHeadYaw   float64
	lastHeadPitch float64
}

// Frame is one tick's output, ready for the set-target transport call.
// Antennas are ordered [right, left].
type Frame struct {
	Head     daemon.Pose
	Antennas [2]float64
	BodyYaw  float64
}

// Synthesizer owns a TrackingState and advances it one frame at a time.
// Not safe for concurrent use; it belongs to a single frame hook.
type Synthesizer struct {
	cfg   Config
	state TrackingState

	pitchWobble Wobble
	yawWobble   Wobble
	rollWobble  Wobble
	leftWobble  Wobble
	rightWobble Wobble
}

// New creates a Synthesizer with zeroed state.
func New(cfg Config) *Synthesizer {
	return &Synthesizer{
		cfg:         cfg,
		pitchWobble: Wobble{Speed: cfg.WobbleSpeed, Phase: 0},
		yawWobble:   Wobble{Speed: cfg.WobbleSpeed, Phase: 1.9},
		rollWobble:  Wobble{Speed: cfg.WobbleSpeed, Phase: 3.7},
		leftWobble:  Wobble{Speed: cfg.WobbleSpeed, Phase: 0.8},
		rightWobble: Wobble{Speed: cfg.WobbleSpeed, Phase: 4.4},
	}
}

// Reset zeroes the tracking state for a fresh session.
func (s *Synthesizer) Reset() {
	s.state = TrackingState{}
}

// State returns a copy of the current tracking state.
func (s *Synthesizer) State() TrackingState {
	return s.state
}

// Step advances the state by one frame and returns the pose to transmit.
// elapsed is session-relative time (wobble phase continuity), target and
// refPos are in a shared 3D frame with Y up, refYaw rotates the
// configured head offset into that frame.
func (s *Synthesizer) Step(elapsed time.Duration, target, refPos r3.Vec, refYaw float64) Frame {
	cfg := &s.cfg
	st := &s.state
	t := elapsed.Seconds()

	// 1. Desired angles from the origin->target vector.
	origin := r3.Add(refPos, rotateY(cfg.HeadOffset, refYaw))
	d := r3.Sub(target, origin)
	horizontal := math.Hypot(d.X, d.Z)

	var desiredYaw, desiredPitch float64
	if horizontal < singularEps {
		// Looking straight up or down: atan2 yaw is undefined, so hold
		// the previous yaw and snap pitch to the matching extreme.
		desiredYaw = st.HeadYaw
		if d.Y > 0 {
			desiredPitch = cfg.MinPitch
		} else {
			desiredPitch = cfg.MaxPitch
		}
	} else {
		desiredYaw = math.Atan2(d.X, d.Z)
		desiredPitch = -math.Atan2(d.Y, horizontal)
	}

	// 2. Head smoothing: fraction toward target, then step clamp.
	st.lastHeadYaw = st.HeadYaw
	st.lastHeadPitch = st.HeadPitch
	st.HeadYaw = approach(st.HeadYaw, desiredYaw, cfg.YawSmoothing, cfg.MaxYawStep)
	st.HeadPitch = approach(st.HeadPitch, desiredPitch, cfg.PitchSmoothing, cfg.MaxPitchStep)

	// 3. Motion intensity from this tick's head velocity.
	velocity := math.Hypot(st.HeadYaw-st.lastHeadYaw, st.HeadPitch-st.lastHeadPitch)
	raw := clamp(velocity/cfg.FullIntensityVelocity, 0, 1)
	st.MotionIntensity += cfg.IntensitySmoothing * (raw - st.MotionIntensity)

	// 4. Roll is wobble-only head tilt, no tracking component.
	st.HeadRoll = clamp(cfg.RollWobbleAmp*s.rollWobble.At(t), -cfg.MaxHeadRoll, cfg.MaxHeadRoll)

	// 5. Pitch to mechanical limits.
	st.HeadPitch = clamp(st.HeadPitch, cfg.MinPitch, cfg.MaxPitch)

	// 6. Body follows head yaw. Past half the head-relative limit the
	// rate doubles; past the limit the gain jumps so the excess is
	// recovered within a bounded number of frames.
	relative := st.HeadYaw - st.BodyYaw
	var bodyDelta float64
	switch {
	case math.Abs(relative) > cfg.MaxHeadYaw:
		excess := math.Abs(relative) - cfg.MaxHeadYaw
		bodyDelta = math.Copysign(cfg.MaxHeadYaw*cfg.BodyFollowRate*2+excess*cfg.BodyFollowRate*8, relative)
	case math.Abs(relative) > cfg.MaxHeadYaw/2:
		bodyDelta = relative * cfg.BodyFollowRate * 2
	default:
		bodyDelta = relative * cfg.BodyFollowRate
	}
	st.BodyYaw += clampStep(bodyDelta, cfg.MaxBodyStep)

	// 7. Body and combined head yaw limits.
	st.BodyYaw = clamp(st.BodyYaw, -cfg.MaxBodyYaw, cfg.MaxBodyYaw)
	combined := cfg.MaxBodyYaw + cfg.MaxHeadYaw
	st.HeadYaw = clamp(st.HeadYaw, -combined, combined)

	// 8. Antennas: wobble plus a "listening toward the look direction"
	// coupling, amplitude boosted by motion intensity.
	amplitude := cfg.AntennaBaseAmp + st.MotionIntensity*cfg.AntennaMotionBonus
	desiredLeft := amplitude*s.leftWobble.At(t) + cfg.AntennaYawCoupling*st.HeadYaw
	desiredRight := amplitude*s.rightWobble.At(t) - cfg.AntennaYawCoupling*st.HeadYaw
	st.LeftAntenna = clamp(
		approach(st.LeftAntenna, desiredLeft, cfg.AntennaSmoothing, cfg.MaxAntennaStep),
		-cfg.MaxAntenna, cfg.MaxAntenna)
	st.RightAntenna = clamp(
		approach(st.RightAntenna, desiredRight, cfg.AntennaSmoothing, cfg.MaxAntennaStep),
		-cfg.MaxAntenna, cfg.MaxAntenna)

	// 9. Wobble is layered over the transmitted pitch/yaw only; the
	// state keeps the smoothed base so next tick's velocity is clean.
	outPitch := clamp(st.HeadPitch+cfg.PitchWobbleAmp*s.pitchWobble.At(t), cfg.MinPitch, cfg.MaxPitch)
	outYaw := st.HeadYaw + cfg.YawWobbleAmp*s.yawWobble.At(t)

	return Frame{
		Head: daemon.Pose{
			Roll:  st.HeadRoll,
			Pitch: outPitch,
			Yaw:   outYaw,
		},
		Antennas: [2]float64{st.RightAntenna, st.LeftAntenna},
		BodyYaw:  st.BodyYaw,
	}
}

// rotateY rotates v by yaw radians about the vertical axis.
func rotateY(v r3.Vec, yaw float64) r3.Vec {
	if yaw == 0 {
		return v
	}
	rot := r3.NewRotation(yaw, r3.Vec{Y: 1})
	return rot.Rotate(v)
}

// approach moves current toward desired by a fixed fraction of the
// remaining error, with the resulting step clamped to maxStep.
func approach(current, desired, fraction, maxStep float64) float64 {
	return current + clampStep((desired-current)*fraction, maxStep)
}

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clampStep restricts a delta to [-maxStep, maxStep].
func clampStep(delta, maxStep float64) float64 {
	if delta > maxStep {
		return maxStep
	}
	if delta < -maxStep {
		return -maxStep
	}
	return delta
}
