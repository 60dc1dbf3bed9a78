package lookat

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// tick is one frame at the default 50Hz rate.
const tick = 20 * time.Millisecond

// testConfig returns the default tuning with a zero head offset so
// desired angles can be computed directly from the target.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HeadOffset = r3.Vec{}
	return cfg
}

func stepN(s *Synthesizer, n int, target r3.Vec) Frame {
	var f Frame
	for i := 0; i < n; i++ {
		f = s.Step(time.Duration(i)*tick, target, r3.Vec{}, 0)
	}
	return f
}

func TestStep_RateLimit(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)

	// Adversarial jump: target far off to the side and high up.
	target := r3.Vec{X: 100, Y: 50, Z: -100}

	prev := s.State()
	for i := 0; i < 400; i++ {
		s.Step(time.Duration(i)*tick, target, r3.Vec{}, 0)
		st := s.State()

		if d := math.Abs(st.HeadYaw - prev.HeadYaw); d > cfg.MaxYawStep+1e-9 {
			t.Fatalf("tick %d: yaw step %v exceeds %v", i, d, cfg.MaxYawStep)
		}
		if d := math.Abs(st.HeadPitch - prev.HeadPitch); d > cfg.MaxPitchStep+1e-9 {
			t.Fatalf("tick %d: pitch step %v exceeds %v", i, d, cfg.MaxPitchStep)
		}
		if d := math.Abs(st.LeftAntenna - prev.LeftAntenna); d > cfg.MaxAntennaStep+1e-9 {
			t.Fatalf("tick %d: left antenna step %v exceeds %v", i, d, cfg.MaxAntennaStep)
		}
		if d := math.Abs(st.RightAntenna - prev.RightAntenna); d > cfg.MaxAntennaStep+1e-9 {
			t.Fatalf("tick %d: right antenna step %v exceeds %v", i, d, cfg.MaxAntennaStep)
		}
		prev = st
	}
}

func TestStep_MechanicalClamps(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)
	rng := rand.New(rand.NewSource(42))

	combined := cfg.MaxBodyYaw + cfg.MaxHeadYaw
	for i := 0; i < 2000; i++ {
		// Adversarial target sequence: random jumps all over the space.
		target := r3.Vec{
			X: (rng.Float64() - 0.5) * 40,
			Y: (rng.Float64() - 0.5) * 40,
			Z: (rng.Float64() - 0.5) * 40,
		}
		f := s.Step(time.Duration(i)*tick, target, r3.Vec{}, 0)
		st := s.State()

		if st.HeadPitch < cfg.MinPitch || st.HeadPitch > cfg.MaxPitch {
			t.Fatalf("tick %d: pitch %v outside [%v, %v]", i, st.HeadPitch, cfg.MinPitch, cfg.MaxPitch)
		}
		if f.Head.Pitch < cfg.MinPitch || f.Head.Pitch > cfg.MaxPitch {
			t.Fatalf("tick %d: transmitted pitch %v outside limits", i, f.Head.Pitch)
		}
		if math.Abs(st.BodyYaw) > cfg.MaxBodyYaw {
			t.Fatalf("tick %d: body yaw %v outside ±%v", i, st.BodyYaw, cfg.MaxBodyYaw)
		}
		if math.Abs(st.HeadYaw) > combined {
			t.Fatalf("tick %d: head yaw %v outside ±%v", i, st.HeadYaw, combined)
		}
		if math.Abs(st.LeftAntenna) > cfg.MaxAntenna || math.Abs(st.RightAntenna) > cfg.MaxAntenna {
			t.Fatalf("tick %d: antennas (%v, %v) outside ±%v", i, st.LeftAntenna, st.RightAntenna, cfg.MaxAntenna)
		}
		if st.MotionIntensity < 0 || st.MotionIntensity > 1 {
			t.Fatalf("tick %d: motion intensity %v outside [0,1]", i, st.MotionIntensity)
		}
	}
}

func TestStep_HeadRelativeYawRecovery(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)

	// Seed a state violating the head-relative limit, with the target
	// held where the head already points.
	s.state.HeadYaw = 1.0
	s.state.BodyYaw = 0
	target := r3.Vec{X: 10 * math.Sin(1.0), Z: 10 * math.Cos(1.0)}

	excess := math.Abs(s.state.HeadYaw-s.state.BodyYaw) - cfg.MaxHeadYaw
	if excess <= 0 {
		t.Fatal("test setup: no excess to recover")
	}

	recovered := false
	for i := 0; i < 60; i++ {
		s.Step(time.Duration(i)*tick, target, r3.Vec{}, 0)
		st := s.State()
		next := math.Abs(st.HeadYaw-st.BodyYaw) - cfg.MaxHeadYaw
		if next > excess+1e-9 {
			t.Fatalf("tick %d: excess grew from %v to %v", i, excess, next)
		}
		excess = next
		if excess <= 0 {
			recovered = true
			break
		}
	}
	if !recovered {
		t.Fatalf("head-relative yaw not recovered within 60 ticks, excess %v", excess)
	}
}

func TestStep_SingularityAbove(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)

	// Establish a non-zero yaw first.
	stepN(s, 50, r3.Vec{X: 5, Z: 5})
	yawBefore := s.State().HeadYaw

	// Target directly above the origin: yaw must hold, pitch must walk
	// to the looking-up extreme, nothing may go NaN.
	above := r3.Vec{Y: 10}
	for i := 50; i < 400; i++ {
		f := s.Step(time.Duration(i)*tick, above, r3.Vec{}, 0)
		st := s.State()
		if math.IsNaN(st.HeadYaw) || math.IsNaN(st.HeadPitch) || math.IsNaN(f.Head.Yaw) {
			t.Fatalf("tick %d: NaN in state", i)
		}
		if math.Abs(st.HeadYaw-yawBefore) > 1e-9 {
			t.Fatalf("tick %d: yaw moved from %v to %v under singular target", i, yawBefore, st.HeadYaw)
		}
	}
	if got := s.State().HeadPitch; math.Abs(got-cfg.MinPitch) > 1e-6 {
		t.Errorf("pitch = %v, want looking-up extreme %v", got, cfg.MinPitch)
	}
}

func TestStep_SingularityBelow(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)

	below := r3.Vec{Y: -10}
	stepN(s, 400, below)
	if got := s.State().HeadPitch; math.Abs(got-cfg.MaxPitch) > 1e-6 {
		t.Errorf("pitch = %v, want looking-down extreme %v", got, cfg.MaxPitch)
	}
}

func TestStep_ConvergesStraightAhead(t *testing.T) {
	s := New(testConfig())

	// Steer away first, then hold a target directly ahead and level:
	// desired yaw = 0, pitch = 0.
	stepN(s, 100, r3.Vec{X: 5, Y: 2, Z: 5})
	stepN(s, 600, r3.Vec{Z: 10})
	st := s.State()

	if math.Abs(st.HeadYaw) > 0.02 {
		t.Errorf("head yaw = %v, want ~0", st.HeadYaw)
	}
	if math.Abs(st.HeadPitch) > 0.02 {
		t.Errorf("head pitch = %v, want ~0", st.HeadPitch)
	}
	if math.Abs(st.BodyYaw) > 0.05 {
		t.Errorf("body yaw = %v, want ~0", st.BodyYaw)
	}
}

func TestStep_ConvergesToSide(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)

	// Target hard to the side: desired yaw = pi/2, well inside the
	// combined body+head envelope.
	stepN(s, 800, r3.Vec{X: 10})
	st := s.State()

	if math.Abs(st.HeadYaw-math.Pi/2) > 0.02 {
		t.Errorf("head yaw = %v, want ~%v", st.HeadYaw, math.Pi/2)
	}
	if math.Abs(st.HeadYaw-st.BodyYaw) > cfg.MaxHeadYaw {
		t.Errorf("head-relative yaw %v exceeds %v", st.HeadYaw-st.BodyYaw, cfg.MaxHeadYaw)
	}
}

func TestStep_AntennaOrderAndOutput(t *testing.T) {
	s := New(testConfig())
	f := stepN(s, 100, r3.Vec{X: 5, Z: 5})
	st := s.State()

	if f.Antennas[0] != st.RightAntenna || f.Antennas[1] != st.LeftAntenna {
		t.Errorf("antenna order = %v, want [right=%v, left=%v]", f.Antennas, st.RightAntenna, st.LeftAntenna)
	}
	if f.Head.X != 0 || f.Head.Y != 0 || f.Head.Z != 0 {
		t.Errorf("pose position = (%v,%v,%v), want zero", f.Head.X, f.Head.Y, f.Head.Z)
	}
	if f.BodyYaw != st.BodyYaw {
		t.Errorf("frame body yaw = %v, state %v", f.BodyYaw, st.BodyYaw)
	}
}

func TestStep_ReferenceYawRotatesOffset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeadOffset = r3.Vec{Z: 1}
	s := New(cfg)

	// A reference yaw of 90° swings the forward head offset onto +X, so
	// a target at (1, 0, 10) sits straight ahead of the head pivot.
	target := r3.Vec{X: 1, Z: 10}
	for i := 0; i < 600; i++ {
		s.Step(time.Duration(i)*tick, target, r3.Vec{}, math.Pi/2)
	}
	if got := s.State().HeadYaw; math.Abs(got) > 0.02 {
		t.Errorf("head yaw = %v, want ~0 with rotated head offset", got)
	}
}

func TestReset(t *testing.T) {
	s := New(testConfig())
	stepN(s, 50, r3.Vec{X: 5})
	if s.State() == (TrackingState{}) {
		t.Fatal("state should be non-zero after stepping")
	}
	s.Reset()
	if s.State() != (TrackingState{}) {
		t.Errorf("state after reset = %+v, want zero", s.State())
	}
}

func TestWobble_DeterministicAndBounded(t *testing.T) {
	w := Wobble{Speed: 1.2, Phase: 0.8}
	for i := 0; i < 1000; i++ {
		tt := float64(i) * 0.02
		a, b := w.At(tt), w.At(tt)
		if a != b {
			t.Fatalf("wobble not deterministic at t=%v", tt)
		}
		if math.Abs(a) > 1.0 {
			t.Fatalf("wobble %v at t=%v outside unit range", a, tt)
		}
	}
}

func TestWobble_PhaseDecorrelates(t *testing.T) {
	a := Wobble{Speed: 1.2, Phase: 0}
	b := Wobble{Speed: 1.2, Phase: 1.9}
	same := true
	for i := 0; i < 100; i++ {
		tt := float64(i) * 0.1
		if math.Abs(a.At(tt)-b.At(tt)) > 1e-6 {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct phases produced identical signals")
	}
}
