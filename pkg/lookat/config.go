package lookat

import "gonum.org/v1/gonum/spatial/r3"

// Physical limits (radians). Head values match the daemon's mechanical
// envelope; sending beyond them produces IK failures on-device.
const (
	MaxHeadRoll  = 0.35 // ±20°
	MaxHeadPitch = 0.52 // ±30°
	MaxHeadYaw   = 0.70 // ±40°, head relative to body
	MaxBodyYaw   = 2.8  // ±160°
	MaxAntenna   = 1.6  // ±92°
)

// Config holds the synthesizer's tuning constants. All angular values
// are radians; per-tick values assume the scheduler's fixed frame rate.
type Config struct {
	// Mechanical limits.
	MaxHeadYaw  float64 // head yaw relative to body
	MaxHeadRoll float64
	MinPitch    float64
	MaxPitch    float64
	MaxBodyYaw  float64
	MaxAntenna  float64

	// Head smoothing: fraction of remaining error applied per tick,
	// then the per-tick delta is clamped. The clamp dominates for
	// large errors, the fraction for small ones.
	YawSmoothing   float64
	PitchSmoothing float64
	MaxYawStep     float64 // rad per tick
	MaxPitchStep   float64

	// Body follow.
	BodyFollowRate float64 // fraction per tick at base rate
	MaxBodyStep    float64 // rad per tick

	// Antennas.
	AntennaSmoothing   float64
	MaxAntennaStep     float64
	AntennaBaseAmp     float64 // wobble amplitude at rest
	AntennaMotionBonus float64 // extra amplitude at full motion intensity
	AntennaYawCoupling float64 // head-yaw coupling gain, opposite sign per side

	// Motion intensity.
	FullIntensityVelocity float64 // rad/tick of head motion mapping to intensity 1
	IntensitySmoothing    float64 // EMA factor

	// Wobble.
	WobbleSpeed    float64 // base angular frequency, rad/s
	PitchWobbleAmp float64
	YawWobbleAmp   float64
	RollWobbleAmp  float64

	// HeadOffset is the fixed offset from the reference frame origin to
	// the head pivot, rotated by the reference yaw before use.
	HeadOffset r3.Vec
}

// DefaultConfig returns tuning for a 50Hz frame rate.
func DefaultConfig() Config {
	return Config{
		MaxHeadYaw:  MaxHeadYaw,
		MaxHeadRoll: MaxHeadRoll,
		MinPitch:    -MaxHeadPitch,
		MaxPitch:    MaxHeadPitch,
		MaxBodyYaw:  MaxBodyYaw,
		MaxAntenna:  MaxAntenna,

		YawSmoothing:   0.15,
		PitchSmoothing: 0.10,
		MaxYawStep:     0.05,
		MaxPitchStep:   0.04,

		BodyFollowRate: 0.06,
		MaxBodyStep:    0.06,

		AntennaSmoothing:   0.20,
		MaxAntennaStep:     0.08,
		AntennaBaseAmp:     0.12,
		AntennaMotionBonus: 0.50,
		AntennaYawCoupling: 0.25,

		FullIntensityVelocity: 0.04,
		IntensitySmoothing:    0.15,

		WobbleSpeed:    1.2,
		PitchWobbleAmp: 0.015,
		YawWobbleAmp:   0.02,
		RollWobbleAmp:  0.06,

		HeadOffset: r3.Vec{Y: 0.12},
	}
}
