// Package daemon provides a typed HTTP client for the robot daemon's
// motion API. The daemon solves IK on-device; this package only ships
// head poses, body yaw, and antenna angles to it.
package daemon

import "github.com/google/uuid"

// Pose is a rigid head target in the robot's reference frame.
// Position in meters, orientation in radians.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Interpolation selects the daemon-side easing for interpolated moves.
type Interpolation string

// Interpolation modes accepted by the goto endpoint.
const (
	Linear  Interpolation = "linear"
	MinJerk Interpolation = "minjerk"
	Ease    Interpolation = "ease"
	Cartoon Interpolation = "cartoon"
)

// MoveTask identifies a daemon-side running motion.
type MoveTask struct {
	UUID uuid.UUID `json:"uuid"`
}
