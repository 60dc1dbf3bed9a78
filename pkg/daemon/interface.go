package daemon

import "github.com/google/uuid"

// This package follows the Interface Segregation Principle: consumers
// depend only on the operations they actually use. The session controller
// takes a TargetStreamer, the idle loop takes a RecordedMovePlayer, and
// so on. Nothing in this repo ever reaches for a concrete global client.

// TargetStreamer streams immediate pose targets at high rate.
// Intended for >=50Hz control loops; no daemon-side interpolation.
type TargetStreamer interface {
	SetTarget(pose Pose, antennas *[2]float64, bodyYaw *float64) error
}

// Mover issues interpolated point-to-point moves.
type Mover interface {
	Goto(pose Pose, bodyYaw *float64, duration float64, mode Interpolation) (MoveTask, error)
}

// RecordedMovePlayer controls dataset-scoped recorded motion playback.
type RecordedMovePlayer interface {
	PlayRecordedMove(dataset, move string) (MoveTask, error)
	ListRecordedMoves(dataset string) ([]string, error)
	StopMove(id uuid.UUID) error
	RunningMoves() ([]uuid.UUID, error)
}

// HealthChecker reports daemon reachability.
type HealthChecker interface {
	Status() (string, error)
	Reachable() bool
}

// Transport is the composite interface for full daemon control.
type Transport interface {
	TargetStreamer
	Mover
	RecordedMovePlayer
	HealthChecker
}

// Ensure Client implements Transport
var _ Transport = (*Client)(nil)
