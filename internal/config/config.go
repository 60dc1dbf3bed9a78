// Package config provides environment-driven configuration for reachy-ar.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default robot and bridge configuration.
const (
	DefaultRobotPort   = "8000"
	DefaultBridgePort  = "8090"
	DefaultIdleDataset = "pollen-robotics/reachy-mini-moves"
	DefaultIdleMove    = "idle/breathing"

	// DefaultIdleFallback is the assumed recorded-move length used to
	// relaunch idle playback when the running-move query is unavailable.
	DefaultIdleFallback = 5 * time.Second
)

// RobotIP returns the robot IP from ROBOT_IP env var.
// Falls back to the provided default if not set.
func RobotIP(defaultIP string) string {
	if ip := os.Getenv("ROBOT_IP"); ip != "" {
		return ip
	}
	return defaultIP
}

// RobotIPRequired returns the robot IP from ROBOT_IP env var.
// Exits with a usage message if not set.
func RobotIPRequired() string {
	ip := os.Getenv("ROBOT_IP")
	if ip == "" {
		fmt.Fprintln(os.Stderr, "Error: ROBOT_IP environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: ROBOT_IP=192.168.68.80 go run ./cmd/ar-mini")
		os.Exit(1)
	}
	return ip
}

// RobotAPIURL returns the robot daemon HTTP API base URL.
func RobotAPIURL(robotIP string) string {
	return fmt.Sprintf("http://%s:%s", robotIP, DefaultRobotPort)
}

// BridgePort returns the AR bridge listen port from BRIDGE_PORT or default.
func BridgePort() string {
	if port := os.Getenv("BRIDGE_PORT"); port != "" {
		return port
	}
	return DefaultBridgePort
}

// IdleDataset returns the recorded-move dataset name for the idle loop.
func IdleDataset() string {
	if ds := os.Getenv("IDLE_DATASET"); ds != "" {
		return ds
	}
	return DefaultIdleDataset
}

// IdleMove returns the recorded-move name for the idle loop.
func IdleMove() string {
	if mv := os.Getenv("IDLE_MOVE"); mv != "" {
		return mv
	}
	return DefaultIdleMove
}

// IdleFallback returns the estimated idle move duration used for the
// time-based relaunch fallback, from IDLE_FALLBACK_SECONDS or default.
func IdleFallback() time.Duration {
	if s := os.Getenv("IDLE_FALLBACK_SECONDS"); s != "" {
		if secs, err := strconv.ParseFloat(s, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return DefaultIdleFallback
}
