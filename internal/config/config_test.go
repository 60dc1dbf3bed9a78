package config

import (
	"testing"
	"time"
)

func TestRobotIP(t *testing.T) {
	t.Setenv("ROBOT_IP", "")
	if got := RobotIP("10.0.0.1"); got != "10.0.0.1" {
		t.Errorf("RobotIP default = %q", got)
	}
	t.Setenv("ROBOT_IP", "192.168.68.80")
	if got := RobotIP("10.0.0.1"); got != "192.168.68.80" {
		t.Errorf("RobotIP env = %q", got)
	}
}

func TestRobotAPIURL(t *testing.T) {
	if got := RobotAPIURL("192.168.68.80"); got != "http://192.168.68.80:8000" {
		t.Errorf("RobotAPIURL = %q", got)
	}
}

func TestBridgePort(t *testing.T) {
	t.Setenv("BRIDGE_PORT", "")
	if got := BridgePort(); got != DefaultBridgePort {
		t.Errorf("BridgePort default = %q", got)
	}
	t.Setenv("BRIDGE_PORT", "9999")
	if got := BridgePort(); got != "9999" {
		t.Errorf("BridgePort env = %q", got)
	}
}

func TestIdleFallback(t *testing.T) {
	t.Setenv("IDLE_FALLBACK_SECONDS", "")
	if got := IdleFallback(); got != DefaultIdleFallback {
		t.Errorf("IdleFallback default = %v", got)
	}
	t.Setenv("IDLE_FALLBACK_SECONDS", "2.5")
	if got := IdleFallback(); got != 2500*time.Millisecond {
		t.Errorf("IdleFallback(2.5) = %v", got)
	}
	t.Setenv("IDLE_FALLBACK_SECONDS", "bogus")
	if got := IdleFallback(); got != DefaultIdleFallback {
		t.Errorf("IdleFallback(bogus) = %v, want default", got)
	}
	t.Setenv("IDLE_FALLBACK_SECONDS", "-1")
	if got := IdleFallback(); got != DefaultIdleFallback {
		t.Errorf("IdleFallback(-1) = %v, want default", got)
	}
}
