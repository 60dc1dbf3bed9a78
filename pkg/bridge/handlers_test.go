package bridge

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/reachy-ar/pkg/frame"
	"github.com/teslashibe/reachy-ar/pkg/session"
)

// newTestServer wires a server around a minimal controller. No daemon
// transport is bound: toggle transitions still move the state machine,
// they just have nothing to command.
func newTestServer(t *testing.T) (*Server, *TargetStore, *session.Controller) {
	t.Helper()
	sched := frame.NewScheduler(2 * time.Millisecond)
	go sched.Run()
	t.Cleanup(sched.Stop)

	targets := NewTargetStore()
	ctrl := session.NewController(session.Config{
		Scheduler: sched,
		Targets:   targets,
	})
	return NewServer("0", ctrl, nil, targets, nil), targets, ctrl
}

func TestHandleStatus(t *testing.T) {
	srv, targets, _ := newTestServer(t)
	targets.Set(r3.Vec{X: 0.1, Y: 0.2, Z: 0.3})

	resp, err := srv.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got struct {
		Type      string     `json:"type"`
		State     string     `json:"state"`
		HasTarget bool       `json:"has_target"`
		Target    [3]float64 `json:"target"`
		Clients   int        `json:"clients"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "status", got.Type)
	assert.Equal(t, "uninitialized", got.State)
	assert.True(t, got.HasTarget)
	assert.Equal(t, [3]float64{0.1, 0.2, 0.3}, got.Target)
	assert.Equal(t, 0, got.Clients)
}

func TestHandleInbound_Target(t *testing.T) {
	srv, targets, _ := newTestServer(t)

	srv.handleInbound([]byte(`{"type":"target","x":0.5,"y":-0.2,"z":1.5}`))

	got, ok := targets.Target()
	require.True(t, ok, "target message did not reach the store")
	assert.Equal(t, r3.Vec{X: 0.5, Y: -0.2, Z: 1.5}, got)
}

func TestHandleInbound_Toggle(t *testing.T) {
	srv, _, ctrl := newTestServer(t)

	srv.handleInbound([]byte(`{"type":"toggle","value":1}`))
	assert.Eventually(t, func() bool {
		return ctrl.State() == session.LookAtTarget
	}, time.Second, 2*time.Millisecond, "toggle on did not reach LookAtTarget")

	srv.handleInbound([]byte(`{"type":"toggle","value":0}`))
	assert.Eventually(t, func() bool {
		return ctrl.State() == session.Idle
	}, time.Second, 2*time.Millisecond, "toggle off did not reach Idle")
}

func TestHandleInbound_Malformed(t *testing.T) {
	srv, targets, ctrl := newTestServer(t)

	srv.handleInbound([]byte(`{not json`))
	srv.handleInbound([]byte(`{"type":"reboot"}`))

	_, ok := targets.Target()
	assert.False(t, ok, "malformed input must not set a target")
	assert.Equal(t, session.Uninitialized, ctrl.State())
}
