package bridge

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/reachy-ar/pkg/hub"
)

// proxyBroadcastInterval throttles scale/position updates to the
// headset; the tween drives them at frame rate but the visual result
// tolerates a coarser stream.
const proxyBroadcastInterval = 50 * time.Millisecond

// ProxyMirror implements session.ProxyEntity by mirroring the proxy's
// enabled/scale/position state to connected AR clients over the hub.
// The actual scene-graph entity lives on the headset; this is its
// network stand-in.
type ProxyMirror struct {
	hub *hub.Hub

	mu       sync.Mutex
	enabled  bool
	scale    r3.Vec
	position r3.Vec
	lastSent time.Time
}

type proxyPayload struct {
	Type     string     `json:"type"`
	Enabled  bool       `json:"enabled"`
	Scale    [3]float64 `json:"scale"`
	Position [3]float64 `json:"position"`
}

// NewProxyMirror creates a mirror broadcasting on the given hub.
func NewProxyMirror(h *hub.Hub) *ProxyMirror {
	return &ProxyMirror{hub: h}
}

// SetEnabled toggles the proxy entity and broadcasts immediately.
func (m *ProxyMirror) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	payload := m.payloadLocked()
	m.lastSent = time.Now()
	m.mu.Unlock()
	m.hub.BroadcastJSON(payload)
}

// Scale returns the proxy's current local scale.
func (m *ProxyMirror) Scale() r3.Vec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scale
}

// SetScale updates the local scale, broadcasting at a throttled rate.
func (m *ProxyMirror) SetScale(s r3.Vec) {
	m.mu.Lock()
	m.scale = s
	m.broadcastThrottledLocked()
}

// Position returns the proxy's current local position.
func (m *ProxyMirror) Position() r3.Vec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// SetPosition updates the local position, broadcasting at a throttled rate.
func (m *ProxyMirror) SetPosition(p r3.Vec) {
	m.mu.Lock()
	m.position = p
	m.broadcastThrottledLocked()
}

// Enabled reports the proxy's enabled flag.
func (m *ProxyMirror) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *ProxyMirror) broadcastThrottledLocked() {
	now := time.Now()
	if now.Sub(m.lastSent) < proxyBroadcastInterval {
		m.mu.Unlock()
		return
	}
	m.lastSent = now
	payload := m.payloadLocked()
	m.mu.Unlock()
	m.hub.BroadcastJSON(payload)
}

func (m *ProxyMirror) payloadLocked() proxyPayload {
	return proxyPayload{
		Type:     "proxy",
		Enabled:  m.enabled,
		Scale:    [3]float64{m.scale.X, m.scale.Y, m.scale.Z},
		Position: [3]float64{m.position.X, m.position.Y, m.position.Z},
	}
}
