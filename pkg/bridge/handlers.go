package bridge

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/reachy-ar/internal/log"
	"github.com/teslashibe/reachy-ar/pkg/hub"
)

// statusPayload is the outbound session snapshot.
type statusPayload struct {
	Type            string     `json:"type"`
	State           string     `json:"state"`
	DaemonReachable bool       `json:"daemon_reachable"`
	HasTarget       bool       `json:"has_target"`
	Target          [3]float64 `json:"target"`
	Clients         int        `json:"clients"`
}

// inboundMessage is what the AR device sends: a toggle flip or the
// latest gaze target position.
type inboundMessage struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"` // toggle: 1 or 0
	X     float64 `json:"x"`     // target position, meters
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

func (s *Server) statusPayload() statusPayload {
	s.mu.Lock()
	reachable := s.reachable
	s.mu.Unlock()

	p := statusPayload{
		Type:            "status",
		State:           s.controller.State().String(),
		DaemonReachable: reachable,
		Clients:         s.statusHub.ClientCount(),
	}
	if target, ok := s.targets.Target(); ok {
		p.HasTarget = true
		p.Target = [3]float64{target.X, target.Y, target.Z}
	}
	return p
}

// handleStatus serves the current session snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.statusPayload())
}

// handleWS runs one AR device connection: broadcasts out through the
// hub, inbound toggle/target messages in through handleInbound.
func (s *Server) handleWS(conn *websocket.Conn) {
	client := hub.NewClient(s.statusHub, conn, s.handleInbound)
	client.Run()
}

// handleInbound decodes one message from the AR device. Toggle
// transitions run in their own goroutine because entry actions block
// on tweens and the neutral transition; the session controller
// re-validates state after each await, so overlapping toggles resolve
// to the newest one.
func (s *Server) handleInbound(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug("bridge: bad inbound message", "err", err)
		return
	}

	switch msg.Type {
	case "toggle":
		on := msg.Value != 0
		go s.controller.SetTracking(on)
	case "target":
		s.targets.Set(r3.Vec{X: msg.X, Y: msg.Y, Z: msg.Z})
	default:
		log.Debug("bridge: unknown message type", "type", msg.Type)
	}
}
