// Package bridge is the network surface the AR device connects to. It
// carries the toggle input and the streamed gaze target inbound over a
// websocket, and mirrors session status and proxy-entity state back out.
package bridge

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/reachy-ar/internal/log"
	"github.com/teslashibe/reachy-ar/pkg/daemon"
	"github.com/teslashibe/reachy-ar/pkg/hub"
	"github.com/teslashibe/reachy-ar/pkg/session"
)

// Server is the AR bridge HTTP/websocket server.
type Server struct {
	app  *fiber.App
	port string

	controller *session.Controller
	health     daemon.HealthChecker
	targets    *TargetStore
	statusHub  *hub.Hub

	// cached daemon reachability, refreshed by the status hook on the
	// scheduler goroutine and read by fiber handlers
	mu              sync.Mutex
	lastHealthCheck time.Time
	reachable       bool
	lastBroadcast   time.Time
}

// NewServer creates the bridge server. statusHub carries outbound
// broadcasts and may be shared with a ProxyMirror; pass nil to create
// a private one.
func NewServer(port string, controller *session.Controller, health daemon.HealthChecker, targets *TargetStore, statusHub *hub.Hub) *Server {
	if statusHub == nil {
		statusHub = hub.New("status")
	}
	s := &Server{
		port:       port,
		controller: controller,
		health:     health,
		targets:    targets,
		statusHub:  statusHub,
	}

	app := fiber.New(fiber.Config{
		AppName:               "reachy-ar bridge",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWS))

	s.app = app
	return s
}

// Hub returns the status broadcast hub.
func (s *Server) Hub() *hub.Hub {
	return s.statusHub
}

// Start starts the bridge server. Blocks.
func (s *Server) Start() error {
	log.Info("bridge listening", "port", s.port)
	go s.statusHub.Run()
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the bridge server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("bridge server error", "err", err)
		}
	}()
}

// Shutdown gracefully stops the bridge server and its broadcast hub.
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	return s.app.Shutdown()
}

// statusBroadcastInterval paces outbound status messages; reachability
// probes run an order of magnitude slower again.
const (
	statusBroadcastInterval = 1 * time.Second
	healthCheckInterval     = 10 * time.Second
)

// StatusHook returns a frame hook that broadcasts session status at a
// low fixed rate. Register it on the scheduler under a stable name.
func (s *Server) StatusHook() func(now time.Time) {
	return func(now time.Time) {
		s.mu.Lock()
		if now.Sub(s.lastBroadcast) < statusBroadcastInterval {
			s.mu.Unlock()
			return
		}
		s.lastBroadcast = now
		probe := s.health != nil && now.Sub(s.lastHealthCheck) >= healthCheckInterval
		if probe {
			s.lastHealthCheck = now
		}
		s.mu.Unlock()

		// Probe outside the lock; status requests must not wait on the
		// daemon's timeout.
		if probe {
			up := s.health.Reachable()
			s.mu.Lock()
			s.reachable = up
			s.mu.Unlock()
		}

		s.statusHub.BroadcastJSON(s.statusPayload())
	}
}
