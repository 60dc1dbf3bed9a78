// Package session owns the tracking session state machine and the idle
// recorded-move loop. At most one of the two per-frame activities (pose
// synthesis, idle completion polling) is registered on the scheduler at
// a time; the controller tears one down before starting the other.
package session

import (
	"context"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/reachy-ar/internal/log"
	"github.com/teslashibe/reachy-ar/pkg/daemon"
	"github.com/teslashibe/reachy-ar/pkg/frame"
	"github.com/teslashibe/reachy-ar/pkg/lookat"
)

// State is the controller's session state.
type State int

// Session states. Uninitialized is the construction-time default and is
// left exactly once, on first activation.
const (
	Uninitialized State = iota
	Idle
	LookAtTarget
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LookAtTarget:
		return "look_at_target"
	default:
		return "uninitialized"
	}
}

// TargetSource supplies the most recent gaze target in the shared 3D
// frame. ok is false until a first target has arrived.
type TargetSource interface {
	Target() (target r3.Vec, ok bool)
}

const lookatHook = "lookat"

// Config wires a Controller's collaborators. Everything is injected;
// the controller never reaches for globals.
type Config struct {
	Stream    daemon.TargetStreamer
	Idle      *IdleLoop
	Scheduler frame.Registrar
	Synth     *lookat.Synthesizer
	Targets   TargetSource

	// Proxy is the AR visual stand-in; nil disables proxy animation.
	Proxy              ProxyEntity
	ProxyVisibleScale  r3.Vec
	ProxyShownPosition r3.Vec
	ProxyTweenDuration time.Duration

	// Reference frame for the look-at computation.
	ReferencePosition r3.Vec
	ReferenceYaw      float64
}

// Controller is the tracking session state machine:
// Uninitialized -> Idle <-> LookAtTarget.
type Controller struct {
	stream  daemon.TargetStreamer
	idle    *IdleLoop
	reg     frame.Registrar
	synth   *lookat.Synthesizer
	targets TargetSource
	proxy   *proxyAnimator
	refPos  r3.Vec
	refYaw  float64

	mu            sync.Mutex
	state         State
	epoch         uint64
	trackingStart time.Time

	// transition serializes entry actions. Toggles arrive on their own
	// goroutines; without this, a descheduled transition could run its
	// entry after a newer one finished and wreck the newer state's
	// side effects.
	transition sync.Mutex
}

// NewController creates a controller in the Uninitialized state.
func NewController(cfg Config) *Controller {
	c := &Controller{
		stream:  cfg.Stream,
		idle:    cfg.Idle,
		reg:     cfg.Scheduler,
		synth:   cfg.Synth,
		targets: cfg.Targets,
		refPos:  cfg.ReferencePosition,
		refYaw:  cfg.ReferenceYaw,
	}
	if cfg.Proxy != nil {
		c.proxy = newProxyAnimator(cfg.Proxy, cfg.Scheduler, cfg.ProxyVisibleScale, cfg.ProxyShownPosition, cfg.ProxyTweenDuration)
	}
	return c
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetTracking maps the toggle input to the two tracked states.
func (c *Controller) SetTracking(on bool) {
	if on {
		c.SetState(LookAtTarget)
	} else {
		c.SetState(Idle)
	}
}

// SetState transitions to the requested state. Requesting the current
// state is a no-op. Entry actions run one at a time; a transition
// superseded while queued skips its entry entirely. Entry actions also
// contain awaits (proxy animation, the idle loop's neutral transition),
// and a newer transition arriving mid-await supersedes the old one,
// whose remaining remote commands are dropped.
func (c *Controller) SetState(next State) {
	if next == Uninitialized {
		log.Warn("session: uninitialized is not an enterable state")
		return
	}

	c.mu.Lock()
	if next == c.state {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = next
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()

	log.Info("session state change", "from", prev.String(), "to", next.String())

	c.transition.Lock()
	defer c.transition.Unlock()
	if c.stale(epoch) {
		// A newer transition was stamped while this one waited its
		// turn; it owns the entry actions now.
		return
	}

	switch next {
	case LookAtTarget:
		c.enterLookAt(epoch)
	case Idle:
		c.enterIdle(epoch)
	}
}

// stale reports whether a newer transition has superseded this one.
func (c *Controller) stale(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch != epoch
}

func (c *Controller) enterLookAt(epoch uint64) {
	if c.idle != nil {
		c.idle.Stop()
	}

	if c.proxy != nil {
		if _, err := c.proxy.show(context.Background()); err != nil {
			log.Warn("session: proxy show interrupted", "err", err)
		}
		if c.stale(epoch) {
			return
		}
	}

	if c.stream == nil || c.synth == nil || c.targets == nil {
		log.Warn("session: look-at entry aborted, transport or synthesizer not bound")
		return
	}

	c.synth.Reset()
	c.mu.Lock()
	c.trackingStart = time.Now()
	c.mu.Unlock()
	c.reg.Register(lookatHook, c.lookatTick)
}

func (c *Controller) enterIdle(epoch uint64) {
	c.reg.Unregister(lookatHook)

	if c.proxy != nil {
		if _, err := c.proxy.hide(context.Background()); err != nil {
			log.Warn("session: proxy hide interrupted", "err", err)
		}
		if c.stale(epoch) {
			return
		}
	}

	if c.idle == nil {
		log.Warn("session: idle entry without idle loop bound")
		return
	}
	c.idle.Start()

	// The idle loop may have slipped in after a newer transition's
	// Stop; re-validate and shut it back down if so.
	if c.stale(epoch) {
		c.idle.Stop()
	}
}

// lookatTick is the per-frame synthesis step while tracking. Transport
// failures are swallowed: the next tick's command supersedes this one
// within a frame interval, and surfacing them would flood diagnostics.
func (c *Controller) lookatTick(now time.Time) {
	target, ok := c.targets.Target()
	if !ok {
		return
	}

	c.mu.Lock()
	start := c.trackingStart
	c.mu.Unlock()

	f := c.synth.Step(now.Sub(start), target, c.refPos, c.refYaw)
	antennas := f.Antennas
	bodyYaw := f.BodyYaw
	_ = c.stream.SetTarget(f.Head, &antennas, &bodyYaw)
}
