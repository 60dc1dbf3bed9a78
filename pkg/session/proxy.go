package session

import (
	"context"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/reachy-ar/pkg/frame"
	"github.com/teslashibe/reachy-ar/pkg/tween"
)

// ProxyEntity is the visual stand-in for the robot on the AR side. The
// controller treats it as an opaque animatable target: it drives local
// scale and position and toggles the enabled flag, nothing else.
type ProxyEntity interface {
	SetEnabled(enabled bool)
	Scale() r3.Vec
	SetScale(s r3.Vec)
	Position() r3.Vec
	SetPosition(p r3.Vec)
}

// proxyAnimator runs the show/hide animation of the proxy entity.
// Show scales 0 -> visible and enables the entity up front; hide scales
// -> 0 and disables it only on completed (not cancelled) hides.
type proxyAnimator struct {
	entity   ProxyEntity
	reg      frame.Registrar
	visible  r3.Vec // scale when shown
	shownPos r3.Vec // position when shown
	duration time.Duration

	mu      sync.Mutex
	current *tween.Handle
}

const proxyHookName = "proxy-tween"

func newProxyAnimator(entity ProxyEntity, reg frame.Registrar, visibleScale, shownPos r3.Vec, duration time.Duration) *proxyAnimator {
	return &proxyAnimator{
		entity:   entity,
		reg:      reg,
		visible:  visibleScale,
		shownPos: shownPos,
		duration: duration,
	}
}

// show animates the entity to visible and waits for the tween to
// resolve. An in-flight animation is cancelled first; cancellation and
// completion converge to the same return.
func (a *proxyAnimator) show(ctx context.Context) (tween.Outcome, error) {
	a.entity.SetEnabled(true)
	return a.animate(ctx, a.visible, a.shownPos, nil)
}

// hide animates the entity to zero scale and disables it when the
// animation ran to completion.
func (a *proxyAnimator) hide(ctx context.Context) (tween.Outcome, error) {
	return a.animate(ctx, r3.Vec{}, a.entity.Position(), func() {
		a.entity.SetEnabled(false)
	})
}

func (a *proxyAnimator) animate(ctx context.Context, targetScale, targetPos r3.Vec, onComplete func()) (tween.Outcome, error) {
	a.mu.Lock()
	if a.current != nil {
		a.current.Cancel()
	}
	fromScale := a.entity.Scale()
	fromPos := a.entity.Position()
	handle := tween.Start(a.reg, proxyHookName, a.duration, func(alpha float64) {
		a.entity.SetScale(lerpVec(fromScale, targetScale, alpha))
		a.entity.SetPosition(lerpVec(fromPos, targetPos, alpha))
	})
	a.current = handle
	a.mu.Unlock()

	outcome, err := handle.Wait(ctx)
	if err == nil && outcome == tween.Completed && onComplete != nil {
		onComplete()
	}
	return outcome, err
}

// cancel aborts any in-flight animation.
func (a *proxyAnimator) cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		a.current.Cancel()
	}
}

func lerpVec(a, b r3.Vec, t float64) r3.Vec {
	return r3.Vec{
		X: tween.Lerp(a.X, b.X, t),
		Y: tween.Lerp(a.Y, b.Y, t),
		Z: tween.Lerp(a.Z, b.Z, t),
	}
}
