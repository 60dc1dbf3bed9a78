package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/reachy-ar/internal/log"
	"github.com/teslashibe/reachy-ar/pkg/daemon"
	"github.com/teslashibe/reachy-ar/pkg/frame"
)

// IdleTransport is what the idle loop needs from the daemon: an
// interpolated move to neutral plus recorded-move playback control.
type IdleTransport interface {
	daemon.Mover
	daemon.RecordedMovePlayer
}

const (
	idlePollHook = "idle-poll"

	// neutralDuration is the daemon-side interpolation time for the
	// goto-neutral transition issued before the first playback.
	neutralDuration = 1 * time.Second

	// defaultPollInterval throttles the running-move query; polling the
	// daemon every frame at 50Hz would be pure overhead.
	defaultPollInterval = 500 * time.Millisecond
)

// IdleLoop keeps a recorded ambient motion playing continuously while
// the session is idle. It self-heals across completions and remote
// errors: completion is detected by polling the daemon's running tasks,
// and when that query is unavailable a fixed estimated-duration timer
// relaunches playback unconditionally.
type IdleLoop struct {
	transport IdleTransport
	reg       frame.Registrar

	dataset      string
	move         string
	fallback     time.Duration // estimated move length for timer recovery
	pollInterval time.Duration

	mu         sync.Mutex
	looping    bool
	task       *uuid.UUID // nil when no confirmed daemon task
	launchedAt time.Time
	lastPoll   time.Time
	hooked     bool
}

// NewIdleLoop creates an idle loop playing the given dataset-scoped
// recorded move. fallback is the assumed move length used when the
// running-move query cannot confirm completion.
func NewIdleLoop(transport IdleTransport, reg frame.Registrar, dataset, move string, fallback time.Duration) *IdleLoop {
	if fallback <= 0 {
		fallback = 5 * time.Second
	}
	return &IdleLoop{
		transport:    transport,
		reg:          reg,
		dataset:      dataset,
		move:         move,
		fallback:     fallback,
		pollInterval: defaultPollInterval,
	}
}

// Start begins the idle loop: transition to neutral, launch the first
// playback, and install the completion-poll frame hook. Double starts
// are no-ops. Blocks for the neutral transition.
func (l *IdleLoop) Start() {
	if l.transport == nil {
		log.Warn("idle loop: no transport bound")
		return
	}

	l.mu.Lock()
	if l.looping {
		l.mu.Unlock()
		return
	}
	l.looping = true
	l.mu.Unlock()

	// Begin idle motion from a known pose. Failure here is cosmetic:
	// the loop proceeds from wherever the head happens to be.
	bodyYaw := 0.0
	if _, err := l.transport.Goto(daemon.Pose{}, &bodyYaw, neutralDuration.Seconds(), daemon.MinJerk); err != nil {
		log.Warn("idle loop: neutral pose transition failed", "err", err)
	} else {
		time.Sleep(neutralDuration)
	}

	// Stopped while waiting on the neutral transition.
	l.mu.Lock()
	stopped := !l.looping
	l.mu.Unlock()
	if stopped {
		return
	}

	l.launch()

	l.mu.Lock()
	if !l.hooked {
		l.reg.Register(idlePollHook, l.poll)
		l.hooked = true
	}
	l.mu.Unlock()
}

// Stop clears the looping flag first, so in-flight completion checks
// become no-ops, then best-effort stops the remembered daemon task.
// The poll hook stays registered; it tears itself down on its next
// invocation, and is reused across repeated idle entries.
func (l *IdleLoop) Stop() {
	l.mu.Lock()
	if !l.looping {
		l.mu.Unlock()
		return
	}
	l.looping = false
	task := l.task
	l.task = nil
	l.mu.Unlock()

	if task != nil {
		if err := l.transport.StopMove(*task); err != nil {
			log.Debug("idle loop: stop move failed", "uuid", task.String(), "err", err)
		}
	}
}

// Looping reports whether the idle loop is active.
func (l *IdleLoop) Looping() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.looping
}

// launch requests playback and records the returned task id. On failure
// the task id stays unset and the time-based recovery in poll takes
// over; the looping flag is never cleared by a failed launch.
func (l *IdleLoop) launch() {
	task, err := l.transport.PlayRecordedMove(l.dataset, l.move)

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.looping {
		return
	}
	l.launchedAt = time.Now()
	if err != nil {
		log.Warn("idle loop: playback launch failed", "move", l.move, "err", err)
		l.task = nil
		return
	}
	id := task.UUID
	l.task = &id
	log.Debug("idle loop: playback launched", "move", l.move, "uuid", id.String())
}

// poll is the per-frame completion check, throttled to pollInterval.
func (l *IdleLoop) poll(now time.Time) {
	l.mu.Lock()
	if !l.looping {
		// No longer idle: tear down the hook registration.
		if l.hooked {
			l.reg.Unregister(idlePollHook)
			l.hooked = false
		}
		l.mu.Unlock()
		return
	}
	if now.Sub(l.lastPoll) < l.pollInterval {
		l.mu.Unlock()
		return
	}
	l.lastPoll = now
	task := l.task
	launchedAt := l.launchedAt
	l.mu.Unlock()

	if task == nil {
		// No confirmed task (launch failed): relaunch once the
		// estimated move duration has elapsed.
		if now.Sub(launchedAt) >= l.fallback {
			l.launch()
		}
		return
	}

	running, err := l.transport.RunningMoves()
	if err != nil {
		// Query unavailable: fall back to the duration timer even
		// without confirmation.
		if now.Sub(launchedAt) >= l.fallback {
			l.launch()
		}
		return
	}
	for _, id := range running {
		if id == *task {
			return // still playing
		}
	}

	// Task id absent from the running set: the move finished.
	l.launch()
}
