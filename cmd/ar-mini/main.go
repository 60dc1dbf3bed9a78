// ar-mini - AR remote-control front end for a Reachy Mini class robot.
//
// Bridges an AR device to the robot daemon: the headset streams a gaze
// target and a tracking toggle over the bridge websocket, and this
// process synthesizes smooth head/body/antenna motion and ships it to
// the daemon at frame rate. While not tracking, it keeps a recorded
// ambient move looping on the robot.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/teslashibe/reachy-ar/internal/config"
	"github.com/teslashibe/reachy-ar/internal/log"
	"github.com/teslashibe/reachy-ar/pkg/bridge"
	"github.com/teslashibe/reachy-ar/pkg/daemon"
	"github.com/teslashibe/reachy-ar/pkg/frame"
	"github.com/teslashibe/reachy-ar/pkg/hub"
	"github.com/teslashibe/reachy-ar/pkg/lookat"
	"github.com/teslashibe/reachy-ar/pkg/session"
)

func main() {
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()
	log.Init(*logLevel)

	robotIP := config.RobotIPRequired()
	baseURL := config.RobotAPIURL(robotIP)
	client := daemon.NewClient(baseURL)

	log.Info("ar-mini starting", "robot", baseURL)
	if !client.Reachable() {
		// Non-fatal: the idle loop self-heals once the daemon shows up.
		log.Warn("robot daemon not reachable at startup", "url", baseURL)
	}

	sched := frame.NewScheduler(frame.DefaultRate)

	idle := session.NewIdleLoop(client, sched,
		config.IdleDataset(), config.IdleMove(), config.IdleFallback())

	targets := bridge.NewTargetStore()
	synth := lookat.New(lookat.DefaultConfig())

	statusHub := hub.New("status")
	mirror := bridge.NewProxyMirror(statusHub)

	ctrl := session.NewController(session.Config{
		Stream:             client,
		Idle:               idle,
		Scheduler:          sched,
		Synth:              synth,
		Targets:            targets,
		Proxy:              mirror,
		ProxyVisibleScale:  r3.Vec{X: 1, Y: 1, Z: 1},
		ProxyShownPosition: r3.Vec{},
		ProxyTweenDuration: 300 * time.Millisecond,
	})
	srv := bridge.NewServer(config.BridgePort(), ctrl, client, targets, statusHub)

	sched.Register("status-broadcast", srv.StatusHook())
	go sched.Run()
	srv.StartAsync()

	// Constructor-time default entry: idle. Blocks for the neutral
	// transition, so run it off the main goroutine.
	go ctrl.SetState(session.Idle)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	ctrl.SetTracking(false)
	sched.Stop()

	// Best-effort neutral reset so the robot is not left mid-pose.
	zero := 0.0
	if err := client.SetTarget(daemon.Pose{}, &[2]float64{0, 0}, &zero); err != nil {
		log.Debug("neutral reset failed", "err", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.Debug("bridge shutdown failed", "err", err)
	}
}
