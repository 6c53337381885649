// Package app wires capture, detection, rendering and the status panel into
// the running hand tracker.
package app

import (
	"context"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/panel"
	"github.com/ayusman/mudra/internal/render"
)

// Config holds the collaborators of an App. Zero values select defaults: a
// mock detector, GoCV devices, fresh metrics and slog.Default.
type Config struct {
	Capture  capture.Config
	Detector detector.Detector
	Opener   capture.Opener
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

// App is the main application: camera frames go in, rendered JPEG frames and
// panel snapshots come out.
type App struct {
	controller *capture.Controller
	detector   detector.Detector
	metrics    *metrics.Metrics
	log        *slog.Logger

	// frameMu serializes frame processing; the renderer is single-threaded.
	frameMu  sync.Mutex
	renderer *render.Renderer
	panel    *panel.Panel

	latestMu sync.RWMutex
	latest   []byte

	hub *hub
}

// New creates an App that is idle until StartCapture is called.
func New(config Config) *App {
	if config.Log == nil {
		config.Log = slog.Default()
	}
	if config.Detector == nil {
		config.Detector = detector.NewMockDetector()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}
	if config.Capture.Width <= 0 || config.Capture.Height <= 0 {
		def := capture.DefaultConfig()
		config.Capture.Width, config.Capture.Height = def.Width, def.Height
	}

	a := &App{
		detector: config.Detector,
		metrics:  config.Metrics,
		log:      config.Log,
		renderer: render.New(config.Capture.Width, config.Capture.Height),
		panel:    panel.New(config.Capture.Width, config.Capture.Height),
		hub:      newHub(),
	}
	a.controller = capture.NewController(config.Capture, config.Opener, a.onFrame, config.Log)
	a.syncCapture()
	return a
}

func (a *App) onFrame(frame *gocv.Mat, facing capture.Facing) {
	_ = a.HandleFrame(frame, facing)
}

// StartCapture opens the camera for the current facing mode, replacing any
// running session. Failures are shown on the panel and returned.
func (a *App) StartCapture(ctx context.Context) error {
	return a.recordStart(a.controller.Start(ctx))
}

// SwitchFacing toggles between the front and rear camera and restarts
// capture with the new one.
func (a *App) SwitchFacing(ctx context.Context) error {
	return a.recordStart(a.controller.SwitchFacing(ctx))
}

func (a *App) recordStart(err error) error {
	if err != nil {
		a.metrics.IncCaptureFailures()
		a.panel.SetError(err.Error())
	} else {
		a.metrics.IncCaptureStarts()
		a.panel.SetError("")
	}
	a.syncCapture()
	return err
}

// StopCapture ends the running session and clears the panel.
func (a *App) StopCapture() error {
	if !a.controller.IsCapturing() {
		return capture.ErrNotCapturing
	}
	err := a.controller.Stop()

	a.frameMu.Lock()
	a.panel.Reset()
	a.panel.SetHandCount(0)
	a.frameMu.Unlock()

	a.syncCapture()
	return err
}

// syncCapture copies the controller state onto the panel and publishes it.
func (a *App) syncCapture() {
	id, ok := a.controller.Session()
	a.panel.SetCapture(panel.CaptureState{
		Capturing:       ok,
		SessionID:       id,
		Facing:          a.controller.Facing(),
		PreviewMirrored: a.controller.PreviewMirrored(),
	})
	a.metrics.SetActiveSession(ok)
	a.publish()
}

// SetContainer resizes the area captions are positioned in.
func (a *App) SetContainer(width, height int) {
	a.panel.SetContainer(width, height)
}

// Snapshot returns the current panel state.
func (a *App) Snapshot() panel.Snapshot {
	return a.panel.Snapshot()
}

// LatestFrame returns the most recent rendered frame as JPEG, or nil before
// the first frame. The returned slice must not be modified.
func (a *App) LatestFrame() []byte {
	a.latestMu.RLock()
	defer a.latestMu.RUnlock()
	return a.latest
}

// Subscribe returns a channel of panel snapshots. Slow subscribers only see
// the newest snapshot. Call cancel to unsubscribe.
func (a *App) Subscribe() (<-chan panel.Snapshot, func()) {
	return a.hub.subscribe(a.panel.Snapshot())
}

// Metrics returns the metrics the App reports to.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Close stops capture, releases the detector and ends all subscriptions.
func (a *App) Close() error {
	if err := a.controller.Stop(); err != nil {
		a.log.Warn("closing camera", "error", err)
	}
	a.metrics.SetActiveSession(false)
	a.hub.close()
	return a.detector.Close()
}

func (a *App) publish() {
	a.hub.publish(a.panel.Snapshot())
}
