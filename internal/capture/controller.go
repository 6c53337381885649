package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// ErrCaptureStart wraps every failure to bring up a capture session.
var ErrCaptureStart = errors.New("failed to start the camera")

// ErrNotCapturing is returned by operations that need an active session.
var ErrNotCapturing = errors.New("camera is not capturing")

// Controller owns the single active capture session and the current facing
// mode. Start, SwitchFacing and Stop are serialized.
type Controller struct {
	mu      sync.Mutex
	config  Config
	facing  Facing
	preview bool
	open    Opener
	handler FrameHandler
	session *Session
	log     *slog.Logger
}

// NewController creates a controller that is not yet capturing. A nil
// opener uses OpenCamera.
func NewController(cfg Config, open Opener, handler FrameHandler, log *slog.Logger) *Controller {
	if open == nil {
		open = OpenCamera
	}
	if log == nil {
		log = slog.Default()
	}
	facing := cfg.Facing
	if facing == "" {
		facing = FacingUser
	}
	return &Controller{
		config:  cfg,
		facing:  facing,
		preview: facing.Mirrored(),
		open:    open,
		handler: handler,
		log:     log,
	}
}

// Start replaces any running session with a new one for the current facing
// mode. On failure no session remains and the error wraps ErrCaptureStart.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked(ctx)
}

// SwitchFacing toggles the facing mode, updates the preview mirroring and
// restarts capture with the new camera.
func (c *Controller) SwitchFacing(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.facing = c.facing.Toggle()
	c.preview = c.facing.Mirrored()
	c.log.Info("facing mode switched", "facing", c.facing)

	return c.startLocked(ctx)
}

// Stop ends the active session, if any.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

// Facing returns the current facing mode.
func (c *Controller) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// PreviewMirrored reports whether the live preview is flipped horizontally.
func (c *Controller) PreviewMirrored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Session returns the active session id.
func (c *Controller) Session() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", false
	}
	return c.session.ID(), true
}

// IsCapturing reports whether a session is active.
func (c *Controller) IsCapturing() bool {
	_, ok := c.Session()
	return ok
}

type openResult struct {
	cam Camera
	err error
}

func (c *Controller) startLocked(ctx context.Context) error {
	if err := c.stopLocked(); err != nil {
		c.log.Warn("closing previous camera", "error", err)
	}

	cfg := c.config
	cfg.Facing = c.facing

	// Device open may block on a permission prompt; give up on ctx but still
	// release a camera that opens afterwards.
	resCh := make(chan openResult, 1)
	go func() {
		cam, err := c.open(cfg)
		resCh <- openResult{cam: cam, err: err}
	}()

	var res openResult
	select {
	case res = <-resCh:
	case <-ctx.Done():
		go func() {
			if late := <-resCh; late.cam != nil {
				late.cam.Close()
			}
		}()
		c.log.Error("camera start abandoned", "facing", cfg.Facing, "error", ctx.Err())
		return errors.Wrapf(ErrCaptureStart, "%s camera: %v", cfg.Facing, ctx.Err())
	}

	if res.err != nil {
		c.log.Error("camera start failed", "facing", cfg.Facing, "error", res.err)
		return errors.Wrapf(ErrCaptureStart, "%s camera: %v", cfg.Facing, res.err)
	}

	c.session = startSession(res.cam, cfg.Facing, c.handler, c.log)
	c.log.Info("capture started",
		"session_id", c.session.ID(),
		"facing", cfg.Facing,
		"device", cfg.DeviceID(),
		"width", cfg.Width,
		"height", cfg.Height,
	)
	return nil
}

func (c *Controller) stopLocked() error {
	if c.session == nil {
		return nil
	}
	s := c.session
	c.session = nil
	err := s.Stop()
	c.log.Info("capture stopped", "session_id", s.ID(), "facing", s.Facing())
	return err
}
