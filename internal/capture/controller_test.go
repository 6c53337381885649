package capture

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// fakeDevices hands out looping mock cameras and records each open.
type fakeDevices struct {
	mu      sync.Mutex
	frame   gocv.Mat
	configs []Config
	cameras []*MockCamera
	fail    error
	gate    chan struct{}
}

func newFakeDevices(t *testing.T) *fakeDevices {
	t.Helper()
	d := &fakeDevices{frame: gocv.NewMatWithSize(72, 128, gocv.MatTypeCV8UC3)}
	t.Cleanup(func() { d.frame.Close() })
	return d
}

func (d *fakeDevices) open(cfg Config) (Camera, error) {
	if d.gate != nil {
		<-d.gate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.configs = append(d.configs, cfg)
	if d.fail != nil {
		return nil, d.fail
	}
	cam := NewMockCamera([]*gocv.Mat{&d.frame}, true)
	cam.Open()
	d.cameras = append(d.cameras, cam)
	return cam, nil
}

func (d *fakeDevices) camera(i int) *MockCamera {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cameras[i]
}

func (d *fakeDevices) opened() []Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Config(nil), d.configs...)
}

// facingRecorder collects the facing mode passed with each frame.
type facingRecorder struct {
	mu   sync.Mutex
	seen []Facing
}

func (r *facingRecorder) handle(frame *gocv.Mat, facing Facing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, facing)
}

func (r *facingRecorder) last() (Facing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return "", false
	}
	return r.seen[len(r.seen)-1], true
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestController_Start(t *testing.T) {
	devices := newFakeDevices(t)
	rec := &facingRecorder{}
	c := NewController(DefaultConfig(), devices.open, rec.handle, quietLogger())
	defer c.Stop()

	if c.IsCapturing() {
		t.Fatal("controller should not capture before Start")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	id, ok := c.Session()
	if !ok || id == "" {
		t.Fatalf("Session() = %q, %v, want an active session", id, ok)
	}

	cfgs := devices.opened()
	if len(cfgs) != 1 || cfgs[0].Facing != FacingUser || cfgs[0].Width != DefaultWidth || cfgs[0].Height != DefaultHeight {
		t.Errorf("opened configs = %+v", cfgs)
	}

	waitFor(t, "a frame", func() bool {
		f, ok := rec.last()
		return ok && f == FacingUser
	})
}

func TestController_RestartStopsPreviousSession(t *testing.T) {
	devices := newFakeDevices(t)
	c := NewController(DefaultConfig(), devices.open, nil, quietLogger())
	defer c.Stop()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	first, _ := c.Session()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	second, _ := c.Session()

	if first == second {
		t.Error("restart should create a new session id")
	}
	if devices.camera(0).IsOpen() {
		t.Error("previous camera should be closed before the new session starts")
	}
	if !devices.camera(1).IsOpen() {
		t.Error("new camera should be open")
	}
}

func TestController_StartFailure(t *testing.T) {
	devices := newFakeDevices(t)
	c := NewController(DefaultConfig(), devices.open, nil, quietLogger())

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	devices.fail = errors.New("permission denied")
	err := c.Start(context.Background())
	if !errors.Is(err, ErrCaptureStart) {
		t.Fatalf("Start() error = %v, want ErrCaptureStart", err)
	}

	if c.IsCapturing() {
		t.Error("failed start must not leave a session")
	}
	if devices.camera(0).IsOpen() {
		t.Error("previous session should have been stopped")
	}
}

func TestController_SwitchFacing(t *testing.T) {
	devices := newFakeDevices(t)
	rec := &facingRecorder{}
	c := NewController(DefaultConfig(), devices.open, rec.handle, quietLogger())
	defer c.Stop()

	if !c.PreviewMirrored() {
		t.Error("front camera preview should start mirrored")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := c.SwitchFacing(context.Background()); err != nil {
		t.Fatalf("SwitchFacing() error = %v", err)
	}

	if got := c.Facing(); got != FacingEnvironment {
		t.Errorf("Facing() = %s, want environment", got)
	}
	if c.PreviewMirrored() {
		t.Error("rear camera preview should not be mirrored")
	}
	if devices.camera(0).IsOpen() {
		t.Error("front camera should be closed after switching")
	}

	cfgs := devices.opened()
	if len(cfgs) != 2 || cfgs[1].Facing != FacingEnvironment || cfgs[1].DeviceID() != 1 {
		t.Errorf("second open = %+v, want environment on device 1", cfgs)
	}

	waitFor(t, "an environment frame", func() bool {
		f, ok := rec.last()
		return ok && f == FacingEnvironment
	})

	if err := c.SwitchFacing(context.Background()); err != nil {
		t.Fatalf("second SwitchFacing() error = %v", err)
	}
	if c.Facing() != FacingUser || !c.PreviewMirrored() {
		t.Error("switching twice should return to the mirrored front camera")
	}
}

func TestController_StartCanceled(t *testing.T) {
	devices := newFakeDevices(t)
	devices.gate = make(chan struct{})
	c := NewController(DefaultConfig(), devices.open, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Start(ctx)
	if !errors.Is(err, ErrCaptureStart) {
		t.Fatalf("Start() error = %v, want ErrCaptureStart", err)
	}
	if c.IsCapturing() {
		t.Error("canceled start must not leave a session")
	}

	// The device finishes opening after the caller gave up.
	close(devices.gate)
	waitFor(t, "late camera release", func() bool {
		devices.mu.Lock()
		defer devices.mu.Unlock()
		return len(devices.cameras) == 1 && !devices.cameras[0].IsOpen()
	})
}

func TestController_Stop(t *testing.T) {
	devices := newFakeDevices(t)
	c := NewController(DefaultConfig(), devices.open, nil, quietLogger())

	if err := c.Stop(); err != nil {
		t.Errorf("Stop() without session error = %v", err)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if c.IsCapturing() {
		t.Error("Stop() should end the session")
	}
	if devices.camera(0).Closes() != 1 {
		t.Errorf("camera closed %d times, want 1", devices.camera(0).Closes())
	}
}
