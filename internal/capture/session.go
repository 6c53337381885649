package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// readRetryDelay is the pause after a failed frame read.
const readRetryDelay = 100 * time.Millisecond

// FrameHandler processes one captured frame along with the facing mode of
// the session that produced it. The frame is closed by the session after the
// handler returns. Handlers must not call back into the Controller.
type FrameHandler func(frame *gocv.Mat, facing Facing)

// Session is one open camera feeding frames to a handler.
//
// Frames are read on a ticker; a handler slower than the frame interval
// causes ticks, and therefore frames, to be dropped rather than queued.
type Session struct {
	id      string
	facing  Facing
	camera  Camera
	handler FrameHandler
	log     *slog.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

func startSession(cam Camera, facing Facing, handler FrameHandler, log *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:      uuid.NewString(),
		facing:  facing,
		camera:  cam,
		handler: handler,
		log:     log,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Facing returns the facing mode the session was opened with.
func (s *Session) Facing() Facing {
	return s.facing
}

// Stop ends the frame loop, waits for an in-flight frame to finish and
// closes the camera. It is safe to call more than once.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
		s.stopErr = s.camera.Close()
	})
	return s.stopErr
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	fps := s.camera.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			s.log.Debug("frame read failed", "session_id", s.id, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		if s.handler != nil {
			s.handler(frame, s.facing)
		}
		frame.Close()
	}
}
