package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests and camera-less runs to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []Hand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// curledFingers places the four non-thumb fingers curled toward the palm,
// each tip below its PIP joint.
func curledFingers(h *Hand) {
	h.Points[IndexMCP] = Landmark{X: 0.55, Y: 0.70, Z: -0.02}
	h.Points[IndexPIP] = Landmark{X: 0.55, Y: 0.68, Z: -0.05}
	h.Points[IndexDIP] = Landmark{X: 0.52, Y: 0.70, Z: -0.04}
	h.Points[IndexTip] = Landmark{X: 0.50, Y: 0.72, Z: -0.02}

	h.Points[MiddleMCP] = Landmark{X: 0.50, Y: 0.68, Z: -0.02}
	h.Points[MiddlePIP] = Landmark{X: 0.50, Y: 0.66, Z: -0.05}
	h.Points[MiddleDIP] = Landmark{X: 0.47, Y: 0.68, Z: -0.04}
	h.Points[MiddleTip] = Landmark{X: 0.45, Y: 0.70, Z: -0.02}

	h.Points[RingMCP] = Landmark{X: 0.45, Y: 0.70, Z: -0.02}
	h.Points[RingPIP] = Landmark{X: 0.45, Y: 0.68, Z: -0.05}
	h.Points[RingDIP] = Landmark{X: 0.42, Y: 0.70, Z: -0.04}
	h.Points[RingTip] = Landmark{X: 0.40, Y: 0.72, Z: -0.02}

	h.Points[PinkyMCP] = Landmark{X: 0.40, Y: 0.72, Z: -0.02}
	h.Points[PinkyPIP] = Landmark{X: 0.40, Y: 0.70, Z: -0.05}
	h.Points[PinkyDIP] = Landmark{X: 0.37, Y: 0.72, Z: -0.04}
	h.Points[PinkyTip] = Landmark{X: 0.35, Y: 0.74, Z: -0.02}
}

// ThumbsUpHand returns a preset Hand with the thumb extended upward while
// the other fingers are curled.
func ThumbsUpHand() Hand {
	h := Hand{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Landmark{X: 0.5, Y: 0.8, Z: 0.0}

	// Y decreases going up
	h.Points[ThumbCMC] = Landmark{X: 0.55, Y: 0.75, Z: 0.0}
	h.Points[ThumbMCP] = Landmark{X: 0.58, Y: 0.65, Z: 0.0}
	h.Points[ThumbIP] = Landmark{X: 0.58, Y: 0.50, Z: 0.0}
	h.Points[ThumbTip] = Landmark{X: 0.58, Y: 0.35, Z: 0.0}

	curledFingers(&h)
	return h
}

// FistHand returns a preset Hand with every finger folded.
func FistHand() Hand {
	h := Hand{Handedness: "Right", Score: 0.93}

	h.Points[Wrist] = Landmark{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb tucked across the palm, tip closer to the wrist than the IP joint.
	h.Points[ThumbCMC] = Landmark{X: 0.55, Y: 0.75, Z: -0.01}
	h.Points[ThumbMCP] = Landmark{X: 0.58, Y: 0.70, Z: -0.02}
	h.Points[ThumbIP] = Landmark{X: 0.57, Y: 0.65, Z: -0.03}
	h.Points[ThumbTip] = Landmark{X: 0.53, Y: 0.66, Z: -0.03}

	curledFingers(&h)
	return h
}

// OpenPalmHand returns a preset Hand with all fingers extended.
func OpenPalmHand() Hand {
	h := Hand{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Landmark{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	h.Points[ThumbCMC] = Landmark{X: 0.55, Y: 0.75, Z: 0.02}
	h.Points[ThumbMCP] = Landmark{X: 0.62, Y: 0.70, Z: 0.03}
	h.Points[ThumbIP] = Landmark{X: 0.68, Y: 0.65, Z: 0.03}
	h.Points[ThumbTip] = Landmark{X: 0.73, Y: 0.60, Z: 0.03}

	h.Points[IndexMCP] = Landmark{X: 0.55, Y: 0.68, Z: 0.0}
	h.Points[IndexPIP] = Landmark{X: 0.57, Y: 0.55, Z: 0.0}
	h.Points[IndexDIP] = Landmark{X: 0.58, Y: 0.45, Z: 0.0}
	h.Points[IndexTip] = Landmark{X: 0.58, Y: 0.35, Z: 0.0}

	// slightly longer
	h.Points[MiddleMCP] = Landmark{X: 0.50, Y: 0.66, Z: 0.0}
	h.Points[MiddlePIP] = Landmark{X: 0.50, Y: 0.52, Z: 0.0}
	h.Points[MiddleDIP] = Landmark{X: 0.50, Y: 0.40, Z: 0.0}
	h.Points[MiddleTip] = Landmark{X: 0.50, Y: 0.28, Z: 0.0}

	h.Points[RingMCP] = Landmark{X: 0.45, Y: 0.68, Z: 0.0}
	h.Points[RingPIP] = Landmark{X: 0.43, Y: 0.55, Z: 0.0}
	h.Points[RingDIP] = Landmark{X: 0.42, Y: 0.45, Z: 0.0}
	h.Points[RingTip] = Landmark{X: 0.42, Y: 0.35, Z: 0.0}

	h.Points[PinkyMCP] = Landmark{X: 0.40, Y: 0.70, Z: 0.0}
	h.Points[PinkyPIP] = Landmark{X: 0.37, Y: 0.60, Z: 0.0}
	h.Points[PinkyDIP] = Landmark{X: 0.35, Y: 0.50, Z: 0.0}
	h.Points[PinkyTip] = Landmark{X: 0.34, Y: 0.42, Z: 0.0}

	return h
}
