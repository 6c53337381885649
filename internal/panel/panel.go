// Package panel keeps the per-finger status rows and fingertip captions shown
// next to the video, and produces snapshots for connected clients.
package panel

import (
	"fmt"
	"sync"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/finger"
)

// Row and caption styling.
const (
	ClassExtended = "extended"
	ClassFolded   = "folded"
	CaptionClass  = "floating-caption"

	PlaceholderStatus     = "-"
	PlaceholderBackground = "rgba(255,255,255,0.1)"
	PlaceholderColor      = "#fff"
	ActiveColor           = "black"

	NoHandSummary = "No Hand Detected"
)

// Row is the status line for one finger.
type Row struct {
	Finger     finger.Name `json:"finger"`
	Label      string      `json:"label"`
	Status     string      `json:"status"`
	Background string      `json:"background"`
	Color      string      `json:"color"`
	Class      string      `json:"class"`
}

// Caption is a floating label anchored at a fingertip, in container pixels.
type Caption struct {
	Finger      finger.Name `json:"finger"`
	Text        string      `json:"text"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	BorderColor string      `json:"border_color"`
	Class       string      `json:"class"`
}

// CaptureState mirrors the capture controller for display.
type CaptureState struct {
	Capturing       bool           `json:"capturing"`
	SessionID       string         `json:"session_id,omitempty"`
	Facing          capture.Facing `json:"facing"`
	PreviewMirrored bool           `json:"preview_mirrored"`
}

// Snapshot is a point-in-time copy of the panel.
type Snapshot struct {
	Seq       uint64       `json:"seq"`
	Rows      [5]Row       `json:"rows"`
	Captions  []Caption    `json:"captions"`
	HandCount int          `json:"hand_count"`
	Summary   string       `json:"summary"`
	Capture   CaptureState `json:"capture"`
	Error     string       `json:"error,omitempty"`
}

// Panel is safe for concurrent use.
type Panel struct {
	mu        sync.Mutex
	seq       uint64
	rows      [5]Row
	captions  []Caption
	handCount int
	width     int
	height    int
	capture   CaptureState
	err       string
}

// New creates a panel in the no-hand state for a width x height container.
func New(width, height int) *Panel {
	p := &Panel{width: width, height: height}
	p.resetLocked()
	return p
}

// SetContainer sets the size of the element captions are positioned in.
func (p *Panel) SetContainer(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width = width
	p.height = height
}

// Container returns the caption container size.
func (p *Panel) Container() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Update shows one hand: every row gets the tip coordinates and state of its
// finger, and all captions are replaced by one per finger of this hand.
func (p *Panel) Update(hand *detector.Hand, states [5]finger.State, facing capture.Facing) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.captions = make([]Caption, 0, len(finger.Specs))
	w, h := float64(p.width), float64(p.height)

	for i, spec := range finger.Specs {
		tip := spec.Tip(hand)
		state := states[i]
		class := ClassFolded
		if state.IsExtended {
			class = ClassExtended
		}

		p.rows[i] = Row{
			Finger:     spec.Name,
			Label:      fmt.Sprintf("%s: X:%.2f Y:%.2f Z:%.2f", spec.Name.Title(), tip.X, tip.Y, 1-tip.Z),
			Status:     state.Label(),
			Background: spec.Color,
			Color:      ActiveColor,
			Class:      class,
		}

		x := tip.X * w
		if facing.Mirrored() {
			x = w - x
		}
		p.captions = append(p.captions, Caption{
			Finger:      spec.Name,
			Text:        spec.Name.Title() + ": " + state.Label(),
			X:           x,
			Y:           tip.Y * h,
			BorderColor: spec.Color,
			Class:       CaptionClass + " " + class,
		})
	}
	p.seq++
}

// Reset returns every row to its placeholder and removes all captions.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	p.seq++
}

func (p *Panel) resetLocked() {
	for i, spec := range finger.Specs {
		p.rows[i] = Row{
			Finger:     spec.Name,
			Label:      spec.Name.Title(),
			Status:     PlaceholderStatus,
			Background: PlaceholderBackground,
			Color:      PlaceholderColor,
		}
	}
	p.captions = nil
}

// SetHandCount records how many hands the latest frame contained.
func (p *Panel) SetHandCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handCount = n
	p.seq++
}

// SetCapture records the capture controller state.
func (p *Panel) SetCapture(state CaptureState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.capture = state
	p.seq++
}

// SetError sets a user-visible error; an empty message clears it.
func (p *Panel) SetError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = msg
	p.seq++
}

// Snapshot returns a copy of the panel.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Seq:       p.seq,
		Rows:      p.rows,
		Captions:  append([]Caption(nil), p.captions...),
		HandCount: p.handCount,
		Summary:   Summary(p.handCount),
		Capture:   p.capture,
		Error:     p.err,
	}
}

// Summary describes a hand count, e.g. "2 Hand(s) Detected".
func Summary(hands int) string {
	if hands <= 0 {
		return NoHandSummary
	}
	return fmt.Sprintf("%d Hand(s) Detected", hands)
}
