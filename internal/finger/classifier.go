package finger

import (
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/geometry"
)

// Classifier thresholds.
const (
	// ThumbReach is how much farther from the wrist the thumb tip must be
	// than the IP joint for the thumb to count as extended.
	ThumbReach = 1.1
	// StraightAngle is the angle at the DIP joint, in degrees, that a
	// finger must exceed to count as straight.
	StraightAngle = 120.0
)

// State is the classification of one finger in one frame.
type State struct {
	Name       Name `json:"name"`
	IsExtended bool `json:"extended"`
}

// Label returns "Extended" or "Folded".
func (s State) Label() string {
	if s.IsExtended {
		return "Extended"
	}
	return "Folded"
}

// IsExtended reports whether the finger described by spec is extended in h.
//
// Non-thumb fingers require both the tip above the PIP joint (smaller Y)
// and a DIP angle above StraightAngle; this assumes a roughly upright hand.
func IsExtended(h *detector.Hand, spec Spec) bool {
	if spec.Name == Thumb {
		wrist := h.Points[detector.Wrist]
		tip := h.Points[spec.Indices[3]]
		joint := h.Points[spec.Indices[2]]
		return thumbReaches(geometry.Distance(tip, wrist), geometry.Distance(joint, wrist))
	}

	pip := h.Points[spec.Indices[1]]
	dip := h.Points[spec.Indices[2]]
	tip := h.Points[spec.Indices[3]]

	return straightAndRaised(tip.Y < pip.Y, geometry.AngleBetween(pip, dip, tip))
}

func thumbReaches(tipDist, jointDist float64) bool {
	return tipDist > jointDist*ThumbReach
}

func straightAndRaised(raised bool, angle float64) bool {
	return raised && angle > StraightAngle
}

// Classify returns the state of all five fingers of h in Specs order.
// Each finger is judged independently and nothing carries over between frames.
func Classify(h *detector.Hand) [5]State {
	var states [5]State
	for i, spec := range Specs {
		states[i] = State{Name: spec.Name, IsExtended: IsExtended(h, spec)}
	}
	return states
}
