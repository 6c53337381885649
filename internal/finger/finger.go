// Package finger classifies each finger of a hand as extended or folded.
package finger

import (
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Name identifies one of the five fingers.
type Name string

const (
	Thumb  Name = "thumb"
	Index  Name = "index"
	Middle Name = "middle"
	Ring   Name = "ring"
	Pinky  Name = "pinky"
)

// Title returns the capitalized display form, e.g. "Thumb".
func (n Name) Title() string {
	if n == "" {
		return ""
	}
	return strings.ToUpper(string(n[:1])) + string(n[1:])
}

// Spec is the static description of one finger: its four landmark indices
// ordered proximal to distal and its display color.
type Spec struct {
	Name    Name
	Indices [4]int
	Color   string
}

// Tip returns the finger's distal landmark.
func (s Spec) Tip(h *detector.Hand) detector.Landmark {
	return h.Points[s.Indices[3]]
}

// Specs lists every finger in display order.
var Specs = [5]Spec{
	{Name: Thumb, Indices: [4]int{detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip}, Color: "#FF0000"},
	{Name: Index, Indices: [4]int{detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip}, Color: "#00FF00"},
	{Name: Middle, Indices: [4]int{detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip}, Color: "#0000FF"},
	{Name: Ring, Indices: [4]int{detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip}, Color: "#FFFF00"},
	{Name: Pinky, Indices: [4]int{detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip}, Color: "#FF00FF"},
}

// Lookup returns the Spec for name.
func Lookup(name Name) (Spec, bool) {
	for _, s := range Specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}
