package finger

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

// thumbHand puts the wrist and thumb IP 0.4 apart on a vertical line and
// the thumb tip ratio*0.4 from the wrist along the same line.
func thumbHand(ratio float64) *detector.Hand {
	h := &detector.Hand{}
	h.Points[detector.Wrist] = detector.Landmark{X: 0.5, Y: 0.9}
	h.Points[detector.ThumbIP] = detector.Landmark{X: 0.5, Y: 0.5}
	h.Points[detector.ThumbTip] = detector.Landmark{X: 0.5, Y: 0.9 - 0.4*ratio}
	return h
}

func TestIsExtended_Thumb(t *testing.T) {
	thumb, _ := Lookup(Thumb)

	tests := []struct {
		ratio float64
		want  bool
	}{
		{ratio: 0.8, want: false},
		{ratio: 1.0, want: false},
		{ratio: 1.05, want: false},
		{ratio: 1.15, want: true},
		{ratio: 1.5, want: true},
	}

	for _, tt := range tests {
		if got := IsExtended(thumbHand(tt.ratio), thumb); got != tt.want {
			t.Errorf("thumb at %.2fx joint distance: IsExtended = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestThumbReaches_Boundary(t *testing.T) {
	if thumbReaches(1.1, 1.0) {
		t.Error("tip exactly at the reach threshold must not be extended")
	}
	if !thumbReaches(1.1000001, 1.0) {
		t.Error("tip just past the reach threshold must be extended")
	}
}

// indexHand places the index PIP at (0.5, pipY), the DIP at (0.5, 0.5) and
// the tip 0.1 away from the DIP so the angle PIP-DIP-tip equals angle degrees.
func indexHand(pipY, angle float64) *detector.Hand {
	h := &detector.Hand{}
	h.Points[detector.IndexPIP] = detector.Landmark{X: 0.5, Y: pipY}
	h.Points[detector.IndexDIP] = detector.Landmark{X: 0.5, Y: 0.5}

	// The PIP ray points down (+Y); rotate it by angle toward +X.
	rad := angle * math.Pi / 180
	h.Points[detector.IndexTip] = detector.Landmark{
		X: 0.5 + 0.1*math.Sin(rad),
		Y: 0.5 + 0.1*math.Cos(rad),
	}
	return h
}

func pointingDown() *detector.Hand {
	h := &detector.Hand{}
	h.Points[detector.IndexPIP] = detector.Landmark{X: 0.5, Y: 0.4}
	h.Points[detector.IndexDIP] = detector.Landmark{X: 0.5, Y: 0.5}
	h.Points[detector.IndexTip] = detector.Landmark{X: 0.5, Y: 0.6}
	return h
}

func TestIsExtended_Finger(t *testing.T) {
	index, _ := Lookup(Index)

	tests := []struct {
		name string
		hand *detector.Hand
		want bool
	}{
		{name: "straight up", hand: indexHand(0.6, 180), want: true},
		{name: "slightly bent", hand: indexHand(0.6, 150), want: true},
		{name: "bent past threshold", hand: indexHand(0.6, 110), want: false},
		{name: "curled", hand: indexHand(0.6, 40), want: false},
		{name: "straight but pointing down", hand: pointingDown(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExtended(tt.hand, index); got != tt.want {
				t.Errorf("IsExtended() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("tip level with PIP is folded regardless of angle", func(t *testing.T) {
		h := &detector.Hand{}
		h.Points[detector.IndexPIP] = detector.Landmark{X: 0.3, Y: 0.5}
		h.Points[detector.IndexDIP] = detector.Landmark{X: 0.4, Y: 0.5}
		h.Points[detector.IndexTip] = detector.Landmark{X: 0.5, Y: 0.5}
		if IsExtended(h, index) {
			t.Error("expected folded when tip.y == pip.y")
		}
	})
}

func TestStraightAndRaised_Boundary(t *testing.T) {
	tests := []struct {
		name   string
		raised bool
		angle  float64
		want   bool
	}{
		{name: "exactly 120", raised: true, angle: 120, want: false},
		{name: "just above 120", raised: true, angle: 120.0001, want: true},
		{name: "not raised", raised: false, angle: 180, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := straightAndRaised(tt.raised, tt.angle); got != tt.want {
				t.Errorf("straightAndRaised(%v, %v) = %v, want %v", tt.raised, tt.angle, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		hand detector.Hand
		want [5]bool
	}{
		{name: "open palm", hand: detector.OpenPalmHand(), want: [5]bool{true, true, true, true, true}},
		{name: "thumbs up", hand: detector.ThumbsUpHand(), want: [5]bool{true, false, false, false, false}},
		{name: "fist", hand: detector.FistHand(), want: [5]bool{false, false, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := Classify(&tt.hand)
			for i, s := range states {
				if s.Name != Specs[i].Name {
					t.Errorf("states[%d].Name = %s, want %s", i, s.Name, Specs[i].Name)
				}
				if s.IsExtended != tt.want[i] {
					t.Errorf("%s extended = %v, want %v", s.Name, s.IsExtended, tt.want[i])
				}
			}
		})
	}
}

func TestSpecs(t *testing.T) {
	seen := make(map[int]bool)
	for i, s := range Specs {
		if s.Color == "" {
			t.Errorf("%s has no color", s.Name)
		}
		for j, idx := range s.Indices {
			if want := 1 + i*4 + j; idx != want {
				t.Errorf("%s index %d = %d, want %d", s.Name, j, idx, want)
			}
			seen[idx] = true
		}
	}
	if len(seen) != 20 {
		t.Errorf("specs cover %d landmarks, want 20", len(seen))
	}

	if _, ok := Lookup("palm"); ok {
		t.Error("Lookup of unknown finger should fail")
	}
}

func TestName_Title(t *testing.T) {
	if got := Pinky.Title(); got != "Pinky" {
		t.Errorf("Title() = %q, want Pinky", got)
	}
	if got := (State{Name: Ring}).Label(); got != "Folded" {
		t.Errorf("Label() = %q, want Folded", got)
	}
}
