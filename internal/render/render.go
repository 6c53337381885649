// Package render draws the hand skeleton and per-finger overlay onto video frames.
package render

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/finger"
)

// Overlay appearance.
const (
	SkeletonColor     = "#FFFFFF"
	SkeletonLineWidth = 2.0
	FingerLineWidth   = 5.0
	// DepthScale is the marker radius in pixels for a landmark at depth 0.
	DepthScale = 10.0
	// JPEGQuality is used by EncodeJPEG.
	JPEGQuality = 85
)

// Renderer owns a drawing surface sized to the video's native resolution.
// It is not safe for concurrent use.
type Renderer struct {
	width  int
	height int
	dc     *gg.Context
}

// New creates a renderer with a width x height surface.
func New(width, height int) *Renderer {
	r := &Renderer{}
	r.Resize(width, height)
	return r
}

// Size returns the surface dimensions.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Resize resynchronizes the surface to the given pixel dimensions. It is a
// no-op when the size is unchanged. Non-positive sizes are ignored.
func (r *Renderer) Resize(width, height int) bool {
	if width <= 0 || height <= 0 || (width == r.width && height == r.height && r.dc != nil) {
		return false
	}
	r.width = width
	r.height = height
	r.dc = gg.NewContext(width, height)
	return true
}

// Render draws img scaled to the surface, then each hand's skeleton, finger
// paths and depth markers. The front camera is mirrored horizontally; the
// same transform applies to the image and the overlay. The returned image is
// reused by the next call.
func (r *Renderer) Render(img image.Image, hands []detector.Hand, facing capture.Facing) *image.RGBA {
	dc := r.dc
	w, h := float64(r.width), float64(r.height)

	dc.Identity()
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	if facing.Mirrored() {
		dc.Translate(w, 0)
		dc.Scale(-1, 1)
	}

	if img != nil {
		size := img.Bounds().Size()
		if size.X > 0 && size.Y > 0 {
			dc.Push()
			dc.Scale(w/float64(size.X), h/float64(size.Y))
			dc.DrawImage(img, -img.Bounds().Min.X, -img.Bounds().Min.Y)
			dc.Pop()
		}
	}

	for i := range hands {
		r.drawHand(&hands[i])
	}

	return dc.Image().(*image.RGBA)
}

func (r *Renderer) drawHand(hand *detector.Hand) {
	dc := r.dc
	w, h := float64(r.width), float64(r.height)
	px := func(i int) (float64, float64) {
		p := hand.Points[i]
		return p.X * w, p.Y * h
	}

	dc.SetHexColor(SkeletonColor)
	dc.SetLineWidth(SkeletonLineWidth)
	for _, c := range detector.HandConnections {
		x1, y1 := px(c.From)
		x2, y2 := px(c.To)
		dc.DrawLine(x1, y1, x2, y2)
	}
	dc.Stroke()

	for _, spec := range finger.Specs {
		dc.SetHexColor(spec.Color)
		dc.SetLineWidth(FingerLineWidth)
		dc.MoveTo(px(detector.Wrist))
		for _, idx := range spec.Indices {
			dc.LineTo(px(idx))
		}
		dc.Stroke()

		for _, idx := range spec.Indices {
			radius := DepthRadius(hand.Points[idx].Z)
			if radius <= 0 {
				continue
			}
			x, y := px(idx)
			dc.DrawCircle(x, y, radius)
			dc.Fill()
		}
	}
}

// DepthRadius returns the marker radius for a landmark at depth z. Closer
// landmarks (smaller z) get larger markers.
func DepthRadius(z float64) float64 {
	return (1 - z) * DepthScale
}

// Project maps a landmark to pixel coordinates on a width x height surface,
// mirroring X for the front camera.
func Project(lm detector.Landmark, width, height int, facing capture.Facing) (float64, float64) {
	x := lm.X * float64(width)
	if facing.Mirrored() {
		x = float64(width) - x
	}
	return x, lm.Y * float64(height)
}

// EncodeJPEG encodes a rendered frame for streaming.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), nil
}
