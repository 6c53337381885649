// Package geometry provides the planar measurements used to classify finger posture.
package geometry

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// DegenerateAngle is returned by AngleBetween when either ray has zero length.
const DegenerateAngle = 0.0

// AngleBetween returns the angle in degrees at vertex p2 formed by the rays
// toward p1 and p3, in [0,180]. Depth is ignored.
func AngleBetween(p1, p2, p3 detector.Landmark) float64 {
	if samePlanar(p1, p2) || samePlanar(p3, p2) {
		return DegenerateAngle
	}

	radians := math.Atan2(p3.Y-p2.Y, p3.X-p2.X) - math.Atan2(p1.Y-p2.Y, p1.X-p2.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// Distance returns the Euclidean distance between a and b using only X and Y.
func Distance(a, b detector.Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func samePlanar(a, b detector.Landmark) bool {
	return a.X == b.X && a.Y == b.Y
}
