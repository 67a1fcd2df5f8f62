package geom

import "math"

// DefaultRotationStep is the snap increment in degrees used when none is configured
const DefaultRotationStep = 15.0

// ConstrainToAxis keeps only the dominant axis of delta when constrain is held.
// X survives only when |dx| > |dy|; on a tie the Y component is kept.
func ConstrainToAxis(delta Point, constrain bool) Point {
	if !constrain {
		return delta
	}
	if math.Abs(delta.X) > math.Abs(delta.Y) {
		return Point{X: delta.X, Y: 0}
	}
	return Point{X: 0, Y: delta.Y}
}

// SnapToGrid rounds each coordinate to the nearest multiple of size.
// Disabled snapping or a non-positive size returns p unchanged.
func SnapToGrid(p Point, size float64, enabled bool) Point {
	if !enabled || size <= 0 {
		return p
	}
	return Point{
		X: math.Round(p.X/size) * size,
		Y: math.Round(p.Y/size) * size,
	}
}

// ConstrainRotation rounds angle (degrees) to the nearest multiple of step
// when constrain is held. A non-positive step falls back to DefaultRotationStep.
func ConstrainRotation(angle float64, constrain bool, step float64) float64 {
	if !constrain {
		return angle
	}
	if step <= 0 {
		step = DefaultRotationStep
	}
	// math.Round rounds half away from zero
	return math.Round(angle/step) * step
}

// LockUniformScale replaces both scale components with the larger magnitude,
// keeping the sign each axis had.
func LockUniformScale(sx, sy float64, lock bool) (float64, float64) {
	if !lock {
		return sx, sy
	}
	m := math.Max(math.Abs(sx), math.Abs(sy))
	return math.Copysign(m, sx), math.Copysign(m, sy)
}
