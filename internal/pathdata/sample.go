package pathdata

import (
	"math"

	"github.com/ivlev/svganim/internal/geom"
)

func (p *Path) measure() {
	p.lengths = make([]float64, len(p.subpaths))
	p.total = 0
	for i, sub := range p.subpaths {
		for j := 1; j < len(sub); j++ {
			p.total += sub[j].Sub(sub[j-1]).Len()
		}
		p.lengths[i] = p.total
	}
}

// Length is the total length of all subpaths
func (p *Path) Length() float64 {
	return p.total
}

// Empty reports whether the path has no drawable segment
func (p *Path) Empty() bool {
	return len(p.subpaths) == 0
}

// Bounds returns the bounding box of the flattened path
func (p *Path) Bounds() geom.Bounds {
	if p.Empty() {
		return geom.Bounds{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sub := range p.subpaths {
		for _, pt := range sub {
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
	}
	return geom.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Start returns the first point of the path
func (p *Path) Start() geom.Point {
	if p.Empty() {
		return geom.Point{}
	}
	return p.subpaths[0][0]
}

// PointAt returns the point at fraction t (0..1) of the total length and the
// tangent direction there in degrees.
func (p *Path) PointAt(t float64) (geom.Point, float64) {
	if p.Empty() {
		return geom.Point{}, 0
	}
	t = math.Max(0, math.Min(1, t))
	target := t * p.total

	walked := 0.0
	var lastPt geom.Point
	var lastAngle float64
	for _, sub := range p.subpaths {
		for j := 1; j < len(sub); j++ {
			seg := sub[j].Sub(sub[j-1])
			l := seg.Len()
			if l == 0 {
				continue
			}
			angle := math.Atan2(seg.Y, seg.X) * 180 / math.Pi
			if walked+l >= target {
				f := (target - walked) / l
				return sub[j-1].Add(seg.Scale(f)), angle
			}
			walked += l
			lastPt, lastAngle = sub[j], angle
		}
	}
	return lastPt, lastAngle
}

// Polylines returns the flattened subpaths, for drawing overlays
func (p *Path) Polylines() [][]geom.Point {
	out := make([][]geom.Point, len(p.subpaths))
	for i, sub := range p.subpaths {
		out[i] = append([]geom.Point(nil), sub...)
	}
	return out
}
