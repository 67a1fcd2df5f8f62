package geom

import "math"

// Point is a 2D point or delta in either device or logical units
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Len returns the euclidean length of p as a vector
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Bounds is an axis-aligned bounding box in logical coordinates
type Bounds struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Center returns the middle of the box
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains reports whether p lies inside b (edges included)
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width &&
		p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Viewport is the canvas view transform: zoom factor plus pan offset in device pixels
type Viewport struct {
	Zoom float64 `yaml:"zoom"`
	PanX float64 `yaml:"panX"`
	PanY float64 `yaml:"panY"`
}

// IdentityViewport has zoom 1 and no pan
var IdentityViewport = Viewport{Zoom: 1}

func (v Viewport) zoom() float64 {
	if v.Zoom == 0 || math.IsNaN(v.Zoom) {
		return 1
	}
	return v.Zoom
}

// ToLogical converts a device/client point into document coordinates:
// logical = (p - origin - pan) / zoom
func ToLogical(p, origin Point, vp Viewport) Point {
	z := vp.zoom()
	return Point{
		X: (p.X - origin.X - vp.PanX) / z,
		Y: (p.Y - origin.Y - vp.PanY) / z,
	}
}

// ToDevice is the inverse of ToLogical
func ToDevice(p, origin Point, vp Viewport) Point {
	z := vp.zoom()
	return Point{
		X: p.X*z + vp.PanX + origin.X,
		Y: p.Y*z + vp.PanY + origin.Y,
	}
}

// ScreenLength converts a device-pixel length into document units, for
// overlay offsets that keep their on-screen size at any zoom
func (v Viewport) ScreenLength(px float64) float64 {
	return px / v.zoom()
}
