package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstrainToAxis(t *testing.T) {
	tests := []struct {
		name      string
		in        Point
		constrain bool
		want      Point
	}{
		{"x dominant", Point{50, 30}, true, Point{50, 0}},
		{"y dominant", Point{30, 50}, true, Point{0, 50}},
		{"tie keeps y", Point{40, 40}, true, Point{0, 40}},
		{"negative x dominant", Point{-60, 20}, true, Point{-60, 0}},
		{"unconstrained", Point{50, 30}, false, Point{50, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstrainToAxis(tt.in, tt.constrain))
		})
	}
}

func TestSnapToGrid(t *testing.T) {
	assert.Equal(t, Point{20, 20}, SnapToGrid(Point{17, 23}, 10, true))
	assert.Equal(t, Point{17, 23}, SnapToGrid(Point{17, 23}, 0, true))
	assert.Equal(t, Point{17, 23}, SnapToGrid(Point{17, 23}, -5, true))
	assert.Equal(t, Point{17, 23}, SnapToGrid(Point{17, 23}, 10, false))
	assert.Equal(t, Point{-20, 0}, SnapToGrid(Point{-17, 4}, 10, true))
}

func TestConstrainRotation(t *testing.T) {
	assert.Equal(t, 30.0, ConstrainRotation(37, true, 0))
	assert.Equal(t, 45.0, ConstrainRotation(38, true, 0))
	assert.Equal(t, 37.0, ConstrainRotation(37, false, 0))
	// 7.5 is exactly half a step; half rounds away from zero
	assert.Equal(t, 15.0, ConstrainRotation(7.5, true, 15))
	assert.Equal(t, -15.0, ConstrainRotation(-7.5, true, 15))
	assert.Equal(t, 90.0, ConstrainRotation(100, true, 45))
}

func TestLockUniformScale(t *testing.T) {
	sx, sy := LockUniformScale(2, -0.5, true)
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, -2.0, sy)

	sx, sy = LockUniformScale(-1, 3, true)
	assert.Equal(t, -3.0, sx)
	assert.Equal(t, 3.0, sy)

	sx, sy = LockUniformScale(2, 0.5, false)
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, 0.5, sy)
}

func TestLogicalRoundTrip(t *testing.T) {
	origin := Point{10, 20}
	vp := Viewport{Zoom: 2, PanX: 30, PanY: -40}

	logical := ToLogical(Point{110, 80}, origin, vp)
	assert.Equal(t, Point{35, 50}, logical)
	assert.Equal(t, Point{110, 80}, ToDevice(logical, origin, vp))

	// zero zoom behaves like identity zoom
	assert.Equal(t, Point{5, 5}, ToLogical(Point{5, 5}, Point{}, Viewport{}))
}

func TestBounds(t *testing.T) {
	b := Bounds{X: 10, Y: 10, Width: 100, Height: 50}
	assert.Equal(t, Point{60, 35}, b.Center())
	assert.True(t, b.Contains(Point{10, 60}))
	assert.False(t, b.Contains(Point{9, 20}))
}
