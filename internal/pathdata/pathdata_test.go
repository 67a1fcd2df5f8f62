package pathdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/svganim/internal/geom"
)

func TestParseLines(t *testing.T) {
	p, err := Parse("M0,0 L100,0 l0 100")
	require.NoError(t, err)
	assert.InDelta(t, 200, p.Length(), 1e-9)

	pt, angle := p.PointAt(0.25)
	assert.InDelta(t, 50, pt.X, 1e-9)
	assert.InDelta(t, 0, pt.Y, 1e-9)
	assert.InDelta(t, 0, angle, 1e-9)

	pt, angle = p.PointAt(0.75)
	assert.InDelta(t, 100, pt.X, 1e-9)
	assert.InDelta(t, 50, pt.Y, 1e-9)
	assert.InDelta(t, 90, angle, 1e-9)

	pt, _ = p.PointAt(1)
	assert.Equal(t, geom.Point{X: 100, Y: 100}, pt)
}

func TestParseHorizontalVerticalClose(t *testing.T) {
	p, err := Parse("M10 10 H60 V60 h-50 z")
	require.NoError(t, err)
	assert.InDelta(t, 200, p.Length(), 1e-9)
	assert.Equal(t, geom.Bounds{X: 10, Y: 10, Width: 50, Height: 50}, p.Bounds())
	assert.Equal(t, geom.Point{X: 10, Y: 10}, p.Start())
}

func TestParseImplicitLineTo(t *testing.T) {
	p, err := Parse("M0 0 10 0 10 10")
	require.NoError(t, err)
	assert.InDelta(t, 20, p.Length(), 1e-9)
}

func TestParseCurves(t *testing.T) {
	p, err := Parse("M0 0 C0 50 100 50 100 0 S200 -50 200 0")
	require.NoError(t, err)
	end, _ := p.PointAt(1)
	assert.InDelta(t, 200, end.X, 1e-9)
	assert.InDelta(t, 0, end.Y, 1e-9)
	assert.Greater(t, p.Length(), 200.0)

	q, err := Parse("M0 0 Q50 50 100 0 T200 0")
	require.NoError(t, err)
	mid, _ := q.PointAt(0.5)
	assert.InDelta(t, 100, mid.X, 1)
}

func TestParseArc(t *testing.T) {
	// half circle of radius 50 from (0,0) to (100,0)
	p, err := Parse("M0 0 A50 50 0 0 1 100 0")
	require.NoError(t, err)
	assert.InDelta(t, 157.08, p.Length(), 0.5)

	// packed flags
	q, err := Parse("M0 0a50 50 0 01100 0")
	require.NoError(t, err)
	assert.InDelta(t, p.Length(), q.Length(), 1e-6)
}

func TestParseErrors(t *testing.T) {
	for _, d := range []string{"L10", "M10", "M0 0 X5 5", "M0 0 A1 1 0 2 0 3 3"} {
		_, err := Parse(d)
		assert.Error(t, err, d)
	}
}

func TestEmptyPath(t *testing.T) {
	p, err := Parse("")
	require.NoError(t, err)
	assert.True(t, p.Empty())
	pt, _ := p.PointAt(0.5)
	assert.Equal(t, geom.Point{}, pt)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"M0 0 L100 0", "M 10 5 L 110 5"},
		{"m0,0 10,0 l5 5z", "m 10 5 10 0 l 5 5 z"},
		{"M0 0H50V20", "M 10 5 H 60 V 25"},
		{"M0 0 C10 0 20 10 30 10", "M 10 5 C 20 5 30 15 40 15"},
		{"M0 0 A10 10 0 0110 10", "M 10 5 A 10 10 0 0 1 20 15"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Translate(tt.in, 10, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			before, _ := Parse(tt.in)
			after, err := Parse(got)
			require.NoError(t, err)
			assert.InDelta(t, before.Length(), after.Length(), 1e-6)
		})
	}

	_, err := Translate("M0 0 X1", 1, 1)
	assert.Error(t, err)
}
