package store

import (
	"math"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/pathdata"
)

// StaticBounds measures elements from their static geometry attributes.
// Bounds are in document units and do not depend on the viewport.
type StaticBounds struct{}

func (StaticBounds) Bounds(el anim.Element, _ geom.Viewport) (geom.Bounds, bool) {
	num := func(name string) float64 {
		v, _ := el.Number(name)
		return v
	}
	switch el.Tag {
	case "rect", "image", "use", "foreignObject":
		w, okW := el.Number("width")
		h, okH := el.Number("height")
		if !okW || !okH {
			return geom.Bounds{}, false
		}
		return geom.Bounds{X: num("x"), Y: num("y"), Width: w, Height: h}, true
	case "circle":
		r, ok := el.Number("r")
		if !ok {
			return geom.Bounds{}, false
		}
		return geom.Bounds{X: num("cx") - r, Y: num("cy") - r, Width: 2 * r, Height: 2 * r}, true
	case "ellipse":
		rx, ry := num("rx"), num("ry")
		return geom.Bounds{X: num("cx") - rx, Y: num("cy") - ry, Width: 2 * rx, Height: 2 * ry}, true
	case "line":
		x1, y1, x2, y2 := num("x1"), num("y1"), num("x2"), num("y2")
		return geom.Bounds{X: math.Min(x1, x2), Y: math.Min(y1, y2), Width: math.Abs(x2 - x1), Height: math.Abs(y2 - y1)}, true
	case "path":
		p, err := pathdata.Parse(el.Attr("d"))
		if err != nil || p.Empty() {
			return geom.Bounds{}, false
		}
		return p.Bounds(), true
	case "polygon", "polyline":
		pts, ok := anim.ParseNumbers(el.Attr("points"))
		if !ok || len(pts) < 2 {
			return geom.Bounds{}, false
		}
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for i := 0; i+1 < len(pts); i += 2 {
			minX, maxX = math.Min(minX, pts[i]), math.Max(maxX, pts[i])
			minY, maxY = math.Min(minY, pts[i+1]), math.Max(maxY, pts[i+1])
		}
		return geom.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
	case "svg":
		vb, ok := anim.ParseNumbers(el.Attr("viewBox"))
		if ok && len(vb) == 4 {
			return geom.Bounds{X: vb[0], Y: vb[1], Width: vb[2], Height: vb[3]}, true
		}
		w, okW := el.Number("width")
		h, okH := el.Number("height")
		return geom.Bounds{Width: w, Height: h}, okW && okH
	}
	return geom.Bounds{}, false
}
