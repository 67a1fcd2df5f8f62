// Package pathdata parses SVG path data and samples positions along it,
// which is what animateMotion needs to place an element at a given progress.
package pathdata

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/ivlev/svganim/internal/geom"
)

// Path is a parsed path flattened into polylines, one per subpath
type Path struct {
	subpaths [][]geom.Point
	lengths  []float64 // cumulative length at each vertex, per subpath
	total    float64
}

// arc and curve flattening resolution
const curveSegments = 24

type scanner struct {
	b   []byte
	pos int
}

func (s *scanner) skipSeparators() {
	for s.pos < len(s.b) {
		switch s.b[s.pos] {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) done() bool {
	s.skipSeparators()
	return s.pos >= len(s.b)
}

func (s *scanner) command() (byte, bool) {
	s.skipSeparators()
	if s.pos >= len(s.b) {
		return 0, false
	}
	c := s.b[s.pos]
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		s.pos++
		return c, true
	}
	return 0, false
}

func (s *scanner) number() (float64, error) {
	s.skipSeparators()
	v, n := strconv.ParseFloat(s.b[s.pos:])
	if n == 0 {
		return 0, fmt.Errorf("expected number at offset %d", s.pos)
	}
	s.pos += n
	return v, nil
}

// flag reads an arc flag, which may be packed without separators
func (s *scanner) flag() (bool, error) {
	s.skipSeparators()
	if s.pos >= len(s.b) || (s.b[s.pos] != '0' && s.b[s.pos] != '1') {
		return false, fmt.Errorf("expected arc flag at offset %d", s.pos)
	}
	f := s.b[s.pos] == '1'
	s.pos++
	return f, nil
}

func (s *scanner) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := s.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// startsNumber reports whether another implicit argument set follows
func (s *scanner) startsNumber() bool {
	s.skipSeparators()
	if s.pos >= len(s.b) {
		return false
	}
	c := s.b[s.pos]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

// Parse reads SVG path data (M L H V C S Q T A Z, absolute and relative)
func Parse(d string) (*Path, error) {
	s := &scanner{b: []byte(d)}
	p := &Path{}

	var cur, start, lastCtrl geom.Point
	var prevCmd byte
	var sub []geom.Point

	flush := func() {
		if len(sub) > 1 {
			p.subpaths = append(p.subpaths, sub)
		}
		sub = nil
	}
	lineTo := func(pt geom.Point) {
		if len(sub) == 0 {
			sub = append(sub, cur)
		}
		sub = append(sub, pt)
		cur = pt
	}

	for !s.done() {
		cmd, ok := s.command()
		if !ok {
			return nil, fmt.Errorf("expected command at offset %d", s.pos)
		}
		rel := cmd >= 'a'
		upper := cmd &^ 0x20

		for first := true; first || (upper != 'Z' && s.startsNumber()); first = false {
			base := geom.Point{}
			if rel {
				base = cur
			}
			switch upper {
			case 'M':
				v, err := s.numbers(2)
				if err != nil {
					return nil, err
				}
				pt := base.Add(geom.Point{X: v[0], Y: v[1]})
				if first {
					flush()
					cur, start = pt, pt
					sub = []geom.Point{pt}
				} else {
					// implicit lineto after moveto
					lineTo(pt)
				}
			case 'L':
				v, err := s.numbers(2)
				if err != nil {
					return nil, err
				}
				lineTo(base.Add(geom.Point{X: v[0], Y: v[1]}))
			case 'H':
				v, err := s.number()
				if err != nil {
					return nil, err
				}
				x := v
				if rel {
					x += cur.X
				}
				lineTo(geom.Point{X: x, Y: cur.Y})
			case 'V':
				v, err := s.number()
				if err != nil {
					return nil, err
				}
				y := v
				if rel {
					y += cur.Y
				}
				lineTo(geom.Point{X: cur.X, Y: y})
			case 'C', 'S':
				var c1 geom.Point
				var rest []float64
				var err error
				if upper == 'C' {
					var v []float64
					if v, err = s.numbers(6); err != nil {
						return nil, err
					}
					c1 = base.Add(geom.Point{X: v[0], Y: v[1]})
					rest = v[2:]
				} else {
					if rest, err = s.numbers(4); err != nil {
						return nil, err
					}
					c1 = cur
					if prevCmd == 'C' || prevCmd == 'S' {
						c1 = cur.Add(cur.Sub(lastCtrl))
					}
				}
				c2 := base.Add(geom.Point{X: rest[0], Y: rest[1]})
				end := base.Add(geom.Point{X: rest[2], Y: rest[3]})
				p0 := cur
				for i := 1; i <= curveSegments; i++ {
					lineTo(cubic(p0, c1, c2, end, float64(i)/curveSegments))
				}
				lastCtrl = c2
			case 'Q', 'T':
				var c geom.Point
				var end geom.Point
				if upper == 'Q' {
					v, err := s.numbers(4)
					if err != nil {
						return nil, err
					}
					c = base.Add(geom.Point{X: v[0], Y: v[1]})
					end = base.Add(geom.Point{X: v[2], Y: v[3]})
				} else {
					v, err := s.numbers(2)
					if err != nil {
						return nil, err
					}
					c = cur
					if prevCmd == 'Q' || prevCmd == 'T' {
						c = cur.Add(cur.Sub(lastCtrl))
					}
					end = base.Add(geom.Point{X: v[0], Y: v[1]})
				}
				p0 := cur
				for i := 1; i <= curveSegments; i++ {
					lineTo(quad(p0, c, end, float64(i)/curveSegments))
				}
				lastCtrl = c
			case 'A':
				v, err := s.numbers(3)
				if err != nil {
					return nil, err
				}
				large, err := s.flag()
				if err != nil {
					return nil, err
				}
				sweep, err := s.flag()
				if err != nil {
					return nil, err
				}
				e, err := s.numbers(2)
				if err != nil {
					return nil, err
				}
				end := base.Add(geom.Point{X: e[0], Y: e[1]})
				for _, pt := range arcPoints(cur, v[0], v[1], v[2], large, sweep, end) {
					lineTo(pt)
				}
			case 'Z':
				if cur != start {
					lineTo(start)
				}
				cur = start
			default:
				return nil, fmt.Errorf("unsupported path command %q", cmd)
			}
			prevCmd = upper
		}
	}
	flush()
	p.measure()
	return p, nil
}

func cubic(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return geom.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

func quad(p0, p1, p2 geom.Point, t float64) geom.Point {
	mt := 1 - t
	return geom.Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

// arcPoints converts an endpoint-parameterized elliptical arc to its center
// parameterization (SVG implementation notes, F.6.5) and samples it.
func arcPoints(from geom.Point, rx, ry, phiDeg float64, large, sweep bool, to geom.Point) []geom.Point {
	if from == to {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []geom.Point{to}
	}
	phi := phiDeg * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx, dy := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	// scale up radii that cannot span the endpoints
	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		s := math.Sqrt(l)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1 / ry
	cyp := -coef * ry * x1 / rx

	cx := cosPhi*cxp - sinPhi*cyp + (from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (from.Y+to.Y)/2

	theta1 := math.Atan2((y1-cyp)/ry, (x1-cxp)/rx)
	theta2 := math.Atan2((-y1-cyp)/ry, (-x1-cxp)/rx)
	delta := theta2 - theta1
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}

	pts := make([]geom.Point, 0, curveSegments)
	for i := 1; i <= curveSegments; i++ {
		th := theta1 + delta*float64(i)/curveSegments
		x := rx * math.Cos(th)
		y := ry * math.Sin(th)
		pts = append(pts, geom.Point{
			X: cosPhi*x - sinPhi*y + cx,
			Y: sinPhi*x + cosPhi*y + cy,
		})
	}
	pts[len(pts)-1] = to
	return pts
}
