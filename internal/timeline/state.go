package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/pathdata"
)

// Transform is the accumulated transform of every transform animation on
// one element. Translate, rotate and skew add up, scale multiplies.
type Transform struct {
	TranslateX, TranslateY float64
	Rotate                 float64 // degrees
	RotateCX, RotateCY     float64
	ScaleX, ScaleY         float64
	SkewX, SkewY           float64 // degrees
}

// IdentityTransform leaves the element untouched
var IdentityTransform = Transform{ScaleX: 1, ScaleY: 1}

func (t *Transform) apply(tt anim.TransformType, n []float64) {
	at := func(i int, def float64) float64 {
		if i < len(n) {
			return n[i]
		}
		return def
	}
	switch tt {
	case anim.TransformTranslate:
		t.TranslateX += at(0, 0)
		t.TranslateY += at(1, 0)
	case anim.TransformRotate:
		t.Rotate += at(0, 0)
		if len(n) >= 3 {
			t.RotateCX, t.RotateCY = n[1], n[2]
		}
	case anim.TransformScale:
		sx := at(0, 1)
		t.ScaleX *= sx
		t.ScaleY *= at(1, sx)
	case anim.TransformSkewX:
		t.SkewX += at(0, 0)
	case anim.TransformSkewY:
		t.SkewY += at(0, 0)
	}
}

// String renders t as an SVG transform list, omitting identity parts
func (t Transform) String() string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	var parts []string
	if t.TranslateX != 0 || t.TranslateY != 0 {
		parts = append(parts, fmt.Sprintf("translate(%s %s)", num(t.TranslateX), num(t.TranslateY)))
	}
	if t.Rotate != 0 {
		if t.RotateCX != 0 || t.RotateCY != 0 {
			parts = append(parts, fmt.Sprintf("rotate(%s %s %s)", num(t.Rotate), num(t.RotateCX), num(t.RotateCY)))
		} else {
			parts = append(parts, fmt.Sprintf("rotate(%s)", num(t.Rotate)))
		}
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		parts = append(parts, fmt.Sprintf("scale(%s %s)", num(t.ScaleX), num(t.ScaleY)))
	}
	if t.SkewX != 0 {
		parts = append(parts, fmt.Sprintf("skewX(%s)", num(t.SkewX)))
	}
	if t.SkewY != 0 {
		parts = append(parts, fmt.Sprintf("skewY(%s)", num(t.SkewY)))
	}
	return strings.Join(parts, " ")
}

// identity value a to-only transform animation starts from
func transformBase(tt anim.TransformType) string {
	if tt == anim.TransformScale {
		return "1 1"
	}
	return "0 0"
}

// MotionState is the position and heading along a motion path
type MotionState struct {
	X, Y  float64
	Angle float64 // degrees, 0 unless rotate is set
}

// ElementState is the interpolated look of one element at one moment
type ElementState struct {
	ID         string
	Transform  Transform
	Motion     *MotionState
	Attributes map[string]string // animated attributes; the static value when inactive
	Active     []string          // ids of the descriptions contributing
}

// Attr returns the state value of an animated attribute
func (s ElementState) Attr(name string) string {
	return s.Attributes[name]
}

// Matrix composes motion and transform into one affine matrix
func (s ElementState) Matrix() f64.Aff3 {
	m := identity()
	if s.Motion != nil {
		m = mul(m, translate(s.Motion.X, s.Motion.Y))
		m = mul(m, rotate(s.Motion.Angle))
	}
	t := s.Transform
	m = mul(m, translate(t.TranslateX, t.TranslateY))
	if t.Rotate != 0 {
		m = mul(m, translate(t.RotateCX, t.RotateCY))
		m = mul(m, rotate(t.Rotate))
		m = mul(m, translate(-t.RotateCX, -t.RotateCY))
	}
	m = mul(m, f64.Aff3{t.ScaleX, 0, 0, 0, t.ScaleY, 0})
	if t.SkewX != 0 {
		m = mul(m, f64.Aff3{1, math.Tan(radians(t.SkewX)), 0, 0, 1, 0})
	}
	if t.SkewY != 0 {
		m = mul(m, f64.Aff3{1, 0, 0, math.Tan(radians(t.SkewY)), 1, 0})
	}
	return m
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func identity() f64.Aff3 { return f64.Aff3{1, 0, 0, 0, 1, 0} }

func translate(x, y float64) f64.Aff3 { return f64.Aff3{1, 0, x, 0, 1, y} }

func rotate(deg float64) f64.Aff3 {
	s, c := math.Sincos(radians(deg))
	return f64.Aff3{c, -s, 0, s, c, 0}
}

// mul returns a·b
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// activeProgress maps absolute time t to progress inside the simple
// duration. iter is the number of completed iterations. ok is false outside
// the active interval unless fill=freeze holds the final value; the end of
// the interval itself still counts as active.
func activeProgress(d *anim.Description, begin, t float64) (p, iter float64, ok bool) {
	if math.IsNaN(begin) || math.IsInf(begin, 1) || t < begin {
		return 0, 0, false
	}
	local := t - begin
	if d.Dur <= 0 {
		// set without a duration holds from begin on
		if d.Kind == anim.KindSet {
			return 1, 0, true
		}
		return 0, 0, false
	}
	total := d.TotalDuration()
	if local >= total {
		if local > total && d.EffectiveFill() != anim.FillFreeze {
			return 0, 0, false
		}
		iter = math.Floor(total / d.Dur)
		p = total/d.Dur - iter
		if p == 0 && iter > 0 {
			p, iter = 1, iter-1
		}
		return p, iter, true
	}
	iter = math.Floor(local / d.Dur)
	return local/d.Dur - iter, iter, true
}

// lastValue is the value an iteration ends on, for accumulate=sum
func lastValue(d *anim.Description) string {
	if v := d.KeyframeValues(); len(v) > 0 {
		return v[len(v)-1]
	}
	return d.By
}

// PathLookup resolves an mpath reference to path data
type PathLookup func(id string) (string, bool)

type calculator struct {
	begins map[*anim.Description]float64
	paths  PathLookup
	log    zerolog.Logger
}

// CalculateElementState computes the state of el at time t from the
// descriptions targeting it. Chained begins resolve against ds.
func CalculateElementState(el anim.Element, ds []anim.Description, t float64) ElementState {
	c := calculator{log: zerolog.Nop()}
	c.begins = beginsByDescription(ds, c.log)
	return c.element(el, ds, t)
}

func beginsByDescription(ds []anim.Description, log zerolog.Logger) map[*anim.Description]float64 {
	begins := ResolveBegins(ds, log)
	out := make(map[*anim.Description]float64, len(ds))
	for i := range ds {
		out[&ds[i]] = begins[i]
	}
	return out
}

func (c *calculator) element(el anim.Element, ds []anim.Description, t float64) ElementState {
	st := ElementState{ID: el.ID, Transform: IdentityTransform, Attributes: map[string]string{}}
	for i := range ds {
		d := &ds[i]
		if d.Target != el.ID {
			continue
		}
		name := d.AttributeName
		if (d.Kind == anim.KindAnimate || d.Kind == anim.KindSet) && name != "" {
			if _, seen := st.Attributes[name]; !seen {
				if v := el.Attr(name); v != "" {
					st.Attributes[name] = v
				}
			}
		}

		begin, ok := c.begins[d]
		if !ok {
			begin = d.Begin.Offset
		}
		p, iter, active := activeProgress(d, begin, t)
		if !active {
			continue
		}
		if c.apply(&st, el, d, p, iter) {
			st.Active = append(st.Active, d.ID)
		}
	}
	return st
}

func (c *calculator) apply(st *ElementState, el anim.Element, d *anim.Description, p, iter float64) bool {
	switch d.Kind {
	case anim.KindTransform:
		v, ok := sample(d, p, transformBase(d.TransformType))
		if !ok {
			return false
		}
		if d.Accumulate && iter > 0 {
			v, _ = addValues(v, lastValue(d), iter)
		}
		n, ok := anim.ParseNumbers(v)
		if !ok {
			return false
		}
		st.Transform.apply(d.TransformType, n)
		return true

	case anim.KindMotion:
		m, ok := c.motion(d, p)
		if ok {
			st.Motion = &m
		}
		return ok

	case anim.KindAnimate, anim.KindSet:
		if d.AttributeName == "" {
			return false
		}
		base, ok := st.Attributes[d.AttributeName]
		if !ok {
			base = el.Attr(d.AttributeName)
		}
		v, ok := sample(d, p, base)
		if !ok {
			return false
		}
		if d.Kind == anim.KindAnimate {
			if d.Accumulate && iter > 0 {
				v, _ = addValues(v, lastValue(d), iter)
			}
			if d.Additive && base != "" {
				if sum, ok := addValues(base, v, 1); ok {
					v = sum
				}
			}
		}
		st.Attributes[d.AttributeName] = v
		return true
	}
	return false
}

func (c *calculator) motion(d *anim.Description, p float64) (MotionState, bool) {
	data := d.Path
	if d.PathRef != "" && c.paths != nil {
		if ref, ok := c.paths(strings.TrimPrefix(d.PathRef, "#")); ok {
			data = ref
		}
	}

	if data == "" {
		// motion given as point values
		v, ok := sample(d, p, "0 0")
		if !ok {
			return MotionState{}, false
		}
		n, ok := anim.ParseNumbers(v)
		if !ok || len(n) < 2 {
			return MotionState{}, false
		}
		return MotionState{X: n[0], Y: n[1]}, true
	}

	path, err := pathdata.Parse(data)
	if err != nil || path.Empty() {
		c.log.Debug().Err(err).Str("animation", d.ID).Msg("motion path unusable")
		return MotionState{}, false
	}
	pt, tangent := path.PointAt(p)
	m := MotionState{X: pt.X, Y: pt.Y}
	switch d.Rotate {
	case "":
	case "auto":
		m.Angle = tangent
	case "auto-reverse":
		m.Angle = tangent + 180
	default:
		if a, err := strconv.ParseFloat(d.Rotate, 64); err == nil {
			m.Angle = a
		}
	}
	return m, true
}
