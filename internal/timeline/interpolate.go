package timeline

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/ivlev/svganim/internal/anim"
)

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// bracket finds the keyframe segment containing p and the local progress
// inside it. times must be non-decreasing.
func bracket(times []float64, p float64) (int, float64) {
	n := len(times)
	if n < 2 || p <= times[0] {
		return 0, 0
	}
	if p >= times[n-1] {
		return n - 2, 1
	}
	for i := 0; i < n-1; i++ {
		if p >= times[i] && p < times[i+1] {
			span := times[i+1] - times[i]
			if span == 0 {
				return i, 1
			}
			return i, (p - times[i]) / span
		}
	}
	return n - 2, 1
}

// discreteIndex picks the value shown at p in discrete mode
func discreteIndex(times []float64, n int, p float64) int {
	if len(times) == n {
		idx := 0
		for i, kt := range times {
			if p >= kt {
				idx = i
			}
		}
		return idx
	}
	idx := int(p * float64(n))
	return min(max(idx, 0), n-1)
}

// evenTimes spaces n keyframes uniformly over [0,1]
func evenTimes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if n > 1 {
			out[i] = float64(i) / float64(n-1)
		}
	}
	return out
}

// pacedTimes spaces keyframes by the distance between successive values so
// the animation moves at constant speed. Falls back to even spacing when the
// values are not numeric.
func pacedTimes(values []string) []float64 {
	n := len(values)
	if n < 2 {
		return evenTimes(n)
	}
	dist := make([]float64, n)
	for i := 1; i < n; i++ {
		a, okA := anim.ParseNumbers(values[i-1])
		b, okB := anim.ParseNumbers(values[i])
		if !okA || !okB || len(a) != len(b) {
			return evenTimes(n)
		}
		var sum float64
		for j := range a {
			sum += (b[j] - a[j]) * (b[j] - a[j])
		}
		dist[i] = dist[i-1] + math.Sqrt(sum)
	}
	total := dist[n-1]
	if total == 0 {
		return evenTimes(n)
	}
	for i := range dist {
		dist[i] /= total
	}
	return dist
}

// splineEase maps linear progress x through the cubic-bezier timing curve
// (0,0) (x1,y1) (x2,y2) (1,1)
func splineEase(s anim.Spline, x float64) float64 {
	if x <= 0 || x >= 1 {
		return x
	}
	x1, y1, x2, y2 := s[0], s[1], s[2], s[3]
	bez := func(a, b, t float64) float64 {
		u := 1 - t
		return 3*u*u*t*a + 3*u*t*t*b + t*t*t
	}
	// bisection on x(t); x(t) is monotonic for control points in [0,1]
	lo, hi := 0.0, 1.0
	t := x
	for range 40 {
		v := bez(x1, x2, t)
		if math.Abs(v-x) < 1e-7 {
			break
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bez(y1, y2, t)
}

// mix interpolates two animation values. Colors blend per channel, numeric
// lists blend token by token, anything else switches halfway.
func mix(a, b string, t float64) string {
	if ca, ok := parseColor(a); ok {
		if cb, ok := parseColor(b); ok {
			return formatColor(color.RGBA{
				R: uint8(math.Round(lerp(float64(ca.R), float64(cb.R), t))),
				G: uint8(math.Round(lerp(float64(ca.G), float64(cb.G), t))),
				B: uint8(math.Round(lerp(float64(ca.B), float64(cb.B), t))),
				A: uint8(math.Round(lerp(float64(ca.A), float64(cb.A), t))),
			})
		}
	}
	na, okA := anim.ParseNumbers(a)
	nb, okB := anim.ParseNumbers(b)
	if okA && okB && len(na) == len(nb) {
		out := make([]float64, len(na))
		for i := range na {
			out[i] = lerp(na[i], nb[i], t)
		}
		return anim.FormatNumbers(out...)
	}
	if t < 0.5 {
		return a
	}
	return b
}

// addValues sums two numeric lists token by token; the shorter list is
// padded with zeros. ok is false if either side is not numeric.
func addValues(a, b string, k float64) (string, bool) {
	na, okA := anim.ParseNumbers(a)
	nb, okB := anim.ParseNumbers(b)
	if !okA || !okB {
		return a, false
	}
	out := make([]float64, max(len(na), len(nb)))
	for i := range out {
		if i < len(na) {
			out[i] += na[i]
		}
		if i < len(nb) {
			out[i] += k * nb[i]
		}
	}
	return anim.FormatNumbers(out...), true
}

// parseColor understands #rgb, #rrggbb, #rrggbbaa, rgb()/rgba() and the
// SVG color keywords
func parseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.RGBA{}, false
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		switch len(hex) {
		case 3:
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
			fallthrough
		case 6:
			hex += "ff"
		case 8:
		default:
			return color.RGBA{}, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, false
		}
		return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
	}
	for _, fn := range []string{"rgba(", "rgb("} {
		body, ok := strings.CutPrefix(s, fn)
		if !ok {
			continue
		}
		body, ok = strings.CutSuffix(body, ")")
		if !ok {
			return color.RGBA{}, false
		}
		parts := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
		if len(parts) < 3 || len(parts) > 4 {
			return color.RGBA{}, false
		}
		var ch [4]float64
		ch[3] = 255
		for i, p := range parts {
			pct := strings.HasSuffix(p, "%")
			v, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil {
				return color.RGBA{}, false
			}
			switch {
			case pct:
				v = v / 100 * 255
			case i == 3:
				v *= 255
			}
			ch[i] = math.Max(0, math.Min(255, v))
		}
		return color.RGBA{R: uint8(math.Round(ch[0])), G: uint8(math.Round(ch[1])), B: uint8(math.Round(ch[2])), A: uint8(math.Round(ch[3]))}, true
	}
	return color.RGBA{}, false
}

func formatColor(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
}

// sample evaluates the value list of d at simple-duration progress p.
// base is the underlying value used by to-only and by animations.
func sample(d *anim.Description, p float64, base string) (string, bool) {
	if d.Kind == anim.KindSet {
		return d.To, d.To != ""
	}

	var values []string
	switch {
	case len(d.Values) > 0:
		values = d.Values
	case d.HasFromTo():
		values = []string{d.From, d.To}
	case d.To != "":
		values = []string{base, d.To}
	case d.By != "":
		from := d.From
		if from == "" {
			from = base
		}
		to, ok := addValues(from, d.By, 1)
		if !ok {
			return "", false
		}
		values = []string{from, to}
	default:
		return "", false
	}
	if len(values) == 1 {
		return values[0], true
	}

	mode := d.EffectiveCalcMode()
	times := d.KeyTimes
	if len(times) != len(values) {
		times = nil
	}
	if mode == anim.CalcDiscrete {
		return values[discreteIndex(times, len(values), p)], true
	}
	if times == nil || mode == anim.CalcPaced {
		if mode == anim.CalcPaced {
			times = pacedTimes(values)
		} else {
			times = evenTimes(len(values))
		}
	}

	i, local := bracket(times, p)
	if mode == anim.CalcSpline && i < len(d.KeySplines) {
		local = splineEase(d.KeySplines[i], local)
	}
	return mix(values[i], values[i+1], local), true
}
