// Package compiler turns animation descriptions into SMIL markup and back.
package compiler

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/system"
)

// Compat selects how element references are written
type Compat string

const (
	CompatModern Compat = "modern" // href="#id"
	CompatLegacy Compat = "legacy" // xlink:href="#id"
)

// Options control markup generation
type Options struct {
	Precision int    `yaml:"precision" toml:"precision"` // decimals kept in numeric tokens, <0 keeps them as is
	Optimize  bool   `yaml:"optimize" toml:"optimize"`   // omit attributes equal to their SMIL default
	Comments  bool   `yaml:"comments" toml:"comments"`
	Compat    Compat `yaml:"compat" toml:"compat"`
}

func DefaultOptions() Options {
	return Options{Precision: 3, Compat: CompatModern}
}

func (o Options) hrefName() string {
	if o.Compat == CompatLegacy {
		return "xlink:href"
	}
	return "href"
}

type attr struct {
	name, value string
}

type element struct {
	name     string
	attrs    []attr
	children []element
}

func (e *element) set(name, value string) {
	e.attrs = append(e.attrs, attr{name, value})
}

var escaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func (e element) write(b *bytes.Buffer) {
	b.WriteByte('<')
	b.WriteString(e.name)
	for _, a := range e.attrs {
		fmt.Fprintf(b, ` %s="%s"`, a.name, escaper.Replace(a.value))
	}
	if len(e.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	for _, c := range e.children {
		c.write(b)
	}
	fmt.Fprintf(b, "</%s>", e.name)
}

// Compile validates d and renders it as a single SMIL element
func Compile(d *anim.Description, opts Options) (string, error) {
	out, _, err := compile(d, opts)
	return out, err
}

func compile(d *anim.Description, opts Options) (string, []string, error) {
	res := Validate(d)
	if !res.Valid {
		id := ""
		if d != nil {
			id = d.ID
		}
		return "", nil, &ValidationError{ID: id, Errors: res.Errors}
	}

	var warnings []string
	el := element{name: string(d.Kind)}
	val := func(s string) string { return RoundValue(s, opts.Precision) }

	if d.ID != "" {
		el.set("id", d.ID)
	}
	if d.Target != "" {
		el.set(opts.hrefName(), "#"+d.Target)
	}
	switch d.Kind {
	case anim.KindAnimate, anim.KindSet:
		el.set("attributeName", d.AttributeName)
	case anim.KindTransform:
		el.set("attributeName", "transform")
		el.set("type", string(d.TransformType))
	}

	if d.Kind == anim.KindSet {
		el.set("to", val(d.To))
	} else {
		writeValues(&el, d, val)
	}

	if d.Kind != anim.KindSet {
		calc := d.EffectiveCalcMode()
		if calc == anim.CalcSpline {
			splines := make([]string, len(d.KeySplines))
			for i, s := range d.KeySplines {
				splines[i] = fmt.Sprintf("%s %s %s %s", keyNumber(s[0]), keyNumber(s[1]), keyNumber(s[2]), keyNumber(s[3]))
			}
			el.set("keySplines", strings.Join(splines, ";"))
		} else if len(d.KeySplines) > 0 {
			warnings = append(warnings, fmt.Sprintf("animation %q: keySplines ignored without calcMode spline", d.ID))
		}
		if !opts.Optimize || calc != defaultCalcMode(d.Kind) {
			el.set("calcMode", string(calc))
		}
	}

	if d.Dur > 0 {
		el.set("dur", anim.FormatSeconds(roundDuration(d.Dur, opts.Precision)))
	}
	if !opts.Optimize || !d.Begin.IsZero() {
		b := d.Begin
		b.Offset = roundTo(b.Offset, opts.Precision)
		b.Delay = roundTo(b.Delay, opts.Precision)
		el.set("begin", b.String())
	}
	if !opts.Optimize || d.Repeat.Indefinite || d.Repeat.Count > 0 && d.Repeat.Count != 1 {
		el.set("repeatCount", d.Repeat.String())
	}
	if d.RepeatDur != nil {
		el.set("repeatDur", anim.FormatSeconds(roundDuration(*d.RepeatDur, opts.Precision)))
	}
	if fill := d.EffectiveFill(); !opts.Optimize || fill != anim.FillRemove {
		el.set("fill", string(fill))
	}
	if d.Kind != anim.KindSet {
		if !opts.Optimize || d.Additive {
			el.set("additive", sumOrReplace(d.Additive, "replace"))
		}
		if !opts.Optimize || d.Accumulate {
			el.set("accumulate", sumOrReplace(d.Accumulate, "none"))
		}
	}

	if d.Kind == anim.KindMotion {
		switch {
		case d.PathRef != "":
			mpath := element{name: "mpath"}
			mpath.set(opts.hrefName(), "#"+strings.TrimPrefix(d.PathRef, "#"))
			el.children = append(el.children, mpath)
		case d.Path != "":
			el.set("path", d.Path)
		}
		if d.Rotate != "" {
			el.set("rotate", val(d.Rotate))
		}
	}

	b := system.GetBuffer()
	defer system.PutBuffer(b)
	if opts.Comments {
		fmt.Fprintf(b, "<!-- %s -->\n", commentSafe(Describe(d)))
	}
	el.write(b)
	return b.String(), warnings, nil
}

func writeValues(el *element, d *anim.Description, val func(string) string) {
	if len(d.Values) > 0 {
		vals := make([]string, len(d.Values))
		for i, v := range d.Values {
			vals[i] = val(strings.TrimSpace(v))
		}
		el.set("values", strings.Join(vals, ";"))
		if len(d.KeyTimes) > 0 {
			kts := make([]string, len(d.KeyTimes))
			for i, kt := range d.KeyTimes {
				kts[i] = keyNumber(kt)
			}
			el.set("keyTimes", strings.Join(kts, ";"))
		}
		return
	}
	if d.From != "" {
		el.set("from", val(d.From))
	}
	if d.To != "" {
		el.set("to", val(d.To))
	}
	if d.By != "" {
		el.set("by", val(d.By))
	}
}

// keyNumber formats keyTimes and keySplines, which keep four decimals
// regardless of the value precision so they stay in order.
func keyNumber(v float64) string {
	return formatNumber(v, 4)
}

func roundTo(v float64, precision int) float64 {
	if precision < 0 || math.Abs(v) >= maxFractional {
		return v
	}
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

// roundDuration is roundTo for durations, which must stay positive: a value
// that would round to 0 is written unrounded.
func roundDuration(v float64, precision int) float64 {
	if r := roundTo(v, precision); r > 0 || v <= 0 {
		return r
	}
	return v
}

func defaultCalcMode(k anim.Kind) anim.CalcMode {
	if k == anim.KindMotion {
		return anim.CalcPaced
	}
	return anim.CalcLinear
}

func sumOrReplace(sum bool, otherwise string) string {
	if sum {
		return "sum"
	}
	return otherwise
}

// Describe summarises d in one line, used for comments and CLI listings
func Describe(d *anim.Description) string {
	var b strings.Builder
	if d.ID != "" {
		b.WriteString(d.ID + ": ")
	}
	switch d.Kind {
	case anim.KindTransform:
		b.WriteString(string(d.TransformType))
	case anim.KindMotion:
		b.WriteString("motion")
	default:
		b.WriteString(d.AttributeName)
	}
	if d.Target != "" {
		b.WriteString(" on #" + d.Target)
	}
	switch vals := d.KeyframeValues(); {
	case d.Kind == anim.KindSet:
		fmt.Fprintf(&b, ", set to %s", d.To)
	case len(vals) >= 2:
		fmt.Fprintf(&b, ", %s to %s", vals[0], vals[len(vals)-1])
	}
	if d.Dur > 0 {
		fmt.Fprintf(&b, " over %s", anim.FormatSeconds(d.Dur))
	}
	if d.Repeat.Indefinite {
		b.WriteString(", repeating")
	}
	return b.String()
}

func commentSafe(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
