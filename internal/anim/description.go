package anim

import (
	"math"
	"slices"
)

// Kind is the declarative animation element a description compiles to
type Kind string

const (
	KindAnimate   Kind = "animate"
	KindTransform Kind = "animateTransform"
	KindMotion    Kind = "animateMotion"
	KindSet       Kind = "set"
)

// Valid reports whether k is one of the four known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindAnimate, KindTransform, KindMotion, KindSet:
		return true
	}
	return false
}

type TransformType string

const (
	TransformTranslate TransformType = "translate"
	TransformScale     TransformType = "scale"
	TransformRotate    TransformType = "rotate"
	TransformSkewX     TransformType = "skewX"
	TransformSkewY     TransformType = "skewY"
)

type CalcMode string

const (
	CalcLinear   CalcMode = "linear"
	CalcDiscrete CalcMode = "discrete"
	CalcPaced    CalcMode = "paced"
	CalcSpline   CalcMode = "spline"
)

// Fill decides whether the final value persists after the active interval
type Fill string

const (
	FillFreeze Fill = "freeze"
	FillRemove Fill = "remove"
)

// Spline is one cubic-bezier timing segment: x1 y1 x2 y2
type Spline [4]float64

// Description is the structured form of one SMIL animation element
type Description struct {
	ID     string  `yaml:"id"`
	Kind   Kind    `yaml:"kind"`
	Target string  `yaml:"target"`
	Dur    float64 `yaml:"dur"` // seconds

	Repeat    Repeat   `yaml:"repeatCount,omitempty"`
	RepeatDur *float64 `yaml:"repeatDur,omitempty"`
	Fill      Fill     `yaml:"fill,omitempty"`
	CalcMode  CalcMode `yaml:"calcMode,omitempty"`
	Begin     Begin    `yaml:"begin,omitempty"`

	Additive   bool `yaml:"additive,omitempty"`
	Accumulate bool `yaml:"accumulate,omitempty"`

	AttributeName string        `yaml:"attributeName,omitempty"`
	TransformType TransformType `yaml:"type,omitempty"`

	From       string    `yaml:"from,omitempty"`
	To         string    `yaml:"to,omitempty"`
	By         string    `yaml:"by,omitempty"`
	Values     []string  `yaml:"values,omitempty"`
	KeyTimes   []float64 `yaml:"keyTimes,omitempty"`
	KeySplines []Spline  `yaml:"keySplines,omitempty"`

	// animateMotion
	Path    string `yaml:"path,omitempty"`
	PathRef string `yaml:"pathRef,omitempty"`
	Rotate  string `yaml:"rotate,omitempty"` // "", auto, auto-reverse or a fixed angle
}

// EffectiveCalcMode applies the per-kind default: paced for motion, linear otherwise
func (d *Description) EffectiveCalcMode() CalcMode {
	if d.CalcMode != "" {
		return d.CalcMode
	}
	if d.Kind == KindMotion {
		return CalcPaced
	}
	return CalcLinear
}

func (d *Description) EffectiveFill() Fill {
	if d.Fill == "" {
		return FillRemove
	}
	return d.Fill
}

// Cycles is the number of simple durations played; +Inf when indefinite
func (d *Description) Cycles() float64 {
	if d.Repeat.Indefinite {
		return math.Inf(1)
	}
	if d.Repeat.Count <= 0 {
		return 1
	}
	return d.Repeat.Count
}

// TotalDuration is the active duration: repeatDur when set, otherwise dur
// times the repeat count. Indefinite repetition yields +Inf.
func (d *Description) TotalDuration() float64 {
	if d.RepeatDur != nil {
		return *d.RepeatDur
	}
	if d.Repeat.Indefinite {
		return math.Inf(1)
	}
	return d.Dur * d.Cycles()
}

// HasFromTo reports whether the description carries a usable from/to pair
func (d *Description) HasFromTo() bool {
	return d.From != "" && d.To != ""
}

// KeyframeValues returns the value list the animation interpolates over:
// Values when present, otherwise from/to (or to alone, or from + by).
func (d *Description) KeyframeValues() []string {
	switch {
	case len(d.Values) > 0:
		return d.Values
	case d.HasFromTo():
		return []string{d.From, d.To}
	case d.To != "":
		return []string{d.To}
	}
	return nil
}

// Clone returns a deep copy
func (d Description) Clone() Description {
	out := d
	if d.RepeatDur != nil {
		v := *d.RepeatDur
		out.RepeatDur = &v
	}
	out.Values = slices.Clone(d.Values)
	out.KeyTimes = slices.Clone(d.KeyTimes)
	out.KeySplines = slices.Clone(d.KeySplines)
	return out
}

// Ptr returns a pointer to v, for building patches
func Ptr[T any](v T) *T {
	return &v
}
