package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/pathdata"
)

// ValidationResult is the structured outcome of Validate
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidationError carries a failed ValidationResult through an error return
type ValidationError struct {
	ID     string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("animation %q is invalid: %s", e.ID, strings.Join(e.Errors, "; "))
}

type validator struct {
	errs []string
}

func (v *validator) add(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}

func (v *validator) finite(name string, x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		v.add("%s must be a finite number", name)
	}
}

// Validate checks a description without compiling it
func Validate(d *anim.Description) ValidationResult {
	v := &validator{}
	if d == nil {
		v.add("Animation is required")
		return v.result()
	}

	switch {
	case d.Kind == "":
		v.add("Animation type is required")
	case !d.Kind.Valid():
		v.add("unknown animation type %q", d.Kind)
	}

	switch d.Kind {
	case anim.KindAnimate:
		if d.AttributeName == "" {
			v.add("attributeName is required for animate")
		}
		v.requireValues(d)
	case anim.KindTransform:
		switch d.TransformType {
		case "":
			v.add("type is required for animateTransform")
		case anim.TransformTranslate, anim.TransformScale, anim.TransformRotate, anim.TransformSkewX, anim.TransformSkewY:
		default:
			v.add("unknown transform type %q", d.TransformType)
		}
		v.requireValues(d)
	case anim.KindMotion:
		if d.Path == "" && d.PathRef == "" && len(d.Values) == 0 {
			v.add("path or pathRef is required for animateMotion")
		}
		if d.Path != "" {
			if _, err := pathdata.Parse(d.Path); err != nil {
				v.add("invalid path: %v", err)
			}
		}
	case anim.KindSet:
		if d.AttributeName == "" {
			v.add("attributeName is required for set")
		}
		if d.To == "" {
			v.add("to is required for set")
		}
	}

	v.timing(d)
	v.keyframes(d)
	return v.result()
}

func (v *validator) result() ValidationResult {
	return ValidationResult{Valid: len(v.errs) == 0, Errors: v.errs}
}

func (v *validator) requireValues(d *anim.Description) {
	if !d.HasFromTo() && len(d.Values) == 0 {
		v.add("from/to or values is required for %s", d.Kind)
	}
}

func (v *validator) timing(d *anim.Description) {
	v.finite("dur", d.Dur)
	if d.Dur < 0 {
		v.add("dur must not be negative")
	} else if d.Dur == 0 && d.Kind.Valid() && d.Kind != anim.KindSet {
		v.add("dur must be greater than 0")
	}
	if d.RepeatDur != nil {
		v.finite("repeatDur", *d.RepeatDur)
		if *d.RepeatDur < 0 {
			v.add("repeatDur must not be negative")
		}
	}
	if !d.Repeat.Indefinite {
		v.finite("repeatCount", d.Repeat.Count)
		if d.Repeat.Count < 0 {
			v.add("repeatCount must not be negative")
		}
	}
	v.finite("begin", d.Begin.Offset)
	v.finite("begin delay", d.Begin.Delay)
	if d.Begin.Ref != "" && d.Begin.Ref == d.ID {
		v.add("begin cannot reference the animation itself")
	}
}

func (v *validator) keyframes(d *anim.Description) {
	if n := len(d.KeyTimes); n > 0 {
		if n != len(d.Values) {
			v.add("keyTimes and values must have the same length (%d != %d)", n, len(d.Values))
		}
		inRange, ordered := true, true
		for i, kt := range d.KeyTimes {
			v.finite(fmt.Sprintf("keyTimes[%d]", i), kt)
			if kt < 0 || kt > 1 {
				inRange = false
			}
			if i > 0 && kt < d.KeyTimes[i-1] {
				ordered = false
			}
		}
		if !inRange {
			v.add("keyTimes must be within [0, 1]")
		}
		if !ordered {
			v.add("keyTimes must be non-decreasing")
		}
		if d.KeyTimes[0] != 0 {
			v.add("keyTimes must start at 0")
		}
		if d.KeyTimes[n-1] != 1 && d.EffectiveCalcMode() != anim.CalcDiscrete {
			v.add("keyTimes must end at 1")
		}
	}

	if d.EffectiveCalcMode() != anim.CalcSpline {
		return
	}
	n := len(d.KeyframeValues())
	if n < 2 {
		v.add("calcMode spline needs at least two values")
		return
	}
	if len(d.KeySplines) != n-1 {
		v.add("keySplines must have %d entries for %d values, got %d", n-1, n, len(d.KeySplines))
	}
	for i, s := range d.KeySplines {
		for _, c := range s {
			if math.IsNaN(c) || c < 0 || c > 1 {
				v.add("keySplines[%d] control points must be within [0, 1]", i)
				break
			}
		}
	}
}
