// Package gizmos holds the built-in gizmo definitions and the helpers they
// share for reading and writing keyframe values.
package gizmos

import (
	"fmt"
	"math"
	"slices"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
)

// Built-in gizmo ids
const (
	IDTranslate  = "translate"
	IDRotate     = "rotate"
	IDScale      = "scale"
	IDSkew       = "skew"
	IDMotionPath = "motion-path"
	IDOpacity    = "opacity"
	IDColorStop  = "color-stop"
	IDCameraPan  = "camera-pan"
	IDTiming     = "timing"
)

// Builtins returns fresh built-in definitions in registration order.
// Timing matches any animation, so it comes last.
func Builtins() []*gizmo.Definition {
	return []*gizmo.Definition{
		Translate(),
		Rotate(),
		Scale(),
		Skew(),
		MotionPath(),
		Opacity(),
		ColorStop(),
		CameraPan(),
		Timing(),
	}
}

// RegisterBuiltins adds every built-in definition to reg
func RegisterBuiltins(reg *gizmo.Registry) error {
	for _, def := range Builtins() {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("register built-in gizmo %s: %w", def.ID, err)
		}
	}
	return nil
}

// edit mutates the typed props and pushes the patch derived from them as the
// pending description change
func edit[P any](ctx *gizmo.Context, toPatch func(P) anim.Patch, fn func(p *P)) {
	gizmo.Update(ctx, fn)
	if ctx == nil || ctx.UpdateDescription == nil {
		return
	}
	if p, ok := gizmo.Props[P](ctx.State); ok {
		ctx.UpdateDescription(toPatch(p))
	}
}

// dragTotal is the pointer displacement since the drag started. Without an
// anchor it falls back to the last incremental delta.
func dragTotal(ctx *gizmo.Context) geom.Point {
	if ctx.State != nil && ctx.State.Interaction.DragOrigin != nil {
		return ctx.Pointer.Sub(*ctx.State.Interaction.DragOrigin)
	}
	return ctx.Delta
}

// snapPoint applies the grid when the context says it is active
func snapPoint(ctx *gizmo.Context, p geom.Point) geom.Point {
	return geom.SnapToGrid(p, ctx.Snap.GridSize, ctx.GridActive())
}

func roundStep(v, step float64) float64 {
	return math.Round(v/step) * step
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func nonZero(v, def float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return def
	}
	return v
}

// keyframes is the numeric form of a description's keyframe values. Listed
// records whether they came from a values list or from from/to.
type keyframes struct {
	Frames [][]float64
	Listed bool
}

func readKeyframes(d *anim.Description) keyframes {
	k := keyframes{Listed: len(d.Values) > 0}
	for _, v := range d.KeyframeValues() {
		nums, _ := anim.ParseNumbers(v)
		k.Frames = append(k.Frames, nums)
	}
	return k
}

func (k keyframes) clone() keyframes {
	out := keyframes{Listed: k.Listed, Frames: make([][]float64, len(k.Frames))}
	for i, f := range k.Frames {
		out.Frames[i] = slices.Clone(f)
	}
	return out
}

// anchored makes sure start holds the drag-start snapshot, taking one when
// no drag start was seen. It reports false when there is nothing to edit.
func (k keyframes) anchored(start *keyframes) bool {
	if len(k.Frames) == 0 {
		return false
	}
	if len(start.Frames) != len(k.Frames) {
		*start = k.clone()
	}
	return true
}

func (k keyframes) first() []float64 {
	if len(k.Frames) == 0 {
		return nil
	}
	return k.Frames[0]
}

func (k keyframes) last() []float64 {
	if len(k.Frames) == 0 {
		return nil
	}
	return k.Frames[len(k.Frames)-1]
}

func (k keyframes) lastIndex() int {
	return len(k.Frames) - 1
}

// patch writes the frames back in the form they were read
func (k keyframes) patch() anim.Patch {
	vals := make([]string, len(k.Frames))
	for i, f := range k.Frames {
		vals[i] = anim.FormatNumbers(f...)
	}
	if k.Listed {
		return anim.Patch{Values: &vals}
	}
	var p anim.Patch
	switch len(vals) {
	case 0:
	case 1:
		p.To = &vals[0]
	default:
		p.From = &vals[0]
		p.To = &vals[len(vals)-1]
	}
	return p
}

// at returns f[i] or def when f is too short
func at(f []float64, i int, def float64) float64 {
	if i < len(f) {
		return f[i]
	}
	return def
}

func pointOf(f []float64) geom.Point {
	return geom.Point{X: at(f, 0, 0), Y: at(f, 1, 0)}
}

func polar(center geom.Point, radius, deg float64) geom.Point {
	rad := deg * math.Pi / 180
	return geom.Point{X: center.X + radius*math.Cos(rad), Y: center.Y + radius*math.Sin(rad)}
}

func angleOf(v geom.Point) float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// normalizeAngle maps a degree difference into (-180, 180]
func normalizeAngle(d float64) float64 {
	d = math.Mod(d, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}
