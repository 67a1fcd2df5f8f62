package gizmos

import (
	"math"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
)

// pixelsPerSecond is the on-screen scale of the timing track
const pixelsPerSecond = 100.0

type timingProps struct {
	Begin   float64
	Dur     float64
	Chained bool // begin follows another animation and is not draggable
	MinDur  float64

	startBegin, startDur float64
}

func (p timingProps) patch() anim.Patch {
	out := anim.Patch{Dur: anim.Ptr(p.Dur)}
	if !p.Chained {
		out.Begin = anim.Ptr(anim.At(p.Begin))
	}
	return out
}

func trackY(ctx *gizmo.Context) float64 {
	return ctx.Bounds.Y + ctx.Bounds.Height + ctx.Viewport.ScreenLength(2*handleOffset)
}

func trackX(ctx *gizmo.Context, seconds float64) float64 {
	return ctx.Bounds.X + seconds*ctx.Viewport.ScreenLength(pixelsPerSecond)
}

func secondsLabel(v float64) string {
	return anim.FormatSeconds(math.Round(v*100) / 100)
}

// Timing drags the begin offset and duration of any animation on a track
// under the element. Shift rounds to tenths of a second.
func Timing() *gizmo.Definition {
	snapshot := func(ctx *gizmo.Context) {
		gizmo.Update(ctx, func(p *timingProps) {
			p.startBegin, p.startDur = p.Begin, p.Dur
		})
	}
	seconds := func(ctx *gizmo.Context) float64 {
		return dragTotal(ctx).X / ctx.Viewport.ScreenLength(pixelsPerSecond)
	}
	round := func(ctx *gizmo.Context, v float64) float64 {
		if ctx.Modifiers.Constrain() {
			return roundStep(v, 0.1)
		}
		return v
	}

	return gizmo.Define(gizmo.Spec[timingProps]{
		ID:       IDTiming,
		Name:     "Timing",
		Category: gizmo.CategoryInteractive,
		Predicate: func(d *anim.Description, _ *anim.Element) bool {
			return d.Kind.Valid()
		},
		Initial: func(d *anim.Description, _ *anim.Element) timingProps {
			p := timingProps{Begin: d.Begin.Offset, Dur: d.Dur, Chained: d.Begin.IsChained(), MinDur: 0.05}
			if d.Kind == anim.KindSet {
				p.MinDur = 0
			}
			return p
		},
		ToPatch: timingProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{
			{
				ID:   "begin",
				Type: gizmo.HandleTiming,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[timingProps](ctx.State)
					return geom.Point{X: trackX(ctx, p.Begin), Y: trackY(ctx)}
				}),
				Label: gizmo.Computed(func(ctx *gizmo.Context) string {
					p, _ := gizmo.Props[timingProps](ctx.State)
					return secondsLabel(p.Begin)
				}),
				Visible: gizmo.Computed(func(ctx *gizmo.Context) bool {
					p, _ := gizmo.Props[timingProps](ctx.State)
					return !p.Chained
				}),
				OnDragStart: snapshot,
				OnDrag: func(ctx *gizmo.Context) {
					dt := seconds(ctx)
					edit(ctx, timingProps.patch, func(p *timingProps) {
						if p.Chained {
							return
						}
						p.Begin = math.Max(0, round(ctx, p.startBegin+dt))
					})
				},
			},
			{
				ID:   "dur",
				Type: gizmo.HandleTiming,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[timingProps](ctx.State)
					return geom.Point{X: trackX(ctx, p.Begin+p.Dur), Y: trackY(ctx)}
				}),
				Label: gizmo.Computed(func(ctx *gizmo.Context) string {
					p, _ := gizmo.Props[timingProps](ctx.State)
					return secondsLabel(p.Dur)
				}),
				OnDragStart: snapshot,
				OnDrag: func(ctx *gizmo.Context) {
					dt := seconds(ctx)
					edit(ctx, timingProps.patch, func(p *timingProps) {
						p.Dur = math.Max(p.MinDur, round(ctx, p.startDur+dt))
					})
				},
			},
		}),
		Render: func(ctx *gizmo.Context, p timingProps) []gizmo.Primitive {
			y := trackY(ctx)
			out := []gizmo.Primitive{{
				Kind:   "line",
				Points: []geom.Point{{X: trackX(ctx, p.Begin), Y: y}, {X: trackX(ctx, p.Begin+p.Dur), Y: y}},
			}}
			if t := ctx.Time.Time; t > 0 {
				tick := ctx.Viewport.ScreenLength(6)
				out = append(out, gizmo.Primitive{
					Kind:   "line",
					Points: []geom.Point{{X: trackX(ctx, t), Y: y - tick}, {X: trackX(ctx, t), Y: y + tick}},
				})
			}
			return out
		},
	})
}
