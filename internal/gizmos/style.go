package gizmos

import (
	"fmt"
	"slices"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
)

// opacity

type opacityProps struct {
	Keys  keyframes
	start keyframes
}

func (p opacityProps) patch() anim.Patch { return p.Keys.patch() }

// Opacity edits the first and last opacity values on bars beside the
// element. Shift rounds to tenths.
func Opacity() *gizmo.Definition {
	bar := func(id string, left bool, index func(keyframes) int) *gizmo.Handle {
		x := func(ctx *gizmo.Context) float64 {
			off := ctx.Viewport.ScreenLength(handleOffset)
			if left {
				return ctx.Bounds.X - off
			}
			return ctx.Bounds.X + ctx.Bounds.Width + off
		}
		h := &gizmo.Handle{
			ID:   id,
			Type: gizmo.HandleValue,
			Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
				p, _ := gizmo.Props[opacityProps](ctx.State)
				v := 1.0
				if i := index(p.Keys); i >= 0 {
					v = at(p.Keys.Frames[i], 0, 1)
				}
				return geom.Point{X: x(ctx), Y: ctx.Bounds.Y + ctx.Bounds.Height*(1-v)}
			}),
			Label: gizmo.Computed(func(ctx *gizmo.Context) string {
				p, _ := gizmo.Props[opacityProps](ctx.State)
				if i := index(p.Keys); i >= 0 {
					return fmt.Sprintf("%.0f%%", at(p.Keys.Frames[i], 0, 1)*100)
				}
				return ""
			}),
			OnDragStart: func(ctx *gizmo.Context) {
				gizmo.Update(ctx, func(p *opacityProps) { p.start = p.Keys.clone() })
			},
			OnDrag: func(ctx *gizmo.Context) {
				dy := dragTotal(ctx).Y
				edit(ctx, opacityProps.patch, func(p *opacityProps) {
					if !p.Keys.anchored(&p.start) {
						return
					}
					i := index(p.Keys)
					v := at(p.start.Frames[i], 0, 1) - dy/nonZero(ctx.Bounds.Height, 1)
					if ctx.Modifiers.Constrain() {
						v = roundStep(v, 0.1)
					}
					p.Keys.Frames[i] = []float64{clamp(v, 0, 1)}
				})
			},
		}
		if left {
			h.Visible = gizmo.Computed(func(ctx *gizmo.Context) bool {
				p, _ := gizmo.Props[opacityProps](ctx.State)
				return len(p.Keys.Frames) > 1
			})
		}
		return h
	}

	return gizmo.Define(gizmo.Spec[opacityProps]{
		ID:            IDOpacity,
		Name:          "Opacity",
		Category:      gizmo.CategoryStyle,
		AnimationKind: anim.AnimOpacity,
		Kinds:         []anim.AnimationKind{anim.AnimOpacity},
		Initial: func(d *anim.Description, _ *anim.Element) opacityProps {
			return opacityProps{Keys: readKeyframes(d)}
		},
		ToPatch: opacityProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{
			bar("start", true, func(k keyframes) int {
				if len(k.Frames) == 0 {
					return -1
				}
				return 0
			}),
			bar("end", false, keyframes.lastIndex),
		}),
		Render: func(ctx *gizmo.Context, p opacityProps) []gizmo.Primitive {
			off := ctx.Viewport.ScreenLength(handleOffset)
			b := ctx.Bounds
			return []gizmo.Primitive{
				{Kind: "line", Points: []geom.Point{{X: b.X - off, Y: b.Y}, {X: b.X - off, Y: b.Y + b.Height}}},
				{Kind: "line", Points: []geom.Point{{X: b.X + b.Width + off, Y: b.Y}, {X: b.X + b.Width + off, Y: b.Y + b.Height}}},
			}
		},
	})
}

// color stops

type colorProps struct {
	Colors []string
	Times  []float64
	Listed bool
	start  []float64
}

func (p colorProps) patch() anim.Patch {
	if !p.Listed {
		return anim.Patch{}
	}
	colors, times := slices.Clone(p.Colors), slices.Clone(p.Times)
	return anim.Patch{Values: &colors, KeyTimes: &times}
}

func evenTimes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if n > 1 {
			out[i] = float64(i) / float64(n-1)
		}
	}
	return out
}

func stopHandles(ctx *gizmo.Context) []*gizmo.Handle {
	p, _ := gizmo.Props[colorProps](ctx.State)
	handles := make([]*gizmo.Handle, len(p.Colors))
	for i, c := range p.Colors {
		h := &gizmo.Handle{
			ID:   fmt.Sprintf("stop-%d", i),
			Type: gizmo.HandleTiming,
			Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
				p, _ := gizmo.Props[colorProps](ctx.State)
				t := 0.0
				if i < len(p.Times) {
					t = p.Times[i]
				}
				return geom.Point{
					X: ctx.Bounds.X + ctx.Bounds.Width*t,
					Y: ctx.Bounds.Y + ctx.Bounds.Height + ctx.Viewport.ScreenLength(handleOffset),
				}
			}),
			Label: gizmo.Static(c),
		}
		// the end stops are pinned to 0 and 1
		if i > 0 && i < len(p.Colors)-1 {
			h.OnDragStart = func(ctx *gizmo.Context) {
				gizmo.Update(ctx, func(p *colorProps) { p.start = slices.Clone(p.Times) })
			}
			h.OnDrag = func(ctx *gizmo.Context) {
				dx := dragTotal(ctx).X
				edit(ctx, colorProps.patch, func(p *colorProps) {
					if len(p.start) != len(p.Times) {
						p.start = slices.Clone(p.Times)
					}
					t := p.start[i] + dx/nonZero(ctx.Bounds.Width, 1)
					if ctx.Modifiers.Constrain() {
						t = roundStep(t, 0.05)
					}
					p.Times[i] = clamp(t, p.Times[i-1], p.Times[i+1])
				})
			}
		}
		handles[i] = h
	}
	return handles
}

// ColorStop retimes the interior stops of a color animation along a bar
// under the element
func ColorStop() *gizmo.Definition {
	return gizmo.Define(gizmo.Spec[colorProps]{
		ID:            IDColorStop,
		Name:          "Color stops",
		Category:      gizmo.CategoryGradient,
		AnimationKind: anim.AnimColor,
		Predicate: func(d *anim.Description, _ *anim.Element) bool {
			switch anim.ClassifyKind(d) {
			case anim.AnimColor:
				return true
			case anim.AnimSet:
				return anim.IsColorAttribute(d.AttributeName)
			}
			return false
		},
		Initial: func(d *anim.Description, _ *anim.Element) colorProps {
			colors := slices.Clone(d.KeyframeValues())
			times := slices.Clone(d.KeyTimes)
			if len(times) != len(colors) {
				times = evenTimes(len(colors))
			}
			return colorProps{Colors: colors, Times: times, Listed: len(d.Values) > 0}
		},
		ToPatch: colorProps.patch,
		Handles: gizmo.Computed(stopHandles),
		Render: func(ctx *gizmo.Context, p colorProps) []gizmo.Primitive {
			y := ctx.Bounds.Y + ctx.Bounds.Height + ctx.Viewport.ScreenLength(handleOffset)
			return []gizmo.Primitive{{
				Kind:   "line",
				Points: []geom.Point{{X: ctx.Bounds.X, Y: y}, {X: ctx.Bounds.X + ctx.Bounds.Width, Y: y}},
			}}
		},
	})
}
