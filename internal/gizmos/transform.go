package gizmos

import (
	"math"
	"strconv"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
)

// handleOffset is the on-screen distance between an element and its handles
const handleOffset = 24.0

// translate

type translateProps struct {
	Keys  keyframes
	start keyframes
}

func (p translateProps) patch() anim.Patch { return p.Keys.patch() }

// Translate edits the from and to offsets of a translate transform. Alt drags
// the whole motion, Shift locks the dominant axis.
func Translate() *gizmo.Definition {
	moveFrame := func(idx func(p translateProps) int) func(ctx *gizmo.Context) {
		return func(ctx *gizmo.Context) {
			total := geom.ConstrainToAxis(dragTotal(ctx), ctx.Modifiers.Constrain())
			edit(ctx, translateProps.patch, func(p *translateProps) {
				if !p.Keys.anchored(&p.start) {
					return
				}
				target := idx(*p)
				for i := range p.Keys.Frames {
					if i != target && !ctx.Modifiers.FromCenter() {
						continue
					}
					pt := snapPoint(ctx, pointOf(p.start.Frames[i]).Add(total))
					p.Keys.Frames[i] = []float64{pt.X, pt.Y}
				}
			})
		}
	}
	snapshot := func(ctx *gizmo.Context) {
		gizmo.Update(ctx, func(p *translateProps) { p.start = p.Keys.clone() })
	}
	first := func(translateProps) int { return 0 }
	last := func(p translateProps) int { return p.Keys.lastIndex() }

	return gizmo.Define(gizmo.Spec[translateProps]{
		ID:            IDTranslate,
		Name:          "Translate",
		Category:      gizmo.CategoryTransform,
		AnimationKind: anim.AnimTranslate,
		Kinds:         []anim.AnimationKind{anim.AnimTranslate},
		Initial: func(d *anim.Description, _ *anim.Element) translateProps {
			return translateProps{Keys: readKeyframes(d)}
		},
		ToPatch: translateProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{
			{
				ID:   "from",
				Type: gizmo.HandlePosition,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[translateProps](ctx.State)
					return ctx.Center.Add(pointOf(p.Keys.first()))
				}),
				Label: gizmo.Static("from"),
				Visible: gizmo.Computed(func(ctx *gizmo.Context) bool {
					p, _ := gizmo.Props[translateProps](ctx.State)
					return len(p.Keys.Frames) > 1
				}),
				OnDragStart: snapshot,
				OnDrag:      moveFrame(first),
			},
			{
				ID:   "to",
				Type: gizmo.HandlePosition,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[translateProps](ctx.State)
					return ctx.Center.Add(pointOf(p.Keys.last()))
				}),
				Label:       gizmo.Static("to"),
				OnDragStart: snapshot,
				OnDrag:      moveFrame(last),
			},
		}),
		Render: func(ctx *gizmo.Context, p translateProps) []gizmo.Primitive {
			pts := make([]geom.Point, len(p.Keys.Frames))
			for i, f := range p.Keys.Frames {
				pts[i] = ctx.Center.Add(pointOf(f))
			}
			return []gizmo.Primitive{{Kind: "polyline", Points: pts}}
		},
	})
}

// rotate

type rotateProps struct {
	Keys  keyframes // angle [cx cy]
	start keyframes
	sweep float64 // accumulated pointer rotation, keeps full turns
}

func (p rotateProps) patch() anim.Patch { return p.Keys.patch() }

func (p rotateProps) pivot(ctx *gizmo.Context) geom.Point {
	if f := p.Keys.last(); len(f) >= 3 {
		return geom.Point{X: f[1], Y: f[2]}
	}
	return ctx.Center
}

func rotateRadius(ctx *gizmo.Context) float64 {
	return math.Max(ctx.Bounds.Width, ctx.Bounds.Height)/2 + ctx.Viewport.ScreenLength(handleOffset)
}

// Rotate edits the end angle of a rotate transform and its pivot. Shift snaps
// to the rotation step, Alt pins the pivot to the element center.
func Rotate() *gizmo.Definition {
	snapshot := func(ctx *gizmo.Context) {
		gizmo.Update(ctx, func(p *rotateProps) {
			p.start = p.Keys.clone()
			p.sweep = 0
		})
	}

	return gizmo.Define(gizmo.Spec[rotateProps]{
		ID:            IDRotate,
		Name:          "Rotate",
		Category:      gizmo.CategoryTransform,
		AnimationKind: anim.AnimRotate,
		Kinds:         []anim.AnimationKind{anim.AnimRotate},
		Initial: func(d *anim.Description, _ *anim.Element) rotateProps {
			return rotateProps{Keys: readKeyframes(d)}
		},
		ToPatch: rotateProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{
			{
				ID:   "angle",
				Type: gizmo.HandleRotation,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[rotateProps](ctx.State)
					return polar(p.pivot(ctx), rotateRadius(ctx), at(p.Keys.last(), 0, 0))
				}),
				Label: gizmo.Computed(func(ctx *gizmo.Context) string {
					p, _ := gizmo.Props[rotateProps](ctx.State)
					return strconv.FormatFloat(at(p.Keys.last(), 0, 0), 'f', 1, 64) + "°"
				}),
				OnDragStart: snapshot,
				OnDrag: func(ctx *gizmo.Context) {
					edit(ctx, rotateProps.patch, func(p *rotateProps) {
						if !p.Keys.anchored(&p.start) {
							return
						}
						pivot := p.pivot(ctx)
						prev := ctx.Pointer.Sub(ctx.Delta)
						p.sweep += normalizeAngle(angleOf(ctx.Pointer.Sub(pivot)) - angleOf(prev.Sub(pivot)))

						angle := at(p.start.last(), 0, 0) + p.sweep
						angle = geom.ConstrainRotation(angle, ctx.Modifiers.Constrain(), ctx.Snap.RotationStep)

						end := append([]float64{angle}, p.Keys.last()[min(1, len(p.Keys.last())):]...)
						if ctx.Modifiers.FromCenter() {
							end = []float64{angle, ctx.Center.X, ctx.Center.Y}
							for i := 0; i < p.Keys.lastIndex(); i++ {
								p.Keys.Frames[i] = []float64{at(p.Keys.Frames[i], 0, 0), ctx.Center.X, ctx.Center.Y}
							}
						}
						p.Keys.Frames[p.Keys.lastIndex()] = end
					})
				},
			},
			{
				ID:   "pivot",
				Type: gizmo.HandleOrigin,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[rotateProps](ctx.State)
					return p.pivot(ctx)
				}),
				Visible: gizmo.Computed(func(ctx *gizmo.Context) bool {
					p, _ := gizmo.Props[rotateProps](ctx.State)
					return len(p.Keys.last()) >= 3
				}),
				OnDragStart: snapshot,
				OnDrag: func(ctx *gizmo.Context) {
					total := geom.ConstrainToAxis(dragTotal(ctx), ctx.Modifiers.Constrain())
					edit(ctx, rotateProps.patch, func(p *rotateProps) {
						if !p.Keys.anchored(&p.start) {
							return
						}
						for i, f := range p.start.Frames {
							c := snapPoint(ctx, geom.Point{X: at(f, 1, ctx.Center.X), Y: at(f, 2, ctx.Center.Y)}.Add(total))
							p.Keys.Frames[i] = []float64{at(f, 0, 0), c.X, c.Y}
						}
					})
				},
			},
		}),
		Render: func(ctx *gizmo.Context, p rotateProps) []gizmo.Primitive {
			pivot := p.pivot(ctx)
			r := rotateRadius(ctx)
			return []gizmo.Primitive{
				{Kind: "circle", Points: []geom.Point{pivot}, Radius: r},
				{Kind: "line", Points: []geom.Point{pivot, polar(pivot, r, at(p.Keys.first(), 0, 0))}},
				{Kind: "line", Points: []geom.Point{pivot, polar(pivot, r, at(p.Keys.last(), 0, 0))}},
			}
		},
	})
}

// scale

type scaleProps struct {
	Keys  keyframes // sx [sy]
	start keyframes
}

func (p scaleProps) patch() anim.Patch { return p.Keys.patch() }

func scaleOf(f []float64) (float64, float64) {
	sx := at(f, 0, 1)
	return sx, at(f, 1, sx)
}

// scaleAnchor is the fixed point of the scale handle: the top-left corner,
// or the center while Alt is held
func scaleAnchor(ctx *gizmo.Context) geom.Point {
	if ctx.Modifiers.FromCenter() {
		return ctx.Center
	}
	return geom.Point{X: ctx.Bounds.X, Y: ctx.Bounds.Y}
}

// Scale edits the end scale factors. Shift keeps them uniform, the grid
// rounds them to tenths.
func Scale() *gizmo.Definition {
	return gizmo.Define(gizmo.Spec[scaleProps]{
		ID:            IDScale,
		Name:          "Scale",
		Category:      gizmo.CategoryTransform,
		AnimationKind: anim.AnimScale,
		Kinds:         []anim.AnimationKind{anim.AnimScale},
		Initial: func(d *anim.Description, _ *anim.Element) scaleProps {
			return scaleProps{Keys: readKeyframes(d)}
		},
		ToPatch: scaleProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{{
			ID:   "corner",
			Type: gizmo.HandleScale,
			Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
				p, _ := gizmo.Props[scaleProps](ctx.State)
				sx, sy := scaleOf(p.Keys.last())
				corner := geom.Point{X: ctx.Bounds.X + ctx.Bounds.Width, Y: ctx.Bounds.Y + ctx.Bounds.Height}
				a := scaleAnchor(ctx)
				v := corner.Sub(a)
				return a.Add(geom.Point{X: v.X * sx, Y: v.Y * sy})
			}),
			OnDragStart: func(ctx *gizmo.Context) {
				gizmo.Update(ctx, func(p *scaleProps) { p.start = p.Keys.clone() })
			},
			OnDrag: func(ctx *gizmo.Context) {
				if ctx.State == nil || ctx.State.Interaction.DragOrigin == nil {
					return
				}
				a := scaleAnchor(ctx)
				v0 := ctx.State.Interaction.DragOrigin.Sub(a)
				v := ctx.Pointer.Sub(a)
				edit(ctx, scaleProps.patch, func(p *scaleProps) {
					if !p.Keys.anchored(&p.start) {
						return
					}
					sx, sy := scaleOf(p.start.last())
					if math.Abs(v0.X) > 1e-9 {
						sx *= v.X / v0.X
					}
					if math.Abs(v0.Y) > 1e-9 {
						sy *= v.Y / v0.Y
					}
					sx, sy = geom.LockUniformScale(sx, sy, ctx.Modifiers.Constrain())
					if ctx.GridActive() {
						sx, sy = roundStep(sx, 0.1), roundStep(sy, 0.1)
					}
					p.Keys.Frames[p.Keys.lastIndex()] = []float64{sx, sy}
				})
			},
		}}),
		Render: func(ctx *gizmo.Context, p scaleProps) []gizmo.Primitive {
			sx, sy := scaleOf(p.Keys.last())
			a := scaleAnchor(ctx)
			b := ctx.Bounds
			corners := []geom.Point{{X: b.X, Y: b.Y}, {X: b.X + b.Width, Y: b.Y}, {X: b.X + b.Width, Y: b.Y + b.Height}, {X: b.X, Y: b.Y + b.Height}, {X: b.X, Y: b.Y}}
			for i, c := range corners {
				v := c.Sub(a)
				corners[i] = a.Add(geom.Point{X: v.X * sx, Y: v.Y * sy})
			}
			return []gizmo.Primitive{{Kind: "polyline", Points: corners}}
		},
	})
}

// skew

type skewProps struct {
	Keys  keyframes
	Axis  anim.TransformType
	start keyframes
}

func (p skewProps) patch() anim.Patch { return p.Keys.patch() }

const maxSkew = 89.0

// Skew edits the end angle of skewX and skewY transforms
func Skew() *gizmo.Definition {
	shear := func(axis anim.TransformType) *gizmo.Handle {
		id, cursor := "shear-x", "ew-resize"
		if axis == anim.TransformSkewY {
			id, cursor = "shear-y", "ns-resize"
		}
		half := func(ctx *gizmo.Context) float64 {
			if axis == anim.TransformSkewX {
				return nonZero(ctx.Bounds.Height/2, 1)
			}
			return nonZero(ctx.Bounds.Width/2, 1)
		}
		return &gizmo.Handle{
			ID:     id,
			Type:   gizmo.HandleValue,
			Cursor: cursor,
			Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
				p, _ := gizmo.Props[skewProps](ctx.State)
				off := math.Tan(at(p.Keys.last(), 0, 0)*math.Pi/180) * half(ctx)
				if axis == anim.TransformSkewX {
					return geom.Point{X: ctx.Center.X + off, Y: ctx.Bounds.Y}
				}
				return geom.Point{X: ctx.Bounds.X + ctx.Bounds.Width, Y: ctx.Center.Y + off}
			}),
			Visible: gizmo.Computed(func(ctx *gizmo.Context) bool {
				p, _ := gizmo.Props[skewProps](ctx.State)
				return p.Axis == axis
			}),
			OnDragStart: func(ctx *gizmo.Context) {
				gizmo.Update(ctx, func(p *skewProps) { p.start = p.Keys.clone() })
			},
			OnDrag: func(ctx *gizmo.Context) {
				total := dragTotal(ctx)
				d := total.X
				if axis == anim.TransformSkewY {
					d = total.Y
				}
				edit(ctx, skewProps.patch, func(p *skewProps) {
					if !p.Keys.anchored(&p.start) {
						return
					}
					h := half(ctx)
					base := math.Tan(at(p.start.last(), 0, 0)*math.Pi/180) * h
					angle := math.Atan((base+d)/h) * 180 / math.Pi
					angle = geom.ConstrainRotation(angle, ctx.Modifiers.Constrain(), ctx.Snap.RotationStep)
					p.Keys.Frames[p.Keys.lastIndex()] = []float64{clamp(angle, -maxSkew, maxSkew)}
				})
			},
		}
	}

	return gizmo.Define(gizmo.Spec[skewProps]{
		ID:            IDSkew,
		Name:          "Skew",
		Category:      gizmo.CategoryTransform,
		AnimationKind: anim.AnimSkewX,
		Predicate: func(d *anim.Description, _ *anim.Element) bool {
			k := anim.ClassifyKind(d)
			return k == anim.AnimSkewX || k == anim.AnimSkewY
		},
		Initial: func(d *anim.Description, _ *anim.Element) skewProps {
			return skewProps{Keys: readKeyframes(d), Axis: d.TransformType}
		},
		ToPatch: skewProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{shear(anim.TransformSkewX), shear(anim.TransformSkewY)}),
	})
}
