package gizmos

import (
	"math"
	"strconv"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
)

// cameraProps holds the start and end view of a viewBox animation. The view
// is the rectangle (pan, size); zoom is the start width over the end width.
type cameraProps struct {
	PanStart  geom.Point
	PanEnd    geom.Point
	StartSize geom.Point
	EndSize   geom.Point
	Keys      keyframes

	start cameraAnchor
}

// cameraAnchor is the drag-start copy of the editable fields
type cameraAnchor struct {
	PanStart, PanEnd, EndSize geom.Point
}

func viewOf(f []float64) (pan, size geom.Point) {
	return geom.Point{X: at(f, 0, 0), Y: at(f, 1, 0)}, geom.Point{X: at(f, 2, 0), Y: at(f, 3, 0)}
}

func (p cameraProps) zoom() float64 {
	if p.EndSize.X == 0 {
		return 1
	}
	return p.StartSize.X / p.EndSize.X
}

func (p cameraProps) patch() anim.Patch {
	k := p.Keys.clone()
	if len(k.Frames) == 0 {
		return anim.Patch{}
	}
	k.Frames[0] = []float64{p.PanStart.X, p.PanStart.Y, p.StartSize.X, p.StartSize.Y}
	k.Frames[k.lastIndex()] = []float64{p.PanEnd.X, p.PanEnd.Y, p.EndSize.X, p.EndSize.Y}
	return k.patch()
}

func isViewBox(d *anim.Description, _ *anim.Element) bool {
	return d.Kind == anim.KindAnimate && d.AttributeName == "viewBox"
}

// CameraPan edits a viewBox animation as a camera move: drag either view
// center to pan, drag the end corner to zoom around the end center.
func CameraPan() *gizmo.Definition {
	snapshot := func(ctx *gizmo.Context) {
		gizmo.Update(ctx, func(p *cameraProps) {
			p.start = cameraAnchor{PanStart: p.PanStart, PanEnd: p.PanEnd, EndSize: p.EndSize}
		})
	}
	pan := func(end bool) func(ctx *gizmo.Context) {
		return func(ctx *gizmo.Context) {
			total := geom.ConstrainToAxis(dragTotal(ctx), ctx.Modifiers.Constrain())
			edit(ctx, cameraProps.patch, func(p *cameraProps) {
				if end {
					p.PanEnd = snapPoint(ctx, p.start.PanEnd.Add(total))
					if len(p.Keys.Frames) < 2 {
						p.PanStart = p.PanEnd
					}
				} else {
					p.PanStart = snapPoint(ctx, p.start.PanStart.Add(total))
				}
			})
		}
	}

	return gizmo.Define(gizmo.Spec[cameraProps]{
		ID:        IDCameraPan,
		Name:      "Camera pan",
		Category:  gizmo.CategoryScene,
		Predicate: isViewBox,
		Initial: func(d *anim.Description, _ *anim.Element) cameraProps {
			k := readKeyframes(d)
			p := cameraProps{Keys: k}
			p.PanStart, p.StartSize = viewOf(k.first())
			p.PanEnd, p.EndSize = viewOf(k.last())
			return p
		},
		ToPatch: cameraProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{
			{
				ID:   "pan-start",
				Type: gizmo.HandlePosition,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[cameraProps](ctx.State)
					return p.PanStart.Add(p.StartSize.Scale(0.5))
				}),
				Visible: gizmo.Computed(func(ctx *gizmo.Context) bool {
					p, _ := gizmo.Props[cameraProps](ctx.State)
					return len(p.Keys.Frames) > 1
				}),
				Label:       gizmo.Static("start"),
				OnDragStart: snapshot,
				OnDrag:      pan(false),
			},
			{
				ID:   "pan-end",
				Type: gizmo.HandlePosition,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[cameraProps](ctx.State)
					return p.PanEnd.Add(p.EndSize.Scale(0.5))
				}),
				Label:       gizmo.Static("end"),
				OnDragStart: snapshot,
				OnDrag:      pan(true),
			},
			{
				ID:   "zoom",
				Type: gizmo.HandleScale,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[cameraProps](ctx.State)
					return p.PanEnd.Add(p.EndSize)
				}),
				Label: gizmo.Computed(func(ctx *gizmo.Context) string {
					p, _ := gizmo.Props[cameraProps](ctx.State)
					return strconv.FormatFloat(p.zoom(), 'f', 2, 64) + "x"
				}),
				OnDragStart: snapshot,
				OnDrag: func(ctx *gizmo.Context) {
					if ctx.State == nil || ctx.State.Interaction.DragOrigin == nil {
						return
					}
					from := *ctx.State.Interaction.DragOrigin
					edit(ctx, cameraProps.patch, func(p *cameraProps) {
						c := p.start.PanEnd.Add(p.start.EndSize.Scale(0.5))
						r0 := from.Sub(c).Len()
						if r0 == 0 {
							return
						}
						k := ctx.Pointer.Sub(c).Len() / r0
						size := p.start.EndSize.Scale(k)
						if size.X < 1 || size.Y < 1 {
							return
						}
						p.EndSize = size
						p.PanEnd = c.Sub(size.Scale(0.5))
					})
				},
			},
		}),
		Render: func(ctx *gizmo.Context, p cameraProps) []gizmo.Primitive {
			rect := func(pan, size geom.Point) gizmo.Primitive {
				return gizmo.Primitive{Kind: "polyline", Points: []geom.Point{
					pan, {X: pan.X + size.X, Y: pan.Y}, pan.Add(size), {X: pan.X, Y: pan.Y + size.Y}, pan,
				}}
			}
			out := []gizmo.Primitive{rect(p.PanEnd, p.EndSize)}
			if len(p.Keys.Frames) > 1 {
				out = append(out,
					rect(p.PanStart, p.StartSize),
					gizmo.Primitive{Kind: "line", Points: []geom.Point{
						p.PanStart.Add(p.StartSize.Scale(0.5)), p.PanEnd.Add(p.EndSize.Scale(0.5)),
					}},
				)
			}
			if z := p.zoom(); math.Abs(z-1) > 1e-9 {
				out = append(out, gizmo.Primitive{Kind: "label", Points: []geom.Point{p.PanEnd}, Text: strconv.FormatFloat(z, 'f', 2, 64) + "x"})
			}
			return out
		},
	})
}
