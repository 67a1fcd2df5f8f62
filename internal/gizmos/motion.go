package gizmos

import (
	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
	"github.com/ivlev/svganim/internal/pathdata"
)

type motionProps struct {
	Path   string
	Offset geom.Point
	Rotate string

	origin geom.Point // first point of the untranslated path
	end    geom.Point
	start  geom.Point // Offset at drag start
}

func (p motionProps) translated() string {
	if p.Offset == (geom.Point{}) || p.Path == "" {
		return p.Path
	}
	d, err := pathdata.Translate(p.Path, p.Offset.X, p.Offset.Y)
	if err != nil {
		return p.Path
	}
	return d
}

func (p motionProps) patch() anim.Patch {
	out := anim.Patch{Rotate: anim.Ptr(p.Rotate)}
	if p.Offset != (geom.Point{}) && p.Path != "" {
		out.Path = anim.Ptr(p.translated())
	}
	return out
}

// rotateModes is the order the rotate handle cycles through
var rotateModes = []string{"", "auto", "auto-reverse"}

func nextRotateMode(cur string) string {
	for i, m := range rotateModes {
		if m == cur {
			return rotateModes[(i+1)%len(rotateModes)]
		}
	}
	// a fixed angle goes back to following the path
	return "auto"
}

// MotionPath moves an inline motion path and toggles its rotate mode.
// Referenced paths (mpath) belong to another element and stay read-only.
func MotionPath() *gizmo.Definition {
	return gizmo.Define(gizmo.Spec[motionProps]{
		ID:            IDMotionPath,
		Name:          "Motion path",
		Category:      gizmo.CategoryVector,
		AnimationKind: anim.AnimMotion,
		Kinds:         []anim.AnimationKind{anim.AnimMotion},
		Initial: func(d *anim.Description, _ *anim.Element) motionProps {
			p := motionProps{Path: d.Path, Rotate: d.Rotate}
			if path, err := pathdata.Parse(d.Path); err == nil && !path.Empty() {
				p.origin = path.Start()
				p.end, _ = path.PointAt(1)
			}
			return p
		},
		ToPatch: motionProps.patch,
		Handles: gizmo.Static([]*gizmo.Handle{
			{
				ID:   "origin",
				Type: gizmo.HandlePosition,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[motionProps](ctx.State)
					return p.origin.Add(p.Offset)
				}),
				Visible: gizmo.Computed(func(ctx *gizmo.Context) bool {
					p, _ := gizmo.Props[motionProps](ctx.State)
					return p.Path != ""
				}),
				OnDragStart: func(ctx *gizmo.Context) {
					gizmo.Update(ctx, func(p *motionProps) { p.start = p.Offset })
				},
				OnDrag: func(ctx *gizmo.Context) {
					total := geom.ConstrainToAxis(dragTotal(ctx), ctx.Modifiers.Constrain())
					edit(ctx, motionProps.patch, func(p *motionProps) {
						// snap the visible origin, not the raw offset
						pt := snapPoint(ctx, p.origin.Add(p.start).Add(total))
						p.Offset = pt.Sub(p.origin)
					})
				},
			},
			{
				ID:   "rotate-mode",
				Type: gizmo.HandleCustom,
				Position: gizmo.Computed(func(ctx *gizmo.Context) geom.Point {
					p, _ := gizmo.Props[motionProps](ctx.State)
					off := ctx.Viewport.ScreenLength(handleOffset)
					if p.Path == "" {
						return geom.Point{X: ctx.Bounds.X + ctx.Bounds.Width + off, Y: ctx.Bounds.Y}
					}
					return p.end.Add(p.Offset).Add(geom.Point{X: off})
				}),
				Label: gizmo.Computed(func(ctx *gizmo.Context) string {
					p, _ := gizmo.Props[motionProps](ctx.State)
					if p.Rotate == "" {
						return "fixed"
					}
					return p.Rotate
				}),
				Cursor: "pointer",
				OnDragEnd: func(ctx *gizmo.Context) {
					edit(ctx, motionProps.patch, func(p *motionProps) {
						p.Rotate = nextRotateMode(p.Rotate)
					})
				},
			},
		}),
		Render: func(ctx *gizmo.Context, p motionProps) []gizmo.Primitive {
			d := p.translated()
			if d == "" {
				return nil
			}
			out := []gizmo.Primitive{{Kind: "path", Path: d}}
			if path, err := pathdata.Parse(d); err == nil {
				for _, line := range path.Polylines() {
					out = append(out, gizmo.Primitive{Kind: "polyline", Points: line})
				}
			}
			return out
		},
	})
}
