package gizmo

import (
	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
)

// Interaction is the pointer sub-state of one active gizmo
type Interaction struct {
	ActiveHandle  string
	Dragging      bool
	DragStart     *geom.Point // last logical point, advanced after every update
	DragOrigin    *geom.Point // logical press point, fixed for the whole drag
	HoveredHandle string
}

// Idle reports whether no handle is active
func (i Interaction) Idle() bool {
	return i.ActiveHandle == "" && !i.Dragging
}

// EditState is the working record of one gizmo instance while its animation
// is being edited. Props holds the definition's own typed record.
type EditState struct {
	DefinitionID string
	AnimationID  string
	ElementID    string
	Props        any
	Interaction  Interaction
}

// Props recovers the typed props record of st
func Props[P any](st *EditState) (P, bool) {
	if st == nil {
		var zero P
		return zero, false
	}
	p, ok := st.Props.(P)
	return p, ok
}

// Modifiers is the keyboard state sampled with each pointer event
type Modifiers struct {
	Shift bool
	Alt   bool
	Ctrl  bool
	Meta  bool
}

// Constrain is the axis-lock / angle-snap / uniform-scale modifier
func (m Modifiers) Constrain() bool { return m.Shift }

// FromCenter asks transforms to pivot around the element center
func (m Modifiers) FromCenter() bool { return m.Alt }

// Snap toggles grid snapping relative to the configured default
func (m Modifiers) Snap() bool { return m.Ctrl || m.Meta }

// SnapSettings carries the editor's snapping configuration into handles
type SnapSettings struct {
	GridSize     float64
	GridEnabled  bool
	RotationStep float64
}

// GridActive combines the configured grid toggle with the live modifier
func (c *Context) GridActive() bool {
	return c.Snap.GridEnabled != c.Modifiers.Snap()
}

// TimeSnapshot is the playhead as seen at the moment of a drag event
type TimeSnapshot struct {
	Time     float64
	Duration float64
	Progress float64
}

// Context is what handle callbacks, computed values and render callbacks see.
// Mutations go through the three callbacks only.
type Context struct {
	State       *EditState
	Description *anim.Description
	Element     *anim.Element
	Bounds      geom.Bounds
	Center      geom.Point
	Viewport    geom.Viewport
	Time        TimeSnapshot
	Delta       geom.Point
	Pointer     geom.Point
	Modifiers   Modifiers
	Snap        SnapSettings

	UpdateEditState   func(fn func(st *EditState))
	UpdateDescription func(p anim.Patch)
	Commit            func()
}

// Update mutates the typed props record through ctx.UpdateEditState
func Update[P any](ctx *Context, fn func(p *P)) {
	if ctx == nil || ctx.UpdateEditState == nil {
		return
	}
	ctx.UpdateEditState(func(st *EditState) {
		p, _ := st.Props.(P)
		fn(&p)
		st.Props = p
	})
}
