package gizmo

import (
	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
)

// Handle is one draggable control point of a gizmo
type Handle struct {
	ID       string
	Type     HandleType
	Position Value[geom.Point]
	Label    Value[string]
	Visible  Value[bool] // unset means visible
	Cursor   string      // overrides Type.DefaultCursor when set

	OnDragStart func(ctx *Context)
	OnDrag      func(ctx *Context)
	OnDragEnd   func(ctx *Context)
}

// ResolvedHandle is a handle evaluated against one context, ready to draw
type ResolvedHandle struct {
	ID       string
	Type     HandleType
	Position geom.Point
	Label    string
	Cursor   string
	Shape    HitShape
	Active   bool
	Hovered  bool
}

// Primitive is one overlay shape the host draws for a gizmo
type Primitive struct {
	Kind   string // line, polyline, circle, path, label
	Points []geom.Point
	Radius float64
	Path   string
	Text   string
}

// Definition describes a gizmo kind. Definitions are registered once and
// never mutated afterwards.
type Definition struct {
	ID            string
	Name          string
	Category      Category
	AnimationKind anim.AnimationKind // index bucket, optional

	// Predicate is the kind-aware matcher. Kinds is the legacy kind-only
	// matcher, consulted only when Predicate is nil.
	Predicate func(d *anim.Description, el *anim.Element) bool
	Kinds     []anim.AnimationKind

	Handles Value[[]*Handle]
	Render  func(ctx *Context) []Primitive

	initial func(d *anim.Description, el *anim.Element) any
	patch   func(props any) (anim.Patch, bool)
	matcher Matcher
}

// InitialProps maps an existing description and element to the working props
func (def *Definition) InitialProps(d *anim.Description, el *anim.Element) any {
	if def.initial == nil {
		return nil
	}
	return def.initial(d, el)
}

// PatchFrom maps working props back to a partial description.
// ok is false when props are not this definition's record type.
func (def *Definition) PatchFrom(props any) (anim.Patch, bool) {
	if def.patch == nil {
		return anim.Patch{}, false
	}
	return def.patch(props)
}

// Matcher returns the match strategy resolved at registration
func (def *Definition) Matcher() Matcher {
	if def.matcher == nil {
		return resolveMatcher(def)
	}
	return def.matcher
}

// HandleByID finds a handle in the (possibly computed) handle list
func (def *Definition) HandleByID(ctx *Context, id string) *Handle {
	for _, h := range def.Handles.Resolve(ctx) {
		if h != nil && h.ID == id {
			return h
		}
	}
	return nil
}

// ResolveHandles evaluates every visible handle against ctx
func (def *Definition) ResolveHandles(ctx *Context) []ResolvedHandle {
	var out []ResolvedHandle
	for _, h := range def.Handles.Resolve(ctx) {
		if h == nil || !h.Visible.ResolveOr(ctx, true) {
			continue
		}
		cursor := h.Cursor
		if cursor == "" {
			cursor = h.Type.DefaultCursor()
		}
		rh := ResolvedHandle{
			ID:       h.ID,
			Type:     h.Type,
			Position: h.Position.Resolve(ctx),
			Label:    h.Label.Resolve(ctx),
			Cursor:   cursor,
			Shape:    h.Type.HitShape(),
		}
		if ctx != nil && ctx.State != nil {
			rh.Active = ctx.State.Interaction.ActiveHandle == h.ID
			rh.Hovered = ctx.State.Interaction.HoveredHandle == h.ID
		}
		out = append(out, rh)
	}
	return out
}

// Spec is the typed form of a Definition: P is the gizmo's own props record
type Spec[P any] struct {
	ID            string
	Name          string
	Category      Category
	AnimationKind anim.AnimationKind
	Predicate     func(d *anim.Description, el *anim.Element) bool
	Kinds         []anim.AnimationKind
	Handles       Value[[]*Handle]
	Render        func(ctx *Context, props P) []Primitive
	Initial       func(d *anim.Description, el *anim.Element) P
	ToPatch       func(props P) anim.Patch
}

// Define erases a typed Spec into a Definition the registry can hold
func Define[P any](s Spec[P]) *Definition {
	def := &Definition{
		ID:            s.ID,
		Name:          s.Name,
		Category:      s.Category,
		AnimationKind: s.AnimationKind,
		Predicate:     s.Predicate,
		Kinds:         s.Kinds,
		Handles:       s.Handles,
	}
	if s.Initial != nil {
		def.initial = func(d *anim.Description, el *anim.Element) any {
			return s.Initial(d, el)
		}
	}
	if s.ToPatch != nil {
		def.patch = func(props any) (anim.Patch, bool) {
			p, ok := props.(P)
			if !ok {
				return anim.Patch{}, false
			}
			return s.ToPatch(p), true
		}
	}
	if s.Render != nil {
		def.Render = func(ctx *Context) []Primitive {
			var p P
			if ctx != nil {
				p, _ = Props[P](ctx.State)
			}
			return s.Render(ctx, p)
		}
	}
	return def
}
