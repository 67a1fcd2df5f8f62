// Package interaction turns pointer events on gizmo handles into edits of
// animation descriptions. A Session owns the Idle -> Dragging -> Idle state
// machine for one canvas; lookup failures are logged and never returned.
package interaction

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/compiler"
	"github.com/ivlev/svganim/internal/geom"
	"github.com/ivlev/svganim/internal/gizmo"
)

// Store is the document the session reads descriptions from and commits to
type Store interface {
	Animation(id string) (anim.Description, bool)
	Element(id string) (anim.Element, bool)
	UpdateAnimation(id string, p anim.Patch) error
	UpdateElement(id string, attrs map[string]string) error
	Commit(label string)
}

// BoundsProvider measures an element on the canvas in logical units
type BoundsProvider interface {
	Bounds(el anim.Element, vp geom.Viewport) (geom.Bounds, bool)
}

// Clock supplies the playhead handed to handles
type Clock interface {
	Snapshot() gizmo.TimeSnapshot
}

// ClockFunc adapts a function to Clock
type ClockFunc func() gizmo.TimeSnapshot

func (f ClockFunc) Snapshot() gizmo.TimeSnapshot { return f() }

// Validator checks an edited description before it is committed
type Validator interface {
	Validate(d *anim.Description) compiler.ValidationResult
}

// ValidatorFunc adapts a function to Validator
type ValidatorFunc func(d *anim.Description) compiler.ValidationResult

func (f ValidatorFunc) Validate(d *anim.Description) compiler.ValidationResult { return f(d) }

// Deps wires a session to its collaborators. Clock and Validator are
// optional; without a validator compiler.Validate is used.
type Deps struct {
	Registry  *gizmo.Registry
	Store     Store
	Bounds    BoundsProvider
	Clock     Clock
	Validator Validator
	Snap      gizmo.SnapSettings
	Log       zerolog.Logger
}

type drag struct {
	animationID string
	def         *gizmo.Definition
	handle      *gizmo.Handle
	element     anim.Element
	bounds      geom.Bounds
	working     anim.Description // stored description with pending applied
	pending     anim.Patch
	last        geom.Point // last logical point
	mods        gizmo.Modifiers
	commitNow   bool
}

// Session is the drag state machine. Only one drag is active at a time.
// Handle callbacks run with the session locked and must only act through
// their Context.
type Session struct {
	mu sync.Mutex

	reg       *gizmo.Registry
	store     Store
	bounds    BoundsProvider
	clock     Clock
	validator Validator
	snap      gizmo.SnapSettings
	log       zerolog.Logger

	states   map[string]*gizmo.EditState
	defs     map[string]*gizmo.Definition
	editMode bool
	enabled  bool
	viewport geom.Viewport
	origin   geom.Point
	drag     *drag
}

func NewSession(d Deps) *Session {
	s := &Session{
		reg:       d.Registry,
		store:     d.Store,
		bounds:    d.Bounds,
		clock:     d.Clock,
		validator: d.Validator,
		snap:      d.Snap,
		log:       d.Log.With().Str("component", "interaction").Logger(),
		states:    make(map[string]*gizmo.EditState),
		defs:      make(map[string]*gizmo.Definition),
		editMode:  true,
		enabled:   true,
		viewport:  geom.IdentityViewport,
	}
	if s.validator == nil {
		s.validator = ValidatorFunc(compiler.Validate)
	}
	return s
}

// lookup resolves the description, element and definition of animationID
func (s *Session) lookup(animationID string) (anim.Description, anim.Element, *gizmo.Definition, bool) {
	d, ok := s.store.Animation(animationID)
	if !ok {
		s.log.Warn().Str("animation", animationID).Msg("animation not found")
		return d, anim.Element{}, nil, false
	}
	el, ok := s.store.Element(d.Target)
	if !ok {
		s.log.Warn().Str("animation", animationID).Str("element", d.Target).Msg("target element not found")
		return d, el, nil, false
	}
	if def, ok := s.defs[animationID]; ok {
		return d, el, def, true
	}
	def, ok := s.reg.FindForAnimation(&d, &el)
	if !ok {
		s.log.Warn().Str("animation", animationID).Msg("no gizmo for animation")
		return d, el, nil, false
	}
	return d, el, def, true
}

// Activate creates the edit state of animationID's gizmo
func (s *Session) Activate(animationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.activate(animationID)
	return ok
}

func (s *Session) activate(animationID string) (*gizmo.EditState, bool) {
	if st, ok := s.states[animationID]; ok {
		return st, true
	}
	if !s.editMode {
		s.log.Debug().Str("animation", animationID).Msg("edit mode off, gizmo not activated")
		return nil, false
	}
	d, el, def, ok := s.lookup(animationID)
	if !ok {
		return nil, false
	}
	st := &gizmo.EditState{
		DefinitionID: def.ID,
		AnimationID:  animationID,
		ElementID:    el.ID,
		Props:        def.InitialProps(&d, &el),
	}
	s.states[animationID] = st
	s.defs[animationID] = def
	s.log.Debug().Str("animation", animationID).Str("gizmo", def.ID).Msg("gizmo activated")
	return st, true
}

// Deactivate drops the edit state, cancelling a drag on it
func (s *Session) Deactivate(animationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag != nil && s.drag.animationID == animationID {
		s.finish(false)
	}
	delete(s.states, animationID)
	delete(s.defs, animationID)
}

// SetEditMode toggles handle editing. Leaving edit mode cancels a drag and
// drops every edit state; gizmos are rebuilt from the store when it returns.
func (s *Session) SetEditMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = on
	if on {
		return
	}
	if s.drag != nil {
		s.finish(false)
	}
	clear(s.states)
	clear(s.defs)
}

// SetInteractionsEnabled toggles pointer handling. Disabling mid-drag
// cancels the drag.
func (s *Session) SetInteractionsEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = on
	if !on && s.drag != nil {
		s.finish(false)
	}
}

func (s *Session) SetViewport(vp geom.Viewport) {
	s.mu.Lock()
	s.viewport = vp
	s.mu.Unlock()
}

// SetOrigin sets the screen offset of the hosting surface
func (s *Session) SetOrigin(p geom.Point) {
	s.mu.Lock()
	s.origin = p
	s.mu.Unlock()
}

func (s *Session) SetSnap(snap gizmo.SnapSettings) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Hover marks handleID of animationID as hovered; "" clears it
func (s *Session) Hover(animationID, handleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[animationID]
	if !ok {
		s.log.Debug().Str("animation", animationID).Msg("hover on inactive gizmo")
		return
	}
	st.Interaction.HoveredHandle = handleID
}

// Dragging reports whether a drag is active
func (s *Session) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag != nil
}

// State returns a copy of the edit state of animationID
func (s *Session) State(animationID string) (gizmo.EditState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[animationID]
	if !ok {
		return gizmo.EditState{}, false
	}
	return *st, true
}

func (s *Session) context(st *gizmo.EditState, d *anim.Description, el *anim.Element, b geom.Bounds) *gizmo.Context {
	ctx := &gizmo.Context{
		State:       st,
		Description: d,
		Element:     el,
		Bounds:      b,
		Center:      b.Center(),
		Viewport:    s.viewport,
		Snap:        s.snap,
	}
	if s.clock != nil {
		ctx.Time = s.clock.Snapshot()
	}
	ctx.UpdateEditState = func(fn func(*gizmo.EditState)) {
		fn(st)
	}
	ctx.UpdateDescription = func(p anim.Patch) {
		if s.drag == nil {
			s.log.Debug().Str("animation", st.AnimationID).Msg("description update outside a drag ignored")
			return
		}
		s.drag.pending = s.drag.pending.Merge(p)
		p.Apply(&s.drag.working)
	}
	ctx.Commit = func() {
		if s.drag != nil {
			s.drag.commitNow = true
		}
	}
	return ctx
}

// invoke runs a handle callback; a panic is logged and swallowed
func (s *Session) invoke(name string, fn func(*gizmo.Context), ctx *gizmo.Context) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("callback", name).
				Str("gizmo", ctx.State.DefinitionID).
				Str("handle", ctx.State.Interaction.ActiveHandle).
				Interface("panic", r).
				Msg("gizmo callback failed")
		}
	}()
	fn(ctx)
}

// StartDrag begins dragging handleID of animationID's gizmo at the device
// point p. It reports whether a drag started.
func (s *Session) StartDrag(animationID, handleID string, p geom.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With().Str("animation", animationID).Str("handle", handleID).Logger()
	switch {
	case !s.enabled || !s.editMode:
		log.Debug().Msg("interactions disabled, drag ignored")
		return false
	case s.drag != nil:
		log.Warn().Str("active", s.drag.animationID).Msg("drag already active")
		return false
	}

	st, ok := s.activate(animationID)
	if !ok {
		return false
	}
	d, el, def, ok := s.lookup(animationID)
	if !ok {
		return false
	}
	b, ok := s.bounds.Bounds(el, s.viewport)
	if !ok {
		log.Warn().Str("element", el.ID).Msg("element bounds unavailable")
		return false
	}

	dr := &drag{animationID: animationID, def: def, element: el, bounds: b, working: d.Clone()}
	ctx := s.context(st, &dr.working, &dr.element, b)
	h := def.HandleByID(ctx, handleID)
	if h == nil {
		log.Warn().Str("gizmo", def.ID).Msg("handle not found")
		return false
	}
	dr.handle = h

	logical := geom.ToLogical(p, s.origin, s.viewport)
	start, origin := logical, logical
	dr.last = logical
	st.Interaction = gizmo.Interaction{
		ActiveHandle:  handleID,
		Dragging:      true,
		DragStart:     &start,
		DragOrigin:    &origin,
		HoveredHandle: st.Interaction.HoveredHandle,
	}
	s.drag = dr

	ctx.Pointer = logical
	s.invoke("OnDragStart", h.OnDragStart, ctx)
	log.Debug().Str("gizmo", def.ID).Float64("x", logical.X).Float64("y", logical.Y).Msg("drag started")
	return true
}

// UpdateDrag feeds one pointer move. The delta handed to the handle is
// incremental: the drag start advances to p after every update, and p is
// converted with the viewport current at this event.
func (s *Session) UpdateDrag(p geom.Point, mods gizmo.Modifiers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr := s.drag
	if dr == nil {
		return
	}
	st := s.states[dr.animationID]

	b, ok := s.bounds.Bounds(dr.element, s.viewport)
	if !ok {
		s.log.Warn().Str("animation", dr.animationID).Msg("element bounds unavailable, move skipped")
		return
	}
	dr.bounds = b

	logical := geom.ToLogical(p, s.origin, s.viewport)
	prev := dr.last
	if st.Interaction.DragStart != nil {
		prev = *st.Interaction.DragStart
	}

	ctx := s.context(st, &dr.working, &dr.element, b)
	ctx.Pointer = logical
	ctx.Delta = logical.Sub(prev)
	ctx.Modifiers = mods
	s.invoke("OnDrag", dr.handle.OnDrag, ctx)

	next := logical
	st.Interaction.DragStart = &next
	dr.last = logical
	dr.mods = mods

	if dr.commitNow {
		dr.commitNow = false
		s.flush(dr, st)
	}
}

// EndDrag finishes the drag and commits a pending valid edit
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag != nil {
		s.finish(true)
	}
}

// CancelDrag finishes the drag and throws away its pending edit
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag != nil {
		s.finish(false)
	}
}

// finish runs OnDragEnd with a final context built from the last point, then
// resets the interaction whatever the callback did
func (s *Session) finish(commit bool) {
	dr := s.drag
	st := s.states[dr.animationID]

	ctx := s.context(st, &dr.working, &dr.element, dr.bounds)
	ctx.Pointer = dr.last
	ctx.Modifiers = dr.mods
	s.invoke("OnDragEnd", dr.handle.OnDragEnd, ctx)

	hovered := st.Interaction.HoveredHandle
	st.Interaction = gizmo.Interaction{HoveredHandle: hovered}

	if commit {
		s.flush(dr, st)
	} else if !dr.pending.IsEmpty() {
		s.log.Debug().Str("animation", dr.animationID).Msg("drag cancelled, edit discarded")
		s.reset(dr, st)
	}
	s.drag = nil
}

// flush validates and commits the pending patch
func (s *Session) flush(dr *drag, st *gizmo.EditState) {
	if dr.pending.IsEmpty() {
		return
	}
	log := s.log.With().Str("animation", dr.animationID).Str("gizmo", dr.def.ID).Logger()

	res := s.validator.Validate(&dr.working)
	if !res.Valid {
		log.Warn().Strs("errors", res.Errors).Msg("edit rejected")
		s.reset(dr, st)
		return
	}
	if err := s.store.UpdateAnimation(dr.animationID, dr.pending); err != nil {
		log.Error().Err(err).Msg("edit not stored")
		s.reset(dr, st)
		return
	}
	s.store.Commit(fmt.Sprintf("%s %s", dr.def.ID, dr.animationID))
	dr.pending = anim.Patch{}
	log.Debug().Msg("edit committed")
}

// reset rebuilds the props from the stored description
func (s *Session) reset(dr *drag, st *gizmo.EditState) {
	dr.pending = anim.Patch{}
	d, ok := s.store.Animation(dr.animationID)
	if !ok {
		return
	}
	dr.working = d.Clone()
	st.Props = dr.def.InitialProps(&d, &dr.element)
}

// Handles resolves the visible handles of animationID's gizmo for drawing
func (s *Session) Handles(animationID string) []gizmo.ResolvedHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, def, ok := s.renderContext(animationID)
	if !ok {
		return nil
	}
	return def.ResolveHandles(ctx)
}

// Render returns the overlay primitives of animationID's gizmo
func (s *Session) Render(animationID string) []gizmo.Primitive {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, def, ok := s.renderContext(animationID)
	if !ok || def.Render == nil {
		return nil
	}
	var out []gizmo.Primitive
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Str("gizmo", def.ID).Interface("panic", r).Msg("gizmo render failed")
			}
		}()
		out = def.Render(ctx)
	}()
	return out
}

func (s *Session) renderContext(animationID string) (*gizmo.Context, *gizmo.Definition, bool) {
	st, ok := s.activate(animationID)
	if !ok {
		return nil, nil, false
	}
	if s.drag != nil && s.drag.animationID == animationID {
		dr := s.drag
		ctx := s.context(st, &dr.working, &dr.element, dr.bounds)
		ctx.Pointer = dr.last
		return ctx, dr.def, true
	}
	d, el, def, ok := s.lookup(animationID)
	if !ok {
		return nil, nil, false
	}
	b, ok := s.bounds.Bounds(el, s.viewport)
	if !ok {
		s.log.Warn().Str("animation", animationID).Msg("element bounds unavailable")
		return nil, nil, false
	}
	return s.context(st, &d, &el, b), def, true
}

// Active lists the activated animation ids, sorted
func (s *Session) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return "idle"
	}
	return fmt.Sprintf("dragging %s/%s", s.drag.animationID, s.states[s.drag.animationID].Interaction.ActiveHandle)
}
