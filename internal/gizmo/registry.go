package gizmo

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ivlev/svganim/internal/anim"
)

// EventType tells subscribers what changed in the registry
type EventType int

const (
	EventRegistered EventType = iota
	EventReplaced
	EventUnregistered
	EventCleared
)

// Event is delivered to registry subscribers after each mutation
type Event struct {
	Type EventType
	ID   string
}

type subscriber struct {
	id int
	fn func(Event)
}

// Registry maps gizmo ids to definitions, indexed by category and animation
// kind. Mutation is expected at start-up or plugin load; lookups are safe
// from any goroutine at any rate.
type Registry struct {
	mu         sync.RWMutex
	defs       map[string]*Definition
	order      []*Definition // registration order
	byCategory map[Category][]*Definition
	byKind     map[anim.AnimationKind][]*Definition

	subMu  sync.Mutex
	subs   []subscriber
	nextID int

	log zerolog.Logger
}

// NewRegistry returns an empty registry logging to log
func NewRegistry(log zerolog.Logger) *Registry {
	r := &Registry{log: log.With().Str("component", "registry").Logger()}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.defs = make(map[string]*Definition)
	r.order = nil
	r.byCategory = make(map[Category][]*Definition)
	r.byKind = make(map[anim.AnimationKind][]*Definition)
}

// reindex rebuilds the secondary indices from order. Index slices are never
// mutated in place, so readers may keep iterating an old one after unlock.
func (r *Registry) reindex() {
	byCategory := make(map[Category][]*Definition)
	byKind := make(map[anim.AnimationKind][]*Definition)
	for _, def := range r.order {
		byCategory[def.Category] = append(byCategory[def.Category], def)
		if def.AnimationKind != anim.AnimUnknown {
			byKind[def.AnimationKind] = append(byKind[def.AnimationKind], def)
		}
	}
	r.byCategory = byCategory
	r.byKind = byKind
}

// Register inserts def, or replaces a definition with the same id in its
// original registration slot. Replacement is logged as a warning.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.ID == "" {
		return errors.New("gizmo definition needs an id")
	}
	if _, err := ParseCategory(string(def.Category)); err != nil {
		return fmt.Errorf("gizmo %q: %w", def.ID, err)
	}
	def.matcher = resolveMatcher(def)

	r.mu.Lock()
	ev := Event{Type: EventRegistered, ID: def.ID}
	if _, exists := r.defs[def.ID]; exists {
		ev.Type = EventReplaced
		order := make([]*Definition, len(r.order))
		for i, d := range r.order {
			if d.ID == def.ID {
				d = def
			}
			order[i] = d
		}
		r.order = order
	} else {
		r.order = append(r.order[:len(r.order):len(r.order)], def)
	}
	r.defs[def.ID] = def
	r.reindex()
	r.mu.Unlock()

	if ev.Type == EventReplaced {
		r.log.Warn().Str("gizmo", def.ID).Msg("duplicate gizmo id, replacing earlier definition")
	}
	r.notify(ev)
	return nil
}

// MustRegister is Register for static built-in tables
func (r *Registry) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Unregister removes id from every index and reports whether it existed
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	if _, ok := r.defs[id]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.defs, id)
	order := make([]*Definition, 0, len(r.order))
	for _, d := range r.order {
		if d.ID != id {
			order = append(order, d)
		}
	}
	r.order = order
	r.reindex()
	r.mu.Unlock()

	r.notify(Event{Type: EventUnregistered, ID: id})
	return true
}

// Clear drops every definition
func (r *Registry) Clear() {
	r.mu.Lock()
	r.reset()
	r.mu.Unlock()
	r.notify(Event{Type: EventCleared})
}

func (r *Registry) Get(id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	return def, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns every definition in registration order
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Definition(nil), r.order...)
}

func (r *Registry) ByCategory(c Category) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Definition(nil), r.byCategory[c]...)
}

func (r *Registry) ByKind(k anim.AnimationKind) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Definition(nil), r.byKind[k]...)
}

// candidates narrows the search to the kind bucket when one exists
func (r *Registry) candidates(d *anim.Description) []*Definition {
	kind := anim.ClassifyKind(d)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bucket := r.byKind[kind]; kind != anim.AnimUnknown && len(bucket) > 0 {
		return bucket
	}
	return r.order
}

// FindForAnimation returns the first definition, in registration order, whose
// matcher accepts (d, el). A panicking predicate counts as no match.
func (r *Registry) FindForAnimation(d *anim.Description, el *anim.Element) (*Definition, bool) {
	if d == nil {
		return nil, false
	}
	for _, def := range r.candidates(d) {
		if r.matches(def, d, el) {
			return def, true
		}
	}
	return nil, false
}

// FindAllForAnimation returns every matching definition, for offering
// alternatives. The kind bucket comes first, so out[0] is what
// FindForAnimation picks; matches outside the bucket follow in
// registration order.
func (r *Registry) FindAllForAnimation(d *anim.Description, el *anim.Element) []*Definition {
	if d == nil {
		return nil
	}
	first := r.candidates(d)
	r.mu.RLock()
	rest := r.order
	r.mu.RUnlock()

	var out []*Definition
	for _, def := range first {
		if r.matches(def, d, el) {
			out = append(out, def)
		}
	}
	for _, def := range rest {
		if !slices.Contains(first, def) && r.matches(def, d, el) {
			out = append(out, def)
		}
	}
	return out
}

func (r *Registry) matches(def *Definition, d *anim.Description, el *anim.Element) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Str("gizmo", def.ID).
				Str("animation", d.ID).
				Interface("panic", rec).
				Msg("match predicate failed")
			ok = false
		}
	}()
	return def.Matcher().Matches(d, el)
}

// Subscribe registers fn for change events and returns its cancel func
func (r *Registry) Subscribe(fn func(Event)) func() {
	r.subMu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		for i, s := range r.subs {
			if s.id == id {
				r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) notify(ev Event) {
	r.subMu.Lock()
	subs := append([]subscriber(nil), r.subs...)
	r.subMu.Unlock()

	for _, s := range subs {
		r.deliver(s, ev)
	}
}

func (r *Registry) deliver(s subscriber, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Int("subscriber", s.id).Interface("panic", rec).Msg("registry subscriber failed")
		}
	}()
	s.fn(ev)
}
