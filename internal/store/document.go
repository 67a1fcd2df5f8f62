// Package store holds the editable scene: an in-memory document with
// commit history, scene files on disk and a bounds service for the canvas.
package store

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"

	"github.com/ivlev/svganim/internal/anim"
)

// ErrNotFound is returned for unknown element or animation ids
var ErrNotFound = errors.New("not found")

// maxHistory bounds the undo stack
const maxHistory = 100

type ChangeKind int

const (
	ChangeAnimation ChangeKind = iota
	ChangeElement
	ChangeCommit
	ChangeUndo
	ChangeReload
)

// Change is delivered to subscribers after every mutation
type Change struct {
	Kind ChangeKind
	ID   string // element or animation id; the label for commits
}

type snapshot struct {
	label string
	scene Scene
}

// Document is the in-memory scene the editor mutates. Reads return copies.
type Document struct {
	mu      sync.RWMutex
	scene   Scene
	history []snapshot
	subs    map[int]func(Change)
	nextSub int
	log     zerolog.Logger
}

func NewDocument(scene *Scene, log zerolog.Logger) *Document {
	d := &Document{
		subs: make(map[int]func(Change)),
		log:  log.With().Str("component", "store").Logger(),
	}
	if scene != nil {
		d.scene = deepCopy(*scene)
	}
	d.history = []snapshot{{label: "open", scene: deepCopy(d.scene)}}
	return d
}

func deepCopy(s Scene) Scene {
	var out Scene
	if err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched types
		panic(err)
	}
	return out
}

func (d *Document) findAnimation(id string) int {
	for i := range d.scene.Animations {
		if d.scene.Animations[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) findElement(id string) int {
	for i := range d.scene.Elements {
		if d.scene.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) Animation(id string) (anim.Description, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := d.findAnimation(id)
	if i < 0 {
		return anim.Description{}, false
	}
	return d.scene.Animations[i].Clone(), true
}

func (d *Document) Element(id string) (anim.Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := d.findElement(id)
	if i < 0 {
		return anim.Element{}, false
	}
	el := d.scene.Elements[i]
	el.Attrs = maps.Clone(el.Attrs)
	return el, true
}

// Scene returns a deep copy of the current scene
func (d *Document) Scene() *Scene {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := deepCopy(d.scene)
	return &s
}

// UpdateAnimation applies a partial update to the animation id
func (d *Document) UpdateAnimation(id string, p anim.Patch) error {
	d.mu.Lock()
	i := d.findAnimation(id)
	if i < 0 {
		d.mu.Unlock()
		return fmt.Errorf("animation %q: %w", id, ErrNotFound)
	}
	p.Apply(&d.scene.Animations[i])
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeAnimation, ID: id})
	return nil
}

// UpdateElement merges attrs into the element's static attributes; an empty
// value removes the attribute
func (d *Document) UpdateElement(id string, attrs map[string]string) error {
	d.mu.Lock()
	i := d.findElement(id)
	if i < 0 {
		d.mu.Unlock()
		return fmt.Errorf("element %q: %w", id, ErrNotFound)
	}
	el := &d.scene.Elements[i]
	if el.Attrs == nil {
		el.Attrs = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		if v == "" {
			delete(el.Attrs, k)
			continue
		}
		el.Attrs[k] = v
	}
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeElement, ID: id})
	return nil
}

// AddAnimation appends a description; ids must be unique
func (d *Document) AddAnimation(a anim.Description) error {
	d.mu.Lock()
	if a.ID == "" || d.findAnimation(a.ID) >= 0 {
		d.mu.Unlock()
		return fmt.Errorf("animation id %q is empty or taken", a.ID)
	}
	d.scene.Animations = append(d.scene.Animations, a.Clone())
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeAnimation, ID: a.ID})
	return nil
}

func (d *Document) RemoveAnimation(id string) error {
	d.mu.Lock()
	i := d.findAnimation(id)
	if i < 0 {
		d.mu.Unlock()
		return fmt.Errorf("animation %q: %w", id, ErrNotFound)
	}
	d.scene.Animations = append(d.scene.Animations[:i:i], d.scene.Animations[i+1:]...)
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeAnimation, ID: id})
	return nil
}

// Commit records the current scene as an undo step
func (d *Document) Commit(label string) {
	d.mu.Lock()
	d.history = append(d.history, snapshot{label: label, scene: deepCopy(d.scene)})
	if len(d.history) > maxHistory {
		d.history = append(d.history[:0:0], d.history[len(d.history)-maxHistory:]...)
	}
	depth := len(d.history) - 1
	d.mu.Unlock()

	d.log.Debug().Str("label", label).Int("depth", depth).Msg("commit")
	d.notify(Change{Kind: ChangeCommit, ID: label})
}

// Undo restores the scene as of the commit before the last one. It returns
// the label of the undone commit.
func (d *Document) Undo() (string, bool) {
	d.mu.Lock()
	if len(d.history) < 2 {
		d.mu.Unlock()
		return "", false
	}
	last := d.history[len(d.history)-1]
	d.history = d.history[:len(d.history)-1]
	d.scene = deepCopy(d.history[len(d.history)-1].scene)
	d.mu.Unlock()

	d.log.Debug().Str("label", last.label).Msg("undo")
	d.notify(Change{Kind: ChangeUndo, ID: last.label})
	return last.label, true
}

// History lists the commit labels, oldest first
func (d *Document) History() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.history))
	for i, s := range d.history {
		out[i] = s.label
	}
	return out
}

// Replace swaps in a new scene, e.g. after the file changed on disk. The
// history restarts from it.
func (d *Document) Replace(scene *Scene) {
	d.mu.Lock()
	d.scene = deepCopy(*scene)
	d.history = []snapshot{{label: "reload", scene: deepCopy(d.scene)}}
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeReload})
}

// Subscribe registers fn for every change; the returned func removes it
func (d *Document) Subscribe(fn func(Change)) func() {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Document) notify(c Change) {
	d.mu.RLock()
	subs := make([]func(Change), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.RUnlock()
	for _, fn := range subs {
		fn(c)
	}
}
