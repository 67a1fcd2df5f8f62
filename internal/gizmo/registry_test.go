package gizmo

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/svganim/internal/anim"
	"github.com/ivlev/svganim/internal/geom"
)

func rotateAnim() *anim.Description {
	return &anim.Description{ID: "spin", Kind: anim.KindTransform, TransformType: anim.TransformRotate, From: "0", To: "360", Dur: 2}
}

func opacityAnim() *anim.Description {
	return &anim.Description{ID: "fade", Kind: anim.KindAnimate, AttributeName: "opacity", From: "0", To: "1", Dur: 1}
}

func TestFindForAnimationFirstMatchWins(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.MustRegister(
		&Definition{ID: "a", Category: CategoryTransform, AnimationKind: anim.AnimRotate, Kinds: []anim.AnimationKind{anim.AnimRotate}},
		&Definition{ID: "b", Category: CategoryTransform, AnimationKind: anim.AnimRotate, Kinds: []anim.AnimationKind{anim.AnimRotate}},
	)

	def, ok := r.FindForAnimation(rotateAnim(), nil)
	require.True(t, ok)
	assert.Equal(t, "a", def.ID)

	all := r.FindAllForAnimation(rotateAnim(), nil)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[1].ID)

	_, ok = r.FindForAnimation(opacityAnim(), nil)
	assert.False(t, ok)
}

func TestPredicatePreferredOverKinds(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.MustRegister(&Definition{
		ID:       "picky",
		Category: CategoryStyle,
		Kinds:    []anim.AnimationKind{anim.AnimOpacity},
		Predicate: func(d *anim.Description, el *anim.Element) bool {
			return el != nil && el.Tag == "circle"
		},
	})

	def, _ := r.Get("picky")
	assert.Equal(t, "predicate", def.Matcher().Strategy())

	_, ok := r.FindForAnimation(opacityAnim(), &anim.Element{ID: "r", Tag: "rect"})
	assert.False(t, ok, "kind list must not be consulted when a predicate exists")

	_, ok = r.FindForAnimation(opacityAnim(), &anim.Element{ID: "c", Tag: "circle"})
	assert.True(t, ok)
}

func TestPanickingPredicateIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(zerolog.New(&buf))
	r.MustRegister(
		&Definition{ID: "broken", Category: CategoryFX, Predicate: func(*anim.Description, *anim.Element) bool {
			panic("boom")
		}},
		&Definition{ID: "fallback", Category: CategoryFX, Predicate: func(*anim.Description, *anim.Element) bool {
			return true
		}},
	)

	def, ok := r.FindForAnimation(opacityAnim(), nil)
	require.True(t, ok)
	assert.Equal(t, "fallback", def.ID)
	assert.Contains(t, buf.String(), "match predicate failed")
}

func TestKindBucketNarrowsSearch(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	always := func(*anim.Description, *anim.Element) bool { return true }
	r.MustRegister(
		&Definition{ID: "generic", Category: CategoryFX, Predicate: always},
		&Definition{ID: "rotate", Category: CategoryTransform, AnimationKind: anim.AnimRotate, Predicate: always},
	)

	def, _ := r.FindForAnimation(rotateAnim(), nil)
	assert.Equal(t, "rotate", def.ID)

	// no opacity bucket: the full set is searched in registration order
	def, _ = r.FindForAnimation(opacityAnim(), nil)
	assert.Equal(t, "generic", def.ID)

	// alternatives include catch-alls outside the bucket, after it
	var ids []string
	for _, d := range r.FindAllForAnimation(rotateAnim(), nil) {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"rotate", "generic"}, ids)

	ids = nil
	for _, d := range r.FindAllForAnimation(opacityAnim(), nil) {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"generic", "rotate"}, ids)
}

func TestRegisterReplaceAndUnregister(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(zerolog.New(&buf))

	var events []Event
	cancel := r.Subscribe(func(ev Event) { events = append(events, ev) })

	r.MustRegister(
		&Definition{ID: "x", Category: CategoryTransform, AnimationKind: anim.AnimRotate, Kinds: []anim.AnimationKind{anim.AnimRotate}},
		&Definition{ID: "y", Category: CategoryStyle},
	)
	require.NoError(t, r.Register(&Definition{ID: "x", Name: "second", Category: CategoryScene}))
	assert.Contains(t, buf.String(), "duplicate gizmo id")

	def, ok := r.Get("x")
	require.True(t, ok)
	assert.Equal(t, "second", def.Name)
	assert.Equal(t, "x", r.All()[0].ID, "replacement keeps the registration slot")
	assert.Empty(t, r.ByCategory(CategoryTransform))
	assert.Len(t, r.ByCategory(CategoryScene), 1)
	assert.Empty(t, r.ByKind(anim.AnimRotate))

	assert.True(t, r.Unregister("x"))
	assert.False(t, r.Unregister("x"))
	_, ok = r.FindForAnimation(rotateAnim(), nil)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())

	cancel()
	r.Clear()
	assert.Equal(t, 0, r.Len())

	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	assert.Equal(t, []EventType{EventRegistered, EventRegistered, EventReplaced, EventUnregistered}, types)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&Definition{Category: CategoryFX}))
	err := r.Register(&Definition{ID: "z", Category: "sparkles"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Subscribe(func(Event) { panic("bad subscriber") })
	got := 0
	r.Subscribe(func(Event) { got++ })

	r.MustRegister(&Definition{ID: "a", Category: CategoryFX})
	assert.Equal(t, 1, got)
}

type counterProps struct {
	Count int
}

func TestDefineTypedProps(t *testing.T) {
	def := Define(Spec[counterProps]{
		ID:       "counter",
		Category: CategoryInteractive,
		Initial: func(d *anim.Description, el *anim.Element) counterProps {
			return counterProps{Count: int(d.Dur)}
		},
		ToPatch: func(p counterProps) anim.Patch {
			return anim.Patch{Dur: anim.Ptr(float64(p.Count))}
		},
		Handles: Static([]*Handle{{
			ID:       "h",
			Type:     HandleTiming,
			Position: Computed(func(ctx *Context) geom.Point { return ctx.Center }),
			OnDrag: func(ctx *Context) {
				Update(ctx, func(p *counterProps) { p.Count++ })
			},
		}}),
		Render: func(ctx *Context, p counterProps) []Primitive {
			return []Primitive{{Kind: "label", Text: "n"}}
		},
	})

	st := &EditState{Props: def.InitialProps(&anim.Description{Dur: 3}, nil)}
	ctx := &Context{
		State:  st,
		Center: geom.Point{X: 5, Y: 6},
		UpdateEditState: func(fn func(*EditState)) {
			fn(st)
		},
	}
	def.HandleByID(ctx, "h").OnDrag(ctx)

	p, ok := Props[counterProps](st)
	require.True(t, ok)
	assert.Equal(t, 4, p.Count)

	patch, ok := def.PatchFrom(st.Props)
	require.True(t, ok)
	assert.Equal(t, 4.0, *patch.Dur)
	_, ok = def.PatchFrom("wrong type")
	assert.False(t, ok)

	handles := def.ResolveHandles(ctx)
	require.Len(t, handles, 1)
	assert.Equal(t, geom.Point{X: 5, Y: 6}, handles[0].Position)
	assert.Equal(t, "ew-resize", handles[0].Cursor)
	assert.Equal(t, ShapeBar, handles[0].Shape)
	assert.Len(t, def.Render(ctx), 1)
}

func TestValueVariant(t *testing.T) {
	v := Static(3)
	assert.Equal(t, 3, v.Resolve(nil))
	assert.False(t, v.IsComputed())

	c := Computed(func(ctx *Context) int { return int(ctx.Delta.X) })
	assert.Equal(t, 0, c.Resolve(nil))
	assert.Equal(t, 7, c.Resolve(&Context{Delta: geom.Point{X: 7}}))

	var unset Value[bool]
	assert.True(t, unset.ResolveOr(nil, true))
	assert.False(t, Static(false).ResolveOr(nil, true))
}
