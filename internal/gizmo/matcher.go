package gizmo

import (
	"slices"

	"github.com/ivlev/svganim/internal/anim"
)

// Matcher decides whether a definition can edit a description. The set of
// implementations is closed: by predicate, by kind list, or never.
type Matcher interface {
	Matches(d *anim.Description, el *anim.Element) bool
	Strategy() string
	matcher()
}

type predicateMatcher struct {
	fn func(d *anim.Description, el *anim.Element) bool
}

func (m predicateMatcher) Matches(d *anim.Description, el *anim.Element) bool {
	return m.fn(d, el)
}
func (predicateMatcher) Strategy() string { return "predicate" }
func (predicateMatcher) matcher()         {}

type kindMatcher struct {
	kinds []anim.AnimationKind
}

func (m kindMatcher) Matches(d *anim.Description, _ *anim.Element) bool {
	return slices.Contains(m.kinds, anim.ClassifyKind(d))
}
func (kindMatcher) Strategy() string { return "kind" }
func (kindMatcher) matcher()         {}

type neverMatcher struct{}

func (neverMatcher) Matches(*anim.Description, *anim.Element) bool { return false }
func (neverMatcher) Strategy() string                              { return "never" }
func (neverMatcher) matcher()                                      {}

// resolveMatcher picks the strategy once: predicate first, then kinds
func resolveMatcher(def *Definition) Matcher {
	switch {
	case def.Predicate != nil:
		return predicateMatcher{fn: def.Predicate}
	case len(def.Kinds) > 0:
		return kindMatcher{kinds: slices.Clone(def.Kinds)}
	}
	return neverMatcher{}
}
