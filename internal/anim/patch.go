package anim

import (
	"slices"

	"github.com/jinzhu/copier"
)

// Patch is a partial description. Nil fields leave the target untouched.
type Patch struct {
	Target        *string
	Dur           *float64
	Repeat        *Repeat
	RepeatDur     *float64
	Fill          *Fill
	CalcMode      *CalcMode
	Begin         *Begin
	Additive      *bool
	Accumulate    *bool
	AttributeName *string
	TransformType *TransformType
	From          *string
	To            *string
	Values        *[]string
	KeyTimes      *[]float64
	KeySplines    *[]Spline
	Path          *string
	Rotate        *string
}

// IsEmpty reports whether applying p would change nothing
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Merge returns p overridden by every field q sets. The result owns its
// pointers; neither p nor q is written through.
func (p Patch) Merge(q Patch) Patch {
	var out Patch
	for _, src := range []*Patch{&p, &q} {
		if err := copier.CopyWithOption(&out, src, copier.Option{IgnoreEmpty: true}); err != nil {
			// copier only fails on mismatched kinds, which Patch -> Patch cannot produce
			panic(err)
		}
	}
	return out
}

// Apply writes every set field of p into d
func (p Patch) Apply(d *Description) {
	if p.Target != nil {
		d.Target = *p.Target
	}
	if p.Dur != nil {
		d.Dur = *p.Dur
	}
	if p.Repeat != nil {
		d.Repeat = *p.Repeat
	}
	if p.RepeatDur != nil {
		v := *p.RepeatDur
		d.RepeatDur = &v
	}
	if p.Fill != nil {
		d.Fill = *p.Fill
	}
	if p.CalcMode != nil {
		d.CalcMode = *p.CalcMode
	}
	if p.Begin != nil {
		d.Begin = *p.Begin
	}
	if p.Additive != nil {
		d.Additive = *p.Additive
	}
	if p.Accumulate != nil {
		d.Accumulate = *p.Accumulate
	}
	if p.AttributeName != nil {
		d.AttributeName = *p.AttributeName
	}
	if p.TransformType != nil {
		d.TransformType = *p.TransformType
	}
	if p.From != nil {
		d.From = *p.From
	}
	if p.To != nil {
		d.To = *p.To
	}
	if p.Values != nil {
		d.Values = slices.Clone(*p.Values)
	}
	if p.KeyTimes != nil {
		d.KeyTimes = slices.Clone(*p.KeyTimes)
	}
	if p.KeySplines != nil {
		d.KeySplines = slices.Clone(*p.KeySplines)
	}
	if p.Path != nil {
		d.Path = *p.Path
	}
	if p.Rotate != nil {
		d.Rotate = *p.Rotate
	}
}
