package anim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseBegin(t *testing.T) {
	tests := []struct {
		in      string
		want    Begin
		wantErr bool
	}{
		{"", Begin{}, false},
		{"2s", Begin{Offset: 2}, false},
		{"500ms", Begin{Offset: 0.5}, false},
		{"1.5", Begin{Offset: 1.5}, false},
		{"a1.end", Begin{Ref: "a1"}, false},
		{"a1.end+0.5s", Begin{Ref: "a1", Delay: 0.5}, false},
		{"fade-in.end - 1s", Begin{Ref: "fade-in", Delay: -1}, false},
		{"a1.end*2", Begin{}, true},
		{"soon", Begin{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBegin(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Offset, got.Offset, 1e-9)
			assert.InDelta(t, tt.want.Delay, got.Delay, 1e-9)
			assert.Equal(t, tt.want.Ref, got.Ref)
		})
	}
}

func TestBeginString(t *testing.T) {
	assert.Equal(t, "0s", Begin{}.String())
	assert.Equal(t, "1.25s", At(1.25).String())
	assert.Equal(t, "a.end", After("a", 0).String())
	assert.Equal(t, "a.end+0.5s", After("a", 0.5).String())
	assert.Equal(t, "a.end-2s", After("a", -2).String())
}

func TestTotalDuration(t *testing.T) {
	d := Description{Dur: 2, Repeat: Times(3)}
	assert.Equal(t, 6.0, d.TotalDuration())

	d = Description{Dur: 2}
	assert.Equal(t, 2.0, d.TotalDuration())

	d = Description{Dur: 2, Repeat: RepeatForever}
	assert.True(t, math.IsInf(d.TotalDuration(), 1))

	d = Description{Dur: 2, Repeat: RepeatForever, RepeatDur: Ptr(5.0)}
	assert.Equal(t, 5.0, d.TotalDuration())
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		d    Description
		want AnimationKind
	}{
		{Description{Kind: KindTransform, TransformType: TransformRotate}, AnimRotate},
		{Description{Kind: KindTransform, TransformType: TransformSkewY}, AnimSkewY},
		{Description{Kind: KindTransform}, AnimUnknown},
		{Description{Kind: KindMotion}, AnimMotion},
		{Description{Kind: KindSet, AttributeName: "visibility"}, AnimSet},
		{Description{Kind: KindAnimate, AttributeName: "opacity"}, AnimOpacity},
		{Description{Kind: KindAnimate, AttributeName: "fill-opacity"}, AnimOpacity},
		{Description{Kind: KindAnimate, AttributeName: "fill"}, AnimColor},
		{Description{Kind: KindAnimate, AttributeName: "r"}, AnimAttribute},
		{Description{}, AnimUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyKind(&tt.d), "%+v", tt.d)
	}
	assert.Equal(t, AnimUnknown, ClassifyKind(nil))
}

func TestPatch(t *testing.T) {
	d := Description{ID: "a", Kind: KindAnimate, AttributeName: "opacity", From: "0", To: "1", Dur: 1}

	first := Patch{Dur: Ptr(2.5), To: Ptr("0.5")}
	p := first.Merge(Patch{Fill: Ptr(FillFreeze), To: Ptr("0.75")})
	p.Apply(&d)
	assert.Equal(t, "0.5", *first.To, "merge must not write through the earlier patch")

	assert.Equal(t, 2.5, d.Dur)
	assert.Equal(t, "0.75", d.To)
	assert.Equal(t, "0", d.From)
	assert.Equal(t, FillFreeze, d.Fill)

	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, p.IsEmpty())
}

func TestCloneIsDeep(t *testing.T) {
	d := Description{Values: []string{"0", "1"}, KeyTimes: []float64{0, 1}, RepeatDur: Ptr(3.0)}
	c := d.Clone()
	c.Values[0] = "9"
	*c.RepeatDur = 4
	assert.Equal(t, "0", d.Values[0])
	assert.Equal(t, 3.0, *d.RepeatDur)
}

func TestDescriptionYAML(t *testing.T) {
	src := `
id: spin
kind: animateTransform
target: gear
type: rotate
from: "0"
to: "360"
dur: 2
repeatCount: indefinite
begin: intro.end+0.5s
`
	var d Description
	require.NoError(t, yaml.Unmarshal([]byte(src), &d))
	assert.Equal(t, KindTransform, d.Kind)
	assert.True(t, d.Repeat.Indefinite)
	assert.Equal(t, After("intro", 0.5), d.Begin)

	out, err := yaml.Marshal(&d)
	require.NoError(t, err)
	assert.Contains(t, string(out), "repeatCount: indefinite")
	assert.Contains(t, string(out), "begin: intro.end+0.5s")
}

func TestElementNumber(t *testing.T) {
	el := &Element{ID: "c", Tag: "circle", Attrs: map[string]string{"r": "12px", "fill": "red"}}
	v, ok := el.Number("r")
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)
	_, ok = el.Number("fill")
	assert.False(t, ok)
	var missing *Element
	assert.Equal(t, "", missing.Attr("r"))
}
