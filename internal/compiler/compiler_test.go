package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/svganim/internal/anim"
)

func spin() anim.Description {
	return anim.Description{
		ID:            "spin",
		Kind:          anim.KindTransform,
		Target:        "gear",
		TransformType: anim.TransformRotate,
		From:          "0",
		To:            "360",
		Dur:           2,
		Repeat:        anim.RepeatForever,
	}
}

func TestCompileTransform(t *testing.T) {
	d := spin()

	out, err := Compile(&d, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t,
		`<animateTransform id="spin" href="#gear" attributeName="transform" type="rotate" from="0" to="360" calcMode="linear" dur="2s" begin="0s" repeatCount="indefinite" fill="remove" additive="replace" accumulate="none"/>`,
		out)

	opts := DefaultOptions()
	opts.Optimize = true
	opts.Compat = CompatLegacy
	out, err = Compile(&d, opts)
	require.NoError(t, err)
	assert.Equal(t,
		`<animateTransform id="spin" xlink:href="#gear" attributeName="transform" type="rotate" from="0" to="360" dur="2s" repeatCount="indefinite"/>`,
		out)
}

func TestCompileRoundsNumericTokens(t *testing.T) {
	d := anim.Description{ID: "x", Kind: anim.KindAnimate, AttributeName: "x", From: "0.123456789", To: "100.987654321", Dur: 1}
	opts := DefaultOptions()
	opts.Precision = 2

	out, err := Compile(&d, opts)
	require.NoError(t, err)
	assert.Contains(t, out, `from="0.12"`)
	assert.Contains(t, out, `to="100.99"`)
}

func TestCompileKeepsTinyDurationsPositive(t *testing.T) {
	d := anim.Description{ID: "blink", Kind: anim.KindAnimate, AttributeName: "x", From: "0", To: "1", Dur: 0.0004, RepeatDur: anim.Ptr(0.0002)}

	out, err := Compile(&d, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, `dur="0.0004s"`)
	assert.Contains(t, out, `repeatDur="0.0002s"`)
	assert.NotContains(t, out, `dur="0s"`)

	d.Dur = 1.23456
	out, err = Compile(&d, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, `dur="1.235s"`)
}

func TestRoundValue(t *testing.T) {
	tests := []struct {
		in        string
		precision int
		want      string
	}{
		{"#ff0000;rgb(10.56,0,0)", 1, "#ff0000;rgb(10.6,0,0)"},
		{"10px 2.5", 0, "10px 3"},
		{"-0.0001", 2, "0"},
		{"1.23456 7.5", -1, "1.23456 7.5"},
		{"M0.123,4 L 5.55555 6", 2, "M0.123,4 L 5.56 6"},
		{"", 3, ""},
		{"99999999999999999999.5 1e2", 3, "100000000000000000000 100"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundValue(tt.in, tt.precision))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		d    anim.Description
		want string
	}{
		{"missing type", anim.Description{ID: "a", Dur: 1, From: "0", To: "1"}, "Animation type is required"},
		{"missing attribute", anim.Description{ID: "a", Kind: anim.KindAnimate, Dur: 1, From: "0", To: "1"}, "attributeName is required for animate"},
		{"missing transform type", anim.Description{Kind: anim.KindTransform, Dur: 1, From: "0", To: "1"}, "type is required for animateTransform"},
		{"missing values", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", Dur: 1}, "from/to or values is required for animate"},
		{"keyTimes length", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", Dur: 1, Values: []string{"0", "1"}, KeyTimes: []float64{0, 0.5, 1}}, "keyTimes and values must have the same length (3 != 2)"},
		{"keyTimes order", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", Dur: 1, Values: []string{"0", "1", "2"}, KeyTimes: []float64{0, 0.7, 0.5}}, "keyTimes must be non-decreasing"},
		{"keyTimes above 1", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", Dur: 1, CalcMode: anim.CalcDiscrete, Values: []string{"0", "1", "2"}, KeyTimes: []float64{0, 1.5, 3}}, "keyTimes must be within [0, 1]"},
		{"keyTimes below 0", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", Dur: 1, Values: []string{"0", "1", "2"}, KeyTimes: []float64{0, -0.5, 1}}, "keyTimes must be within [0, 1]"},
		{"keyTimes end", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", Dur: 1, Values: []string{"0", "1"}, KeyTimes: []float64{0, 0.5}}, "keyTimes must end at 1"},
		{"splines count", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", Dur: 1, Values: []string{"0", "1", "2"}, CalcMode: anim.CalcSpline, KeySplines: []anim.Spline{{0, 0, 1, 1}}}, "keySplines must have 2 entries for 3 values, got 1"},
		{"motion path", anim.Description{Kind: anim.KindMotion, Dur: 1}, "path or pathRef is required for animateMotion"},
		{"set to", anim.Description{Kind: anim.KindSet, AttributeName: "visibility"}, "to is required for set"},
		{"zero dur", anim.Description{Kind: anim.KindAnimate, AttributeName: "x", From: "0", To: "1"}, "dur must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(&tt.d)
			assert.False(t, res.Valid)
			assert.Contains(t, res.Errors, tt.want)
		})
	}

	d := spin()
	assert.Equal(t, ValidationResult{Valid: true}, Validate(&d))

	_, err := Compile(&anim.Description{ID: "bad"}, DefaultOptions())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bad", verr.ID)
}

func TestCompileMotionAndBatch(t *testing.T) {
	ride := anim.Description{ID: "ride", Kind: anim.KindMotion, Target: "car", Dur: 3, PathRef: "track", Path: "M0 0 L100 0", Rotate: "auto"}
	back := anim.Description{ID: "back", Kind: anim.KindMotion, Target: "bus", Dur: 3, PathRef: "track", Path: "M0 0 L100 0", Begin: anim.After("ride", 0.5)}
	broken := anim.Description{ID: "broken", Kind: anim.KindAnimate, Dur: 1}

	opts := DefaultOptions()
	opts.Optimize = true
	c := New(opts, zerolog.Nop())
	c.Workers = 2

	out := c.CompileAll(context.Background(), []anim.Description{ride, broken, back})
	require.Len(t, out.Elements, 2)
	assert.Equal(t,
		`<animateMotion id="ride" href="#car" dur="3s" rotate="auto"><mpath href="#track"/></animateMotion>`,
		out.Elements[0])
	assert.Contains(t, out.Elements[1], `begin="ride.end+0.5s"`)
	assert.Equal(t, []string{`<path id="track" d="M0 0 L100 0"/>`}, out.Defs)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], `"broken"`)

	markup := out.Markup()
	assert.True(t, strings.HasPrefix(markup, "<defs>\n"))
}

func TestCompileComments(t *testing.T) {
	d := spin()
	opts := DefaultOptions()
	opts.Comments = true
	out, err := Compile(&d, opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!-- spin: rotate on #gear, 0 to 360 over 2s, repeating -->\n"))
}

func TestParseRoundTrip(t *testing.T) {
	descs := []anim.Description{
		spin(),
		{
			ID: "wobble", Kind: anim.KindAnimate, Target: "box", AttributeName: "x", Dur: 1.5,
			Values: []string{"0", "10", "0"}, KeyTimes: []float64{0, 0.25, 1},
			CalcMode: anim.CalcSpline, KeySplines: []anim.Spline{{0.42, 0, 0.58, 1}, {0, 0, 1, 1}},
			Fill: anim.FillFreeze, Begin: anim.At(0.5), Additive: true,
		},
		{ID: "ride", Kind: anim.KindMotion, Target: "car", Dur: 3, PathRef: "track", Rotate: "auto"},
		{ID: "show", Kind: anim.KindSet, Target: "car", AttributeName: "visibility", To: "visible", Begin: anim.After("ride", 0)},
	}
	opts := DefaultOptions()
	opts.Optimize = true

	var b strings.Builder
	for i := range descs {
		out, err := Compile(&descs[i], opts)
		require.NoError(t, err)
		b.WriteString(out + "\n")
	}

	parsed, err := Parse("<svg>" + b.String() + "</svg>")
	require.NoError(t, err)
	if diff := cmp.Diff(descs, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument(t *testing.T) {
	d := spin()
	out := New(DefaultOptions(), zerolog.Nop()).CompileAll(context.Background(), []anim.Description{d})
	doc := Document(out, []anim.Element{{ID: "gear", Tag: "rect", Attrs: map[string]string{"x": "10", "fill": "red"}}}, 200, 100, DefaultOptions())

	assert.True(t, strings.HasPrefix(doc, `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100" viewBox="0 0 200 100">`))
	assert.Contains(t, doc, `<rect id="gear" fill="red" x="10"/>`)
	assert.Contains(t, doc, `<animateTransform id="spin"`)
	assert.True(t, strings.HasSuffix(doc, "</svg>\n"))
}
