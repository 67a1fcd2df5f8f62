package timeline

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/svganim/internal/anim"
)

var gear = anim.Element{ID: "gear", Tag: "rect", Attrs: map[string]string{"opacity": "0.5", "fill": "red"}}

func spin() anim.Description {
	return anim.Description{
		ID: "spin", Kind: anim.KindTransform, Target: "gear",
		TransformType: anim.TransformRotate, From: "0", To: "360", Dur: 2,
	}
}

func TestRotateState(t *testing.T) {
	ds := []anim.Description{spin()}

	st := CalculateElementState(gear, ds, 1)
	assert.InDelta(t, 180, st.Transform.Rotate, 0.5)
	assert.Equal(t, []string{"spin"}, st.Active)

	st = CalculateElementState(gear, ds, 2)
	assert.InDelta(t, 360, st.Transform.Rotate, 0.5, "end of the active interval is inclusive")

	st = CalculateElementState(gear, ds, 3)
	assert.Zero(t, st.Transform.Rotate, "fill=remove drops the transform afterwards")
	assert.Empty(t, st.Active)
}

func TestFillAndRevert(t *testing.T) {
	fade := anim.Description{ID: "fade", Kind: anim.KindAnimate, Target: "gear", AttributeName: "opacity", From: "0", To: "1", Dur: 1}

	assert.Equal(t, "0.5", CalculateElementState(gear, []anim.Description{fade}, 2).Attr("opacity"))
	assert.Equal(t, "0", CalculateElementState(gear, []anim.Description{fade}, 0).Attr("opacity"))

	fade.Begin = anim.At(0.5)
	assert.Equal(t, "0.5", CalculateElementState(gear, []anim.Description{fade}, 0.25).Attr("opacity"), "static value before begin")
	assert.Equal(t, "0.75", CalculateElementState(gear, []anim.Description{fade}, 1.25).Attr("opacity"))

	fade.Fill = anim.FillFreeze
	assert.Equal(t, "1", CalculateElementState(gear, []anim.Description{fade}, 5).Attr("opacity"))
}

func TestSampleModes(t *testing.T) {
	tests := []struct {
		name string
		d    anim.Description
		p    float64
		want string
	}{
		{"from to", anim.Description{From: "0 0", To: "10 20"}, 0.5, "5 10"},
		{"to only from base", anim.Description{To: "10"}, 0.5, "7.5"},
		{"by", anim.Description{From: "2", By: "4"}, 0.5, "4"},
		{"values", anim.Description{Values: []string{"0", "10", "30"}}, 0.75, "20"},
		{"key times", anim.Description{Values: []string{"0", "10", "30"}, KeyTimes: []float64{0, 0.8, 1}}, 0.9, "20"},
		{"discrete", anim.Description{CalcMode: anim.CalcDiscrete, Values: []string{"a", "b", "c"}}, 0.5, "b"},
		{"discrete key times", anim.Description{CalcMode: anim.CalcDiscrete, Values: []string{"a", "b", "c"}, KeyTimes: []float64{0, 0.9, 1}}, 0.5, "a"},
		{"paced", anim.Description{CalcMode: anim.CalcPaced, Values: []string{"0", "10", "30"}}, 0.5, "15"},
		{"color", anim.Description{From: "red", To: "blue"}, 0.5, "#800080"},
		{"hex color", anim.Description{From: "#000", To: "#ffffff"}, 1, "#ffffff"},
		{"rgb color", anim.Description{From: "rgb(0, 0, 0)", To: "rgb(100%, 0%, 0%)"}, 0.5, "#800000"},
		{"strings switch halfway", anim.Description{From: "visible", To: "hidden"}, 0.4, "visible"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.d.Kind = anim.KindAnimate
			got, ok := sample(&tt.d, tt.p, "5")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplineEase(t *testing.T) {
	ease := anim.Spline{0.42, 0, 0.58, 1}
	assert.InDelta(t, 0.5, splineEase(ease, 0.5), 1e-6)
	assert.Less(t, splineEase(ease, 0.25), 0.25)
	assert.Greater(t, splineEase(ease, 0.75), 0.75)
	assert.Equal(t, 0.0, splineEase(ease, 0))
	assert.Equal(t, 1.0, splineEase(ease, 1))

	d := anim.Description{Kind: anim.KindAnimate, CalcMode: anim.CalcSpline, Values: []string{"0", "100"}, KeySplines: []anim.Spline{{0, 0, 1, 1}}}
	v, ok := sample(&d, 0.3, "")
	require.True(t, ok)
	n, ok := anim.ParseNumbers(v)
	require.True(t, ok)
	assert.InDelta(t, 30, n[0], 1e-4)
}

func TestTransformsAccumulate(t *testing.T) {
	ds := []anim.Description{
		{ID: "a", Kind: anim.KindTransform, Target: "gear", TransformType: anim.TransformScale, From: "2", To: "2", Dur: 1},
		{ID: "b", Kind: anim.KindTransform, Target: "gear", TransformType: anim.TransformScale, From: "3 1", To: "3 1", Dur: 1},
		{ID: "c", Kind: anim.KindTransform, Target: "gear", TransformType: anim.TransformTranslate, From: "0 0", To: "10 20", Dur: 1},
		{ID: "d", Kind: anim.KindTransform, Target: "gear", TransformType: anim.TransformTranslate, From: "5", To: "5", Dur: 1},
		{ID: "e", Kind: anim.KindTransform, Target: "gear", TransformType: anim.TransformSkewX, From: "10", To: "10", Dur: 1},
		{ID: "other", Kind: anim.KindTransform, Target: "box", TransformType: anim.TransformRotate, From: "90", To: "90", Dur: 1},
	}
	st := CalculateElementState(gear, ds, 1)
	assert.Equal(t, 6.0, st.Transform.ScaleX)
	assert.Equal(t, 2.0, st.Transform.ScaleY)
	assert.Equal(t, 15.0, st.Transform.TranslateX)
	assert.Equal(t, 20.0, st.Transform.TranslateY)
	assert.Equal(t, 10.0, st.Transform.SkewX)
	assert.Zero(t, st.Transform.Rotate)
	assert.Equal(t, "translate(15 20) scale(6 2) skewX(10)", st.Transform.String())
}

func TestRepeatAndAccumulate(t *testing.T) {
	d := spin()
	d.Dur = 1
	d.Repeat = anim.Times(3)
	d.Accumulate = true
	st := CalculateElementState(gear, []anim.Description{d}, 1.5)
	assert.InDelta(t, 540, st.Transform.Rotate, 1e-9)

	d.Accumulate = false
	st = CalculateElementState(gear, []anim.Description{d}, 1.5)
	assert.InDelta(t, 180, st.Transform.Rotate, 1e-9)

	// a fractional repeat count freezes mid-cycle
	d.Repeat = anim.Times(1.5)
	d.Fill = anim.FillFreeze
	st = CalculateElementState(gear, []anim.Description{d}, 10)
	assert.InDelta(t, 180, st.Transform.Rotate, 1e-9)

	d.Repeat = anim.RepeatForever
	st = CalculateElementState(gear, []anim.Description{d}, 100.25)
	assert.InDelta(t, 90, st.Transform.Rotate, 1e-9)
}

func TestSetHoldsFromBegin(t *testing.T) {
	set := anim.Description{ID: "show", Kind: anim.KindSet, Target: "gear", AttributeName: "fill", To: "blue", Begin: anim.At(1)}
	assert.Equal(t, "red", CalculateElementState(gear, []anim.Description{set}, 0.5).Attr("fill"))
	assert.Equal(t, "blue", CalculateElementState(gear, []anim.Description{set}, 9).Attr("fill"))
}

func TestAdditiveAttribute(t *testing.T) {
	el := anim.Element{ID: "bar", Attrs: map[string]string{"width": "100"}}
	grow := anim.Description{ID: "grow", Kind: anim.KindAnimate, Target: "bar", AttributeName: "width", From: "0", To: "50", Dur: 1, Additive: true}
	assert.Equal(t, "125", CalculateElementState(el, []anim.Description{grow}, 0.5).Attr("width"))
}

func TestMotionAlongPath(t *testing.T) {
	move := anim.Description{ID: "move", Kind: anim.KindMotion, Target: "gear", Path: "M0 0 L100 0 L100 100", Dur: 2, Rotate: "auto"}
	st := CalculateElementState(gear, []anim.Description{move}, 1)
	require.NotNil(t, st.Motion)
	assert.InDelta(t, 100, st.Motion.X, 1e-9)
	assert.InDelta(t, 0, st.Motion.Y, 1e-9)

	st = CalculateElementState(gear, []anim.Description{move}, 1.5)
	assert.InDelta(t, 100, st.Motion.X, 1e-9)
	assert.InDelta(t, 50, st.Motion.Y, 1e-9)
	assert.InDelta(t, 90, st.Motion.Angle, 1e-9)

	move.Rotate = "auto-reverse"
	st = CalculateElementState(gear, []anim.Description{move}, 1.5)
	assert.InDelta(t, 270, st.Motion.Angle, 1e-9)
}

func TestMatrix(t *testing.T) {
	st := ElementState{Transform: IdentityTransform}
	assert.Equal(t, f64.Aff3{1, 0, 0, 0, 1, 0}, st.Matrix())

	st.Transform.TranslateX, st.Transform.TranslateY = 10, 20
	st.Transform.ScaleX = 2
	assert.Equal(t, f64.Aff3{2, 0, 10, 0, 1, 20}, st.Matrix())

	st = ElementState{Transform: IdentityTransform}
	st.Transform.Rotate, st.Transform.RotateCX, st.Transform.RotateCY = 90, 10, 0
	m := st.Matrix()
	// (10,0) is the pivot and stays put
	x := m[0]*10 + m[1]*0 + m[2]
	y := m[3]*10 + m[4]*0 + m[5]
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestMaxDuration(t *testing.T) {
	finite := anim.Description{ID: "a", Kind: anim.KindAnimate, Dur: 2, Repeat: anim.Times(3)}
	forever := anim.Description{ID: "b", Kind: anim.KindAnimate, Dur: 1, Repeat: anim.RepeatForever}

	assert.Equal(t, 6.0, MaxDuration([]anim.Description{finite}, zerolog.Nop()))
	assert.True(t, math.IsInf(MaxDuration([]anim.Description{finite, forever}, zerolog.Nop()), 1))
	assert.Zero(t, MaxDuration(nil, zerolog.Nop()))

	rd := anim.Description{ID: "c", Dur: 10, RepeatDur: anim.Ptr(4.0), Begin: anim.At(1)}
	assert.Equal(t, 5.0, MaxDuration([]anim.Description{rd}, zerolog.Nop()))
}

func TestChainedBegins(t *testing.T) {
	a := anim.Description{ID: "a", Dur: 2, Begin: anim.At(1)}
	b := anim.Description{ID: "b", Dur: 1, Begin: anim.After("a", 0.5)}
	c := anim.Description{ID: "c", Dur: 1, Begin: anim.After("b", 0)}
	ds := []anim.Description{c, b, a}

	assert.Equal(t, []float64{4.5, 3.5, 1}, ResolveBegins(ds, zerolog.Nop()))
	assert.Equal(t, 5.5, MaxDuration(ds, zerolog.Nop()))

	var buf bytes.Buffer
	log := zerolog.New(&buf)
	orphan := anim.Description{ID: "o", Dur: 1, Begin: anim.After("missing", 0)}
	assert.Equal(t, 3.0, MaxDuration([]anim.Description{a, orphan}, log), "an unresolved chain never plays")
	assert.Contains(t, buf.String(), "unknown animation")

	buf.Reset()
	x := anim.Description{ID: "x", Dur: 1, Begin: anim.After("y", 0)}
	y := anim.Description{ID: "y", Dur: 1, Begin: anim.After("x", 0)}
	assert.True(t, math.IsInf(MaxDuration([]anim.Description{x, y}, log), 1))
	assert.Contains(t, buf.String(), "cycle")
}

func newTestEngine(ds ...anim.Description) (*Engine, *ManualScheduler) {
	sched := NewManualScheduler(time.Unix(0, 0))
	e := NewEngine(sched, zerolog.Nop())
	e.Load([]anim.Element{gear}, ds)
	return e, sched
}

func TestEngineAutoStops(t *testing.T) {
	e, sched := newTestEngine(spin())
	var ticks []Snapshot
	e.OnTick(func(s Snapshot) { ticks = append(ticks, s) })

	e.Play()
	require.True(t, e.Playing())
	assert.Equal(t, 1, sched.Pending())

	sched.Step(16 * time.Millisecond) // first frame anchors
	assert.Zero(t, e.Time())
	sched.Step(time.Second)
	assert.InDelta(t, 1, e.Time(), 1e-9)
	assert.InDelta(t, 0.5, e.Snapshot().Progress, 1e-9)

	sched.Step(1500 * time.Millisecond)
	assert.False(t, e.Playing())
	assert.Equal(t, 2.0, e.Time(), "time clamps to the max duration")
	assert.Zero(t, sched.Pending(), "no frame outlives playback")
	assert.False(t, ticks[len(ticks)-1].Playing)

	// playing from the end restarts
	e.Play()
	assert.Zero(t, e.Time())
}

func TestEngineTickListeners(t *testing.T) {
	e, _ := newTestEngine(spin())
	var first, second int
	var remove func()
	remove = e.OnTick(func(Snapshot) {
		first++
		remove()
	})
	e.OnTick(func(Snapshot) { second++ })

	e.Seek(0.5)
	e.Seek(1)
	assert.Equal(t, 1, first, "a listener may remove itself while being notified")
	assert.Equal(t, 2, second)
}

func TestEngineNeverStopsWhenUnbounded(t *testing.T) {
	forever := spin()
	forever.Repeat = anim.RepeatForever
	finite := anim.Description{ID: "a", Kind: anim.KindAnimate, Target: "gear", AttributeName: "opacity", From: "0", To: "1", Dur: 2, Repeat: anim.Times(3)}
	e, sched := newTestEngine(finite, forever)
	assert.True(t, math.IsInf(e.MaxDuration(), 1))

	e.Play()
	sched.Step(0)
	for range 100 {
		sched.Step(time.Second)
	}
	assert.True(t, e.Playing())
	assert.InDelta(t, 100, e.Time(), 1e-6)
	assert.Zero(t, e.Snapshot().Progress)
}

func TestEngineStopCancelsFrame(t *testing.T) {
	e, sched := newTestEngine(spin())
	e.Play()
	sched.Step(0)
	sched.Step(500 * time.Millisecond)
	e.Stop()
	assert.False(t, e.Playing())
	assert.Zero(t, e.Time())
	assert.Zero(t, sched.Pending())

	e.Play()
	e.Dispose()
	assert.Zero(t, sched.Pending())
	e.Play()
	assert.False(t, e.Playing(), "a disposed engine stays stopped")
}

func TestEngineSeekAndRate(t *testing.T) {
	e, sched := newTestEngine(spin())

	e.Seek(1.5)
	assert.Equal(t, 1.5, e.Time())
	assert.False(t, e.Playing(), "seek keeps the stopped state")
	e.Seek(-1)
	assert.Zero(t, e.Time())
	e.Seek(99)
	assert.Equal(t, 2.0, e.Time())

	e.Seek(0)
	e.SetRate(2)
	e.SetRate(-1)
	e.Play()
	sched.Step(0)
	sched.Step(500 * time.Millisecond)
	assert.InDelta(t, 1, e.Time(), 1e-9)

	e.Seek(0.25)
	assert.True(t, e.Playing(), "seek keeps the playing state")
	sched.Step(100 * time.Millisecond) // re-anchor
	sched.Step(100 * time.Millisecond)
	assert.InDelta(t, 0.45, e.Time(), 1e-9)

	e.Pause()
	sched.Step(time.Second)
	assert.InDelta(t, 0.45, e.Time(), 1e-9)
}

func TestEngineStatesResolveMotionRefs(t *testing.T) {
	track := anim.Element{ID: "track", Tag: "path", Attrs: map[string]string{"d": "M0 0 L0 10"}}
	move := anim.Description{ID: "move", Kind: anim.KindMotion, Target: "gear", PathRef: "#track", Dur: 1}

	sched := NewManualScheduler(time.Unix(0, 0))
	e := NewEngine(sched, zerolog.Nop())
	e.Load([]anim.Element{gear, track}, []anim.Description{move, spin()})

	states := e.CalculateAllStates(0.5)
	require.Len(t, states, 2)
	require.NotNil(t, states["gear"].Motion)
	assert.InDelta(t, 5, states["gear"].Motion.Y, 1e-9)
	assert.InDelta(t, 90, states["gear"].Transform.Rotate, 1e-9)
	assert.Nil(t, states["track"].Motion)
}

func TestQuality(t *testing.T) {
	q, err := ParseQuality("export")
	require.NoError(t, err)
	assert.Equal(t, QualityExport, q)
	assert.Equal(t, 1.0, q.FilterResolution())
	assert.Less(t, QualityEditing.FilterResolution(), QualityPreview.FilterResolution())
	assert.Less(t, QualityEditing.UpdateRate(), QualityExport.UpdateRate())

	_, err = ParseQuality("ultra")
	assert.Error(t, err)

	var back Quality
	require.NoError(t, back.UnmarshalText([]byte(QualityPreview.String())))
	assert.Equal(t, QualityPreview, back)

	e, _ := newTestEngine(spin())
	before := e.CalculateAllStates(1)
	e.SetQuality(QualityExport)
	assert.Equal(t, QualityExport, e.Quality())
	assert.Equal(t, before, e.CalculateAllStates(1))
}
