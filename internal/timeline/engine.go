// Package timeline computes the interpolated state of animated elements at
// any time and drives playback over a frame scheduler.
package timeline

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/svganim/internal/anim"
)

// Snapshot is the transport state at one moment
type Snapshot struct {
	Time     float64
	Duration float64 // max duration, +Inf when unbounded
	Progress float64 // Time/Duration, 0 when unbounded
	Playing  bool
	Rate     float64
}

// Engine is the playback transport. Each frame computes the elapsed time
// and requests the next frame unless playback stopped; stopping cancels the
// pending frame.
type Engine struct {
	mu    sync.Mutex
	sched Scheduler
	log   zerolog.Logger

	elements []anim.Element
	descs    []anim.Description
	maxDur   float64

	time    float64
	playing bool
	rate    float64
	quality Quality

	anchor     time.Time // frame time the current run is measured from
	anchorTime float64   // engine time at anchor
	frame      FrameID
	gen        uint64 // bumped on every stop so stale frames are ignored
	disposed   bool

	listeners []func(Snapshot)
}

func NewEngine(sched Scheduler, log zerolog.Logger) *Engine {
	return &Engine{
		sched: sched,
		log:   log.With().Str("component", "timeline").Logger(),
		rate:  1,
	}
}

// Load replaces the document the engine plays and recomputes the max duration
func (e *Engine) Load(elements []anim.Element, ds []anim.Description) {
	e.mu.Lock()
	e.elements = append([]anim.Element(nil), elements...)
	e.descs = make([]anim.Description, len(ds))
	for i := range ds {
		e.descs[i] = ds[i].Clone()
	}
	e.maxDur = MaxDuration(e.descs, e.log)
	if !math.IsInf(e.maxDur, 1) && e.time > e.maxDur {
		e.time = e.maxDur
	}
	maxDur := e.maxDur
	e.mu.Unlock()

	e.log.Debug().
		Int("elements", len(elements)).
		Int("animations", len(ds)).
		Float64("max_duration", maxDur).
		Msg("document loaded")
}

// Play starts or resumes playback. Playing from the end restarts at 0.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.disposed || e.playing {
		e.mu.Unlock()
		return
	}
	if !math.IsInf(e.maxDur, 1) && e.time >= e.maxDur {
		e.time = 0
	}
	e.playing = true
	e.anchor = time.Time{}
	e.schedule()
	snap := e.snapshot()
	e.mu.Unlock()
	e.notify(snap)
}

// Pause halts playback and keeps the current time
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.halt()
	snap := e.snapshot()
	e.mu.Unlock()
	e.notify(snap)
}

// Stop halts playback and rewinds to 0
func (e *Engine) Stop() {
	e.mu.Lock()
	e.halt()
	e.time = 0
	snap := e.snapshot()
	e.mu.Unlock()
	e.notify(snap)
}

// Seek sets the time without changing play/pause status
func (e *Engine) Seek(t float64) {
	e.mu.Lock()
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if !math.IsInf(e.maxDur, 1) && t > e.maxDur {
		t = e.maxDur
	}
	e.time = t
	e.anchor = time.Time{}
	snap := e.snapshot()
	e.mu.Unlock()
	e.notify(snap)
}

// SetRate changes the playback rate; non-positive rates are ignored
func (e *Engine) SetRate(r float64) {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		e.log.Warn().Float64("rate", r).Msg("invalid playback rate ignored")
		return
	}
	e.mu.Lock()
	e.rate = r
	e.anchor = time.Time{}
	e.mu.Unlock()
}

func (e *Engine) SetQuality(q Quality) {
	e.mu.Lock()
	e.quality = q
	e.mu.Unlock()
	e.log.Debug().Stringer("quality", q).Float64("filter_resolution", q.FilterResolution()).Int("fps", q.UpdateRate()).Msg("quality changed")
}

func (e *Engine) Quality() Quality {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quality
}

func (e *Engine) Time() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.time
}

func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *Engine) MaxDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxDur
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// OnTick registers fn to run after every time change. The returned func
// removes it.
func (e *Engine) OnTick(fn func(Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
	idx := len(e.listeners) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if idx < len(e.listeners) {
			e.listeners[idx] = nil
		}
	}
}

// Dispose stops playback for good and drops the listeners
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.halt()
	e.disposed = true
	e.listeners = nil
}

// CalculateAllStates computes the state of every loaded element at t,
// keyed by element id
func (e *Engine) CalculateAllStates(t float64) map[string]ElementState {
	e.mu.Lock()
	elements, descs := e.elements, e.descs
	e.mu.Unlock()

	byID := make(map[string]*anim.Element, len(elements))
	for i := range elements {
		byID[elements[i].ID] = &elements[i]
	}
	c := calculator{
		begins: beginsByDescription(descs, e.log),
		log:    e.log,
		paths: func(id string) (string, bool) {
			el, ok := byID[id]
			if !ok {
				return "", false
			}
			d := el.Attr("d")
			return d, d != ""
		},
	}
	out := make(map[string]ElementState, len(elements))
	for _, el := range elements {
		out[el.ID] = c.element(el, descs, t)
	}
	return out
}

// CurrentStates is CalculateAllStates at the engine time
func (e *Engine) CurrentStates() map[string]ElementState {
	return e.CalculateAllStates(e.Time())
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{Time: e.time, Duration: e.maxDur, Playing: e.playing, Rate: e.rate}
	if e.maxDur > 0 && !math.IsInf(e.maxDur, 1) {
		s.Progress = e.time / e.maxDur
	}
	return s
}

// halt cancels the pending frame; callers hold mu
func (e *Engine) halt() {
	e.playing = false
	e.gen++
	if e.frame != 0 {
		e.sched.CancelFrame(e.frame)
		e.frame = 0
	}
}

// schedule requests the next frame; callers hold mu
func (e *Engine) schedule() {
	gen := e.gen
	e.frame = e.sched.RequestFrame(func(now time.Time) { e.tick(gen, now) })
}

func (e *Engine) tick(gen uint64, now time.Time) {
	e.mu.Lock()
	if gen != e.gen || !e.playing || e.disposed {
		e.mu.Unlock()
		return
	}
	e.frame = 0
	if e.anchor.IsZero() {
		e.anchor, e.anchorTime = now, e.time
	}
	elapsed := e.anchorTime + now.Sub(e.anchor).Seconds()*e.rate

	finished := !math.IsInf(e.maxDur, 1) && elapsed >= e.maxDur
	if finished {
		e.time = e.maxDur
		e.playing = false
		e.gen++
	} else {
		e.time = elapsed
		e.schedule()
	}
	snap := e.snapshot()
	e.mu.Unlock()

	if finished {
		e.log.Debug().Float64("time", snap.Time).Msg("playback finished")
	}
	e.notify(snap)
}

func (e *Engine) notify(s Snapshot) {
	e.mu.Lock()
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()
	for _, fn := range listeners {
		if fn != nil {
			fn(s)
		}
	}
}
