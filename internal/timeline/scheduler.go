package timeline

import (
	"slices"
	"sync"
	"time"
)

// FrameID identifies a pending frame callback; 0 is never issued
type FrameID uint64

// Scheduler is the rendering-frame clock. A requested callback runs once on
// the next frame; cancelling a pending id guarantees it will not run.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

type frameQueue struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]func(time.Time)
}

func (q *frameQueue) request(fn func(time.Time)) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[FrameID]func(time.Time))
	}
	q.next++
	q.pending[q.next] = fn
	return q.next
}

func (q *frameQueue) cancel(id FrameID) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

// take removes and returns the callbacks due this frame, oldest first
func (q *frameQueue) take() []func(time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	ids := make([]FrameID, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(time.Time), len(ids))
	for i, id := range ids {
		out[i] = q.pending[id]
		delete(q.pending, id)
	}
	return out
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// TickerScheduler drives frames from a time.Ticker on its own goroutine
type TickerScheduler struct {
	q    frameQueue
	stop chan struct{}
	once sync.Once
}

// NewTickerScheduler starts a ticker at fps frames per second
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	s := &TickerScheduler{stop: make(chan struct{})}
	go s.run(time.Second / time.Duration(fps))
	return s
}

func (s *TickerScheduler) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			for _, fn := range s.q.take() {
				fn(now)
			}
		}
	}
}

func (s *TickerScheduler) RequestFrame(fn func(time.Time)) FrameID { return s.q.request(fn) }

func (s *TickerScheduler) CancelFrame(id FrameID) { s.q.cancel(id) }

// Close stops the ticker goroutine; pending callbacks are dropped
func (s *TickerScheduler) Close() {
	s.once.Do(func() { close(s.stop) })
}

// ManualScheduler runs frames only when stepped, for tests and offline export
type ManualScheduler struct {
	q   frameQueue
	now time.Time
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (s *ManualScheduler) RequestFrame(fn func(time.Time)) FrameID { return s.q.request(fn) }

func (s *ManualScheduler) CancelFrame(id FrameID) { s.q.cancel(id) }

// Step advances the clock by d and runs the callbacks pending before the
// step. Callbacks requested while stepping wait for the next step.
func (s *ManualScheduler) Step(d time.Duration) {
	s.now = s.now.Add(d)
	for _, fn := range s.q.take() {
		fn(s.now)
	}
}

// Pending is the number of callbacks waiting for the next frame
func (s *ManualScheduler) Pending() int { return s.q.len() }

func (s *ManualScheduler) Now() time.Time { return s.now }
