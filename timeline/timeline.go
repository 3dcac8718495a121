// Package timeline is an in-process host timeline. Playbacks keep their own
// clock on the frame loop, report completion, and record what they were
// asked to play, which makes the package both a reference host and the
// clock behind remote hosts such as LED devices.
package timeline

import (
	"sync"
	"time"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/value"
)

// Host creates playbacks on a frame loop.
type Host struct {
	loop         *frameloop.Loop
	linearEasing bool

	mu        sync.Mutex
	playbacks []*Playback
}

// NewHost returns a host. linearEasing reports whether its timelines accept
// linear() easing points.
func NewHost(loop *frameloop.Loop, linearEasing bool) *Host {
	h := new(Host)
	h.loop = loop
	h.linearEasing = linearEasing
	return h
}

func (h *Host) SupportsLinearEasing() bool { return h.linearEasing }

// Create starts a playback running from the current frame.
func (h *Host) Create(owner animation.Owner, property string, keyframes []value.Value, timing animation.Timing) (animation.Playback, error) {
	return h.NewPlayback(property, keyframes, timing), nil
}

// NewPlayback is Create returning the concrete type.
func (h *Host) NewPlayback(property string, keyframes []value.Value, timing animation.Timing) *Playback {
	p := new(Playback)
	p.loop = h.loop
	p.Property = property
	p.Keyframes = keyframes
	p.Timing = timing
	p.rate = 1
	p.start = h.loop.Now()
	p.state = animation.StateRunning
	p.watch()

	h.mu.Lock()
	h.playbacks = append(h.playbacks, p)
	h.mu.Unlock()
	return p
}

// Playbacks lists every playback created, oldest first.
func (h *Host) Playbacks() []*Playback {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Playback(nil), h.playbacks...)
}

// Playback is a clocked timeline. Its current time runs from the start time
// at the playback rate, is held while paused, and finishes at the end of the
// delay plus every iteration.
type Playback struct {
	Property  string
	Keyframes []value.Value
	Timing    animation.Timing

	loop     *frameloop.Loop
	state    animation.State
	start    time.Duration
	hold     time.Duration
	hasHold  bool
	rate     float64
	onFinish func()
	timeline animation.Timeline
	job      *frameloop.Job
}

// End is when the playback finishes. It is false for infinite playbacks.
func (p *Playback) End() (time.Duration, bool) {
	active, ok := p.Timing.ActiveDuration()
	if !ok {
		return 0, false
	}
	return p.Timing.Delay + active, true
}

func (p *Playback) CurrentTime() time.Duration {
	if p.hasHold {
		return p.hold
	}
	if p.state == animation.StateIdle {
		return 0
	}
	return time.Duration(float64(p.loop.Now()-p.start) * p.rate)
}

func (p *Playback) SetCurrentTime(t time.Duration) {
	if p.state == animation.StateFinished {
		if end, ok := p.End(); !ok || t < end {
			p.state = animation.StateRunning
			p.watch()
		}
	}
	if p.hasHold || p.state != animation.StateRunning || p.rate == 0 {
		p.hold = t
		p.hasHold = true
		return
	}
	p.start = p.loop.Now() - time.Duration(float64(t)/p.rate)
}

func (p *Playback) PlaybackRate() float64 { return p.rate }

func (p *Playback) SetPlaybackRate(rate float64) {
	current := p.CurrentTime()
	p.rate = rate
	p.SetCurrentTime(current)
}

func (p *Playback) SetStartTime(t time.Duration) {
	p.start = t
	p.hasHold = false
	if p.state != animation.StateRunning {
		p.state = animation.StateRunning
		p.watch()
	}
}

func (p *Playback) Play() {
	current := p.CurrentTime()
	end, finite := p.End()
	switch {
	case p.state == animation.StateIdle:
		current = 0
	case p.state == animation.StateFinished && finite && p.rate >= 0 && current >= end:
		current = 0
	case p.state == animation.StateFinished && p.rate < 0 && current <= 0 && finite:
		current = end
	}
	p.state = animation.StateRunning
	p.hasHold = false
	if p.rate != 0 {
		p.start = p.loop.Now() - time.Duration(float64(current)/p.rate)
	} else {
		p.hold = current
		p.hasHold = true
	}
	p.watch()
}

func (p *Playback) Pause() {
	if p.state == animation.StateIdle {
		return
	}
	p.hold = p.CurrentTime()
	p.hasHold = true
	p.state = animation.StatePaused
}

func (p *Playback) Cancel() {
	p.state = animation.StateIdle
	p.hasHold = false
	p.unwatch()
}

// Finish jumps to the end and reports completion. Infinite playbacks cannot
// finish.
func (p *Playback) Finish() {
	end, ok := p.End()
	if !ok {
		return
	}
	if p.rate < 0 {
		end = 0
	}
	p.complete(end)
}

func (p *Playback) complete(at time.Duration) {
	p.hold = at
	p.hasHold = true
	p.state = animation.StateFinished
	p.unwatch()
	if p.onFinish != nil && p.timeline == nil {
		p.onFinish()
	}
}

func (p *Playback) PlayState() animation.State { return p.state }

func (p *Playback) OnFinish(fn func()) { p.onFinish = fn }

// AttachTimeline drives the current time from tl's progress across the
// active duration. Attached playbacks never finish on their own.
func (p *Playback) AttachTimeline(tl animation.Timeline) {
	p.timeline = tl
	p.state = animation.StateRunning
	p.watch()
}

// Progress is the position within the current iteration, in [0, 1].
func (p *Playback) Progress() float64 {
	d := p.Timing.Duration
	t := p.CurrentTime() - p.Timing.Delay
	if t <= 0 || d <= 0 {
		if t > 0 {
			return 1
		}
		return 0
	}
	if end, ok := p.End(); ok && p.CurrentTime() >= end {
		return 1
	}
	iteration := t / d
	progress := float64(t%d) / float64(d)
	if p.Timing.Direction == animation.DirectionAlternate && iteration%2 == 1 {
		progress = 1 - progress
	}
	return progress
}

func (p *Playback) watch() {
	if p.job != nil {
		return
	}
	p.job = p.loop.Schedule(frameloop.Update, func(frameloop.FrameData) { p.tick() }, true)
}

func (p *Playback) unwatch() {
	if p.job != nil {
		p.loop.Cancel(p.job)
		p.job = nil
	}
}

func (p *Playback) tick() {
	if p.timeline != nil {
		active, ok := p.Timing.ActiveDuration()
		if !ok {
			active = p.Timing.Duration
		}
		p.hold = p.Timing.Delay + time.Duration(p.timeline.Progress()*float64(active))
		p.hasHold = true
		return
	}
	if p.state != animation.StateRunning {
		return
	}
	end, ok := p.End()
	if !ok {
		return
	}
	current := p.CurrentTime()
	if p.rate > 0 && current >= end {
		p.complete(end)
	} else if p.rate < 0 && current <= 0 {
		p.complete(0)
	}
}
