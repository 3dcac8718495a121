package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/value"
)

func newPlayback(timing animation.Timing) (*frameloop.Loop, *Playback) {
	loop := frameloop.NewManual()
	h := NewHost(loop, true)
	return loop, h.NewPlayback("x", value.Numbers(0, 1), timing)
}

func TestPlaybackFinishes(t *testing.T) {
	loop, p := newPlayback(animation.Timing{Delay: 100 * time.Millisecond, Duration: 200 * time.Millisecond, Iterations: 2})
	finished := 0
	p.OnFinish(func() { finished++ })

	end, ok := p.End()
	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, end)

	loop.Process(400 * time.Millisecond)
	assert.Equal(t, animation.StateRunning, p.PlayState())
	assert.Equal(t, 400*time.Millisecond, p.CurrentTime())

	loop.Process(500 * time.Millisecond)
	assert.Equal(t, animation.StateFinished, p.PlayState())
	assert.Equal(t, 1, finished)
	assert.Equal(t, 500*time.Millisecond, p.CurrentTime())

	loop.Process(600 * time.Millisecond)
	assert.Equal(t, 1, finished)
	assert.False(t, loop.Pending())
}

func TestPlaybackInfinite(t *testing.T) {
	loop, p := newPlayback(animation.Timing{Duration: 100 * time.Millisecond, Iterations: math.Inf(1)})
	_, ok := p.End()
	assert.False(t, ok)

	loop.Process(10 * time.Second)
	assert.Equal(t, animation.StateRunning, p.PlayState())
	p.Finish()
	assert.Equal(t, animation.StateRunning, p.PlayState())
}

func TestPlaybackPauseAndPlay(t *testing.T) {
	loop, p := newPlayback(animation.Timing{Duration: time.Second, Iterations: 1})
	loop.Process(300 * time.Millisecond)
	p.Pause()
	loop.Process(600 * time.Millisecond)
	assert.Equal(t, animation.StatePaused, p.PlayState())
	assert.Equal(t, 300*time.Millisecond, p.CurrentTime())

	p.Play()
	loop.Process(700 * time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, p.CurrentTime())
}

func TestPlaybackRate(t *testing.T) {
	loop, p := newPlayback(animation.Timing{Duration: time.Second, Iterations: 1})
	loop.Process(200 * time.Millisecond)
	p.SetPlaybackRate(2)
	loop.Process(300 * time.Millisecond)
	assert.Equal(t, 400*time.Millisecond, p.CurrentTime())

	p.SetCurrentTime(900 * time.Millisecond)
	loop.Process(350 * time.Millisecond)
	assert.Equal(t, animation.StateFinished, p.PlayState())
}

func TestPlaybackReplay(t *testing.T) {
	loop, p := newPlayback(animation.Timing{Duration: 100 * time.Millisecond, Iterations: 1})
	loop.Process(100 * time.Millisecond)
	assert.Equal(t, animation.StateFinished, p.PlayState())

	p.Play()
	assert.Equal(t, animation.StateRunning, p.PlayState())
	assert.Equal(t, time.Duration(0), p.CurrentTime())
	loop.Process(150 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, p.CurrentTime())
}

func TestPlaybackCancel(t *testing.T) {
	loop, p := newPlayback(animation.Timing{Duration: time.Second, Iterations: 1})
	loop.Process(100 * time.Millisecond)
	p.Cancel()
	assert.Equal(t, animation.StateIdle, p.PlayState())
	assert.Equal(t, time.Duration(0), p.CurrentTime())
	assert.False(t, loop.Pending())
}

func TestPlaybackProgress(t *testing.T) {
	loop, p := newPlayback(animation.Timing{
		Delay:      100 * time.Millisecond,
		Duration:   200 * time.Millisecond,
		Iterations: 2,
		Direction:  animation.DirectionAlternate,
	})
	loop.Process(50 * time.Millisecond)
	assert.Equal(t, 0.0, p.Progress())
	loop.Process(150 * time.Millisecond)
	assert.InDelta(t, 0.25, p.Progress(), 1e-9)
	loop.Process(350 * time.Millisecond)
	assert.InDelta(t, 0.75, p.Progress(), 1e-9)
	loop.Process(500 * time.Millisecond)
	assert.Equal(t, 1.0, p.Progress())
}

type fixed float64

func (f fixed) Progress() float64 { return float64(f) }

func TestPlaybackTimeline(t *testing.T) {
	loop, p := newPlayback(animation.Timing{Duration: time.Second, Iterations: 1})
	finished := false
	p.OnFinish(func() { finished = true })
	p.AttachTimeline(fixed(1))
	loop.Process(2 * time.Second)

	assert.Equal(t, time.Second, p.CurrentTime())
	p.Finish()
	assert.False(t, finished)
}

func TestHostRecordsPlaybacks(t *testing.T) {
	loop := frameloop.NewManual()
	h := NewHost(loop, false)
	assert.False(t, h.SupportsLinearEasing())

	pb, err := h.Create(nil, "color", value.Strings("#000", "#fff"), animation.Timing{Duration: time.Second, Iterations: 1})
	assert.NoError(t, err)
	assert.Len(t, h.Playbacks(), 1)
	assert.Same(t, pb, h.Playbacks()[0])
}
