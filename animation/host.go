package animation

import (
	"time"

	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/value"
)

// Direction is a timeline's playback direction across iterations.
type Direction string

const (
	DirectionNormal    Direction = "normal"
	DirectionAlternate Direction = "alternate"
)

// Timing is what a host timeline needs to play keyframes. Ease only holds
// native definitions: "linear", cubic-bezier or linear() points.
type Timing struct {
	Delay      time.Duration `json:"delay"`
	Duration   time.Duration `json:"duration"`
	Ease       easing.List   `json:"-"`
	Times      []float64     `json:"times,omitempty"`
	Iterations float64       `json:"iterations"`
	Direction  Direction     `json:"direction"`
}

// ActiveDuration is the length of every iteration after the delay. It is
// false when iterations are unbounded.
func (t Timing) ActiveDuration() (time.Duration, bool) {
	if t.Iterations <= 0 || t.Iterations > 1e9 {
		return 0, false
	}
	return time.Duration(float64(t.Duration) * t.Iterations), true
}

// Host creates timelines that play keyframes without per-frame help.
type Host interface {
	Create(owner Owner, property string, keyframes []value.Value, timing Timing) (Playback, error)
	SupportsLinearEasing() bool
}

// Playback is a host timeline. Times include the delay.
type Playback interface {
	Play()
	Pause()
	Cancel()
	Finish()
	CurrentTime() time.Duration
	SetCurrentTime(t time.Duration)
	PlaybackRate() float64
	SetPlaybackRate(rate float64)
	SetStartTime(t time.Duration)
	PlayState() State
	// OnFinish registers the callback for natural completion.
	OnFinish(fn func())
	AttachTimeline(tl Timeline)
}
