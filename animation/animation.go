// Package animation runs keyframe, spring and inertia animations against a
// subject value.
//
// Every animation is a Handle. The Engine picks one of two animators when the
// animation is created. MainThread samples its generator on every driver tick
// and writes each value to the subject. Accelerated hands the keyframes to a
// Host timeline (an LED controller, for example) and only touches the subject
// when it finishes or is interrupted. Keyframes the host cannot play natively
// are pregenerated by sampling a MainThread animation.
package animation

import (
	"errors"
	"time"

	"github.com/matt-g-everett/ledmotion/value"
)

// ErrSubjectDetached is reported by Err when the subject lost its owner
// before accelerated playback could start.
var ErrSubjectDetached = errors.New("animation: subject is detached from its owner")

// State is the playback state of a handle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// RepeatType decides how repeats are played.
type RepeatType string

const (
	RepeatLoop    RepeatType = "loop"
	RepeatReverse RepeatType = "reverse"
	RepeatMirror  RepeatType = "mirror"
)

// Infinite repeats an animation forever.
const Infinite = -1

// Handle controls a running animation.
type Handle interface {
	Play()
	Pause()
	// Stop interrupts the animation, leaving the subject at its current value
	// and velocity. A stopped handle reports StateIdle and ignores Play and
	// Cancel.
	Stop()
	// Cancel discards the animation.
	Cancel()
	// Complete jumps to the end.
	Complete()

	Time() time.Duration
	SetTime(t time.Duration)
	Speed() float64
	SetSpeed(speed float64)
	Duration() time.Duration
	State() State

	// Finished returns a channel closed when the animation finishes. After
	// it has finished the channel is already closed; playing again makes a
	// new one.
	Finished() <-chan struct{}

	// AttachTimeline makes playback follow an external timeline.
	AttachTimeline(tl Timeline)

	// Err reports why the animation failed to start.
	Err() error
}

// Timeline is an external clock reporting progress in [0, 1].
type Timeline interface {
	Progress() float64
}

// Subject is the value an animation writes to.
type Subject interface {
	Get() value.Value
	Set(v value.Value)
}

// VelocitySetter is implemented by subjects that track velocity. Stop on an
// accelerated animation writes two samples delta apart through it.
type VelocitySetter interface {
	SetWithVelocity(prev, current value.Value, delta time.Duration)
}

// VelocityReader is implemented by subjects that report their velocity in
// units per second.
type VelocityReader interface {
	Velocity() float64
}

// Owned is implemented by subjects attached to a render target.
type Owned interface {
	Owner() Owner
}

// Owner describes the render target behind a subject.
type Owner interface {
	HasLiveOwner() bool
	SupportsAcceleratedProperty(name string) bool
	HasUpdateObserver() bool
}

// Starter is implemented by subjects that allow one animation at a time.
// Start stops the running animation, then calls start and keeps the result.
type Starter interface {
	Start(start func() Handle) Handle
}

func ownerOf(s Subject) Owner {
	if o, ok := s.(Owned); ok {
		return o.Owner()
	}
	return nil
}
