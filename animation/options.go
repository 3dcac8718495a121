package animation

import (
	"math"
	"time"

	"github.com/matt-g-everett/ledmotion/driver"
	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/value"
)

// DefaultDuration is used by keyframe animations without a duration.
const DefaultDuration = 300 * time.Millisecond

// Options describes one animation. Generator settings (keyframes, duration,
// ease, times, velocity and physics) come from the embedded
// generator.Options.
type Options struct {
	generator.Options

	// Name is the animated property, used for acceleration and default
	// transitions.
	Name string
	Type generator.Type
	// Generator overrides Type with a custom generator.
	Generator generator.Factory

	Repeat      int
	RepeatType  RepeatType
	RepeatDelay time.Duration
	Delay       time.Duration

	// Paused creates the animation without starting it.
	Paused bool
	// StartTime pins the scheduling origin instead of the frame time the
	// animation was created in.
	StartTime *time.Duration

	Driver  driver.Driver
	Subject Subject
	Host    Host

	OnUpdate   func(value.Value)
	OnPlay     func()
	OnComplete func()
	OnStop     func()

	// sampler skips the can-animate check for internal sampling animations.
	sampler bool
}

func (o Options) alternate() bool {
	return o.RepeatType == RepeatReverse || o.RepeatType == RepeatMirror
}

func (o Options) isSpring() bool {
	return o.Generator == nil && o.Type == generator.TypeSpring
}

func (o Options) factory() (generator.Factory, error) {
	if o.Generator != nil {
		return o.Generator, nil
	}
	return generator.Lookup(o.Type)
}

// iterations is what a host timeline plays.
func (o Options) iterations() float64 {
	if o.Repeat == Infinite {
		return math.Inf(1)
	}
	return float64(o.Repeat + 1)
}

// Pregenerate tunes the sampling used to turn unsupported animations into
// linear keyframes for a host timeline.
type Pregenerate struct {
	SampleDelta time.Duration
	MaxDuration time.Duration
}

const (
	defaultSampleDelta = 10 * time.Millisecond
	// maxPregenerate bounds pregeneration however it is configured.
	maxPregenerate = 20 * time.Second
)

func (p Pregenerate) withDefaults() Pregenerate {
	if p.SampleDelta <= 0 {
		p.SampleDelta = defaultSampleDelta
	}
	if p.MaxDuration <= 0 || p.MaxDuration > maxPregenerate {
		p.MaxDuration = maxPregenerate
	}
	return p
}

// Config holds engine-wide settings.
type Config struct {
	// SkipAnimations makes Animate write the final keyframe immediately.
	SkipAnimations bool
	Pregenerate    Pregenerate
}

func isTransitionDefined(o Options) bool {
	return o.Type != "" || o.Generator != nil || o.Duration != 0 || len(o.Ease) > 0 ||
		o.Stiffness != 0 || o.Damping != nil || o.VisualDuration != 0
}

// DefaultTransition fills in the timing Animate uses when none is given.
// Transforms get a bouncy spring, scales a critically damped one, keyframe
// lists longer than two a 0.8s tween, and everything else a 0.3s ease out.
func DefaultTransition(o Options) Options {
	if isTransitionDefined(o) {
		return o
	}
	switch o.Name {
	case "x", "y", "z", "rotate", "rotateX", "rotateY", "rotateZ":
		o.Type = generator.TypeSpring
		o.Stiffness = 500
		o.Damping = ptr(25)
		o.RestSpeed = 10
		return o
	case "scale", "scaleX", "scaleY":
		o.Type = generator.TypeSpring
		o.Stiffness = 550
		damping := 30.0
		if n := len(o.Keyframes); n > 0 && o.Keyframes[n-1].IsNumber() && o.Keyframes[n-1].Float() == 0 {
			damping = 2 * math.Sqrt(550)
		}
		o.Damping = &damping
		o.RestSpeed = 10
		return o
	}
	o.Type = generator.TypeKeyframes
	if len(o.Keyframes) > 2 {
		o.Duration = 800 * time.Millisecond
		return o
	}
	o.Duration = 300 * time.Millisecond
	o.Ease = easing.List{easing.Bezier(0.25, 0.1, 0.35, 1)}
	return o
}

func ptr(f float64) *float64 { return &f }
