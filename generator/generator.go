// Package generator produces values over time for a keyframe list: eased
// keyframe tweens, springs and inertia.
//
// Generators are sampled by elapsed time. Keyframes and spring generators are
// pure functions of t; the inertia generator is too, because its boundary
// crossing is solved analytically rather than detected frame by frame.
package generator

import (
	"fmt"
	"math"
	"time"

	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/value"
)

// State is a generator sample.
type State struct {
	Value value.Value
	Done  bool
}

// Generator samples a value at elapsed time t.
type Generator interface {
	Next(t time.Duration) State
	// CalculatedDuration returns the generator's duration when it is known
	// up front.
	CalculatedDuration() (time.Duration, bool)
}

// Options configures every generator type. Fields that a type does not use
// are ignored.
type Options struct {
	Keyframes []value.Value
	Duration  time.Duration
	Ease      easing.List
	Times     []float64

	// Velocity is the initial velocity in units per second.
	Velocity float64

	Stiffness      float64
	Damping        *float64
	Mass           float64
	Bounce         float64
	VisualDuration time.Duration
	RestSpeed      float64
	RestDelta      float64

	Power           float64
	TimeConstant    time.Duration
	BounceStiffness float64
	BounceDamping   float64
	Min             *float64
	Max             *float64
	ModifyTarget    func(float64) float64
}

// Factory builds a generator from options.
type Factory func(opts Options) (Generator, error)

// Type names a built-in generator.
type Type string

const (
	TypeKeyframes Type = "keyframes"
	TypeTween     Type = "tween"
	TypeSpring    Type = "spring"
	TypeInertia   Type = "inertia"
)

// Lookup returns the factory for a built-in type. The empty type is a
// keyframes tween.
func Lookup(t Type) (Factory, error) {
	switch t {
	case "", TypeKeyframes, TypeTween:
		return NewKeyframes, nil
	case TypeSpring:
		return NewSpring, nil
	case TypeInertia:
		return NewInertia, nil
	}
	return nil, fmt.Errorf("generator: unknown type %q", t)
}

// MaxDuration bounds the sampling used to measure generators without a known
// duration.
const MaxDuration = 20 * time.Second

// Infinite marks a duration that never ends.
const Infinite = time.Duration(math.MaxInt64)

const durationStep = 50 * time.Millisecond

// CalcDuration returns g's duration, sampling every 50ms when it is not known
// up front. Generators still running at MaxDuration are Infinite.
func CalcDuration(g Generator) time.Duration {
	if d, ok := g.CalculatedDuration(); ok {
		return d
	}
	var t time.Duration
	state := g.Next(t)
	for !state.Done && t < MaxDuration {
		t += durationStep
		state = g.Next(t)
	}
	if t >= MaxDuration {
		return Infinite
	}
	return t
}

func numeric(kind string, keyframes []value.Value) (origin, target float64, err error) {
	if len(keyframes) == 0 {
		return 0, 0, fmt.Errorf("generator: %s needs at least one keyframe", kind)
	}
	first, last := keyframes[0], keyframes[len(keyframes)-1]
	if !first.IsNumber() || !last.IsNumber() {
		return 0, 0, fmt.Errorf("generator: %s needs numeric keyframes", kind)
	}
	return first.Float(), last.Float(), nil
}
