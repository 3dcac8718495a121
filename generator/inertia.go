package generator

import (
	"math"
	"time"

	"github.com/matt-g-everett/ledmotion/value"
)

const (
	defaultPower           = 0.8
	defaultTimeConstant    = 325 * time.Millisecond
	defaultBounceStiffness = 500
	defaultBounceDamping   = 10
	defaultInertiaRest     = 0.5
)

type inertia struct {
	origin    float64
	target    float64
	amplitude float64
	tau       float64
	restDelta float64

	// boundary is set when the decay leaves [min, max]. From boundaryAt
	// onwards the value is handed to a spring pulling back to the edge.
	boundary   *spring
	boundaryAt time.Duration
}

// NewInertia returns an exponential decay that glides from the first
// keyframe in the direction of Velocity. Power scales how far it travels and
// TimeConstant how quickly it settles. ModifyTarget may snap the resting
// point. If the glide leaves [Min, Max] a spring takes over at the crossing
// and settles on the boundary.
func NewInertia(opts Options) (Generator, error) {
	origin, _, err := numeric("inertia", opts.Keyframes)
	if err != nil {
		return nil, err
	}

	power := opts.Power
	if power == 0 {
		power = defaultPower
	}
	tc := opts.TimeConstant
	if tc == 0 {
		tc = defaultTimeConstant
	}
	restDelta := opts.RestDelta
	if restDelta == 0 {
		restDelta = defaultInertiaRest
	}

	in := new(inertia)
	in.origin = origin
	in.tau = tc.Seconds()
	in.restDelta = restDelta
	in.amplitude = power * opts.Velocity
	ideal := origin + in.amplitude
	in.target = ideal
	if opts.ModifyTarget != nil {
		in.target = opts.ModifyTarget(ideal)
	}
	if in.target != ideal {
		in.amplitude = in.target - origin
	}

	bounce := func(from, to, velocity float64) *spring {
		stiffness := opts.BounceStiffness
		if stiffness == 0 {
			stiffness = defaultBounceStiffness
		}
		damping := opts.BounceDamping
		if damping == 0 {
			damping = defaultBounceDamping
		}
		g, _ := NewSpring(Options{
			Keyframes: value.Numbers(from, to),
			Velocity:  velocity,
			Stiffness: stiffness,
			Damping:   &damping,
			RestDelta: restDelta,
			RestSpeed: opts.RestSpeed,
		})
		return g.(*spring)
	}

	outside := func(v float64) bool {
		return (opts.Min != nil && v < *opts.Min) || (opts.Max != nil && v > *opts.Max)
	}
	nearest := func(v float64) float64 {
		switch {
		case opts.Min == nil:
			return *opts.Max
		case opts.Max == nil:
			return *opts.Min
		case math.Abs(*opts.Min-v) < math.Abs(*opts.Max-v):
			return *opts.Min
		}
		return *opts.Max
	}

	switch {
	case outside(origin):
		in.boundary = bounce(origin, nearest(origin), 0)
	case outside(in.target):
		edge := nearest(in.target)
		// Solve target - amplitude*exp(-t/tau) = edge for t, and stop early
		// if the glide comes to rest first.
		cross := -in.tau * math.Log((in.target-edge)/in.amplitude)
		rest := -in.tau * math.Log(in.restDelta/math.Abs(in.amplitude))
		at := max(min(cross, rest), 0)
		in.boundaryAt = time.Duration(at * float64(time.Second))
		in.boundary = bounce(in.position(at), edge, in.velocity(at))
	}
	return in, nil
}

func (in *inertia) position(t float64) float64 {
	return in.target - in.amplitude*math.Exp(-t/in.tau)
}

func (in *inertia) velocity(t float64) float64 {
	return in.amplitude / in.tau * math.Exp(-t/in.tau)
}

func (in *inertia) Next(t time.Duration) State {
	if in.boundary != nil && t >= in.boundaryAt {
		return in.boundary.Next(t - in.boundaryAt)
	}
	secs := t.Seconds()
	delta := in.amplitude * math.Exp(-secs/in.tau)
	if math.Abs(delta) <= in.restDelta {
		return State{Value: value.Number(in.target), Done: true}
	}
	return State{Value: value.Number(in.position(secs)), Done: false}
}

func (in *inertia) CalculatedDuration() (time.Duration, bool) {
	return 0, false
}
