package generator

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/matt-g-everett/ledmotion/value"
)

const (
	defaultStiffness = 100
	defaultDamping   = 10
	defaultMass      = 1
)

type spring struct {
	origin, target float64
	velocity       float64
	angularFreq    float64
	dampingRatio   float64
	restSpeed      float64
	restDelta      float64
}

// NewSpring returns a damped spring from the first keyframe to the last.
//
// Physics come from stiffness, damping and mass, or from VisualDuration and
// Bounce when a visual duration is set. Rest thresholds default to 0.01/0.005
// for moves under 5 units and 2/0.5 otherwise.
func NewSpring(opts Options) (Generator, error) {
	origin, target, err := numeric("spring", opts.Keyframes)
	if err != nil {
		return nil, err
	}

	stiffness, damping, mass := SpringPhysics(opts)

	s := new(spring)
	s.origin = origin
	s.target = target
	s.velocity = opts.Velocity
	s.angularFreq = math.Sqrt(stiffness / mass)
	s.dampingRatio = damping / (2 * math.Sqrt(stiffness*mass))

	granular := math.Abs(target-origin) < 5
	s.restSpeed = opts.RestSpeed
	if s.restSpeed == 0 {
		s.restSpeed = 2
		if granular {
			s.restSpeed = 0.01
		}
	}
	s.restDelta = opts.RestDelta
	if s.restDelta == 0 {
		s.restDelta = 0.5
		if granular {
			s.restDelta = 0.005
		}
	}
	return s, nil
}

// SpringPhysics resolves the stiffness, damping and mass a spring will use.
func SpringPhysics(opts Options) (stiffness, damping, mass float64) {
	if opts.VisualDuration > 0 && opts.Stiffness == 0 && opts.Damping == nil && opts.Mass == 0 {
		root := 2 * math.Pi / (opts.VisualDuration.Seconds() * 1.2)
		stiffness = root * root
		damping = 2 * min(max(1-opts.Bounce, 0.05), 1) * math.Sqrt(stiffness)
		return stiffness, damping, 1
	}

	stiffness, damping, mass = defaultStiffness, defaultDamping, defaultMass
	if opts.Stiffness > 0 {
		stiffness = opts.Stiffness
	}
	if opts.Damping != nil {
		damping = *opts.Damping
	}
	if opts.Mass > 0 {
		mass = opts.Mass
	}
	return stiffness, damping, mass
}

// at returns position and velocity at t.
func (s *spring) at(t time.Duration) (float64, float64) {
	return harmonica.NewSpring(t.Seconds(), s.angularFreq, s.dampingRatio).
		Update(s.origin, s.velocity, s.target)
}

func (s *spring) Next(t time.Duration) State {
	pos, vel := s.at(t)
	done := math.Abs(vel) <= s.restSpeed && math.Abs(s.target-pos) <= s.restDelta
	if done {
		pos = s.target
	}
	return State{Value: value.Number(pos), Done: done}
}

func (s *spring) CalculatedDuration() (time.Duration, bool) {
	return 0, false
}
