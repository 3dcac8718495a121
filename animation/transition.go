package animation

import (
	"time"

	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/generator"
)

// Transition is the configurable part of Options, as read from YAML. Times
// are in seconds. Zero fields leave the options untouched.
type Transition struct {
	Type        generator.Type `yaml:"type"`
	Duration    float64        `yaml:"duration"`
	Delay       float64        `yaml:"delay"`
	Ease        easing.List    `yaml:"ease"`
	Times       []float64      `yaml:"times"`
	Repeat      int            `yaml:"repeat"`
	RepeatType  RepeatType     `yaml:"repeatType"`
	RepeatDelay float64        `yaml:"repeatDelay"`

	Stiffness      float64  `yaml:"stiffness"`
	Damping        *float64 `yaml:"damping"`
	Mass           float64  `yaml:"mass"`
	Bounce         float64  `yaml:"bounce"`
	VisualDuration float64  `yaml:"visualDuration"`
	RestSpeed      float64  `yaml:"restSpeed"`
	RestDelta      float64  `yaml:"restDelta"`
	Power          float64  `yaml:"power"`
	TimeConstant   float64  `yaml:"timeConstant"`
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Apply copies the transition's set fields onto o.
func (t Transition) Apply(o Options) Options {
	if t.Type != "" {
		o.Type = t.Type
	}
	if t.Duration > 0 {
		o.Duration = seconds(t.Duration)
	}
	if t.Delay != 0 {
		o.Delay = seconds(t.Delay)
	}
	if len(t.Ease) > 0 {
		o.Ease = t.Ease
	}
	if len(t.Times) > 0 {
		o.Times = t.Times
	}
	if t.Repeat != 0 {
		o.Repeat = t.Repeat
	}
	if t.RepeatType != "" {
		o.RepeatType = t.RepeatType
	}
	if t.RepeatDelay > 0 {
		o.RepeatDelay = seconds(t.RepeatDelay)
	}
	if t.Stiffness > 0 {
		o.Stiffness = t.Stiffness
	}
	if t.Damping != nil {
		o.Damping = t.Damping
	}
	if t.Mass > 0 {
		o.Mass = t.Mass
	}
	if t.Bounce != 0 {
		o.Bounce = t.Bounce
	}
	if t.VisualDuration > 0 {
		o.VisualDuration = seconds(t.VisualDuration)
	}
	if t.RestSpeed > 0 {
		o.RestSpeed = t.RestSpeed
	}
	if t.RestDelta > 0 {
		o.RestDelta = t.RestDelta
	}
	if t.Power > 0 {
		o.Power = t.Power
	}
	if t.TimeConstant > 0 {
		o.TimeConstant = seconds(t.TimeConstant)
	}
	return o
}

// Transitions maps property names to transitions. The "default" entry
// applies to properties without their own.
type Transitions map[string]Transition

// For returns the transition configured for property.
func (ts Transitions) For(property string) (Transition, bool) {
	if t, ok := ts[property]; ok {
		return t, true
	}
	t, ok := ts["default"]
	return t, ok
}
