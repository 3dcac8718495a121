package stream

import (
	"math"
	"time"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/value"
)

// Program is a keyframe animation a device plays on its own. Times are in
// milliseconds. Iterations is -1 for forever.
type Program struct {
	ID         string              `json:"id"`
	Property   string              `json:"property"`
	Keyframes  []value.Value       `json:"keyframes"`
	Delay      float64             `json:"delay"`
	Duration   float64             `json:"duration"`
	Ease       []Ease              `json:"ease"`
	Times      []float64           `json:"times,omitempty"`
	Iterations float64             `json:"iterations"`
	Direction  animation.Direction `json:"direction"`
}

// Ease is one native easing curve: "linear", a cubic bezier or linear()
// points.
type Ease struct {
	Name   string    `json:"name,omitempty"`
	Bezier []float64 `json:"bezier,omitempty"`
	Points []float64 `json:"points,omitempty"`
}

// Control actions sent to a running program.
const (
	ActionStart  = "start"
	ActionPlay   = "play"
	ActionPause  = "pause"
	ActionCancel = "cancel"
	ActionFinish = "finish"
	ActionSeek   = "seek"
	ActionRate   = "rate"
)

// Control changes a running program.
type Control struct {
	ID     string   `json:"id"`
	Action string   `json:"action"`
	Time   *float64 `json:"time,omitempty"`
	Rate   *float64 `json:"rate,omitempty"`
}

// Status events reported by devices.
const (
	EventFinished  = "finished"
	EventCancelled = "cancelled"
)

// Status is a device report about a program.
type Status struct {
	ID    string `json:"id"`
	Event string `json:"event"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func newProgram(id, property string, keyframes []value.Value, timing animation.Timing) Program {
	p := Program{
		ID:         id,
		Property:   property,
		Keyframes:  keyframes,
		Delay:      millis(timing.Delay),
		Duration:   millis(timing.Duration),
		Times:      timing.Times,
		Iterations: timing.Iterations,
		Direction:  timing.Direction,
	}
	if math.IsInf(p.Iterations, 1) {
		p.Iterations = -1
	}
	for _, d := range timing.Ease {
		p.Ease = append(p.Ease, toEase(d))
	}
	return p
}

func toEase(d easing.Definition) Ease {
	switch {
	case d.Bezier != nil:
		return Ease{Bezier: d.Bezier}
	case d.Points != nil:
		return Ease{Points: d.Points}
	}
	return Ease{Name: "linear"}
}
