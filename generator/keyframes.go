package generator

import (
	"fmt"
	"time"

	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/value"
)

type keyframes struct {
	duration time.Duration
	final    value.Value
	sample   func(float64) value.Value
}

// NewKeyframes returns a tween through opts.Keyframes over opts.Duration.
// Offsets come from opts.Times when it matches the keyframe count, otherwise
// keyframes are evenly spaced. Segments default to easeInOut.
func NewKeyframes(opts Options) (Generator, error) {
	if len(opts.Keyframes) == 0 {
		return nil, fmt.Errorf("generator: keyframes needs at least one keyframe")
	}
	offsets := opts.Times
	if len(offsets) != len(opts.Keyframes) {
		offsets = DefaultOffsets(len(opts.Keyframes))
	}
	eases, err := opts.Ease.Functions(max(len(opts.Keyframes)-1, 1), easing.EaseInOut)
	if err != nil {
		return nil, err
	}

	k := new(keyframes)
	k.duration = opts.Duration
	k.final = opts.Keyframes[len(opts.Keyframes)-1]
	input := make([]float64, len(offsets))
	for i, o := range offsets {
		input[i] = o * opts.Duration.Seconds()
	}
	k.sample = Interpolate(input, opts.Keyframes, eases)
	return k, nil
}

func (k *keyframes) Next(t time.Duration) State {
	return State{Value: k.sample(t.Seconds()), Done: t >= k.duration}
}

func (k *keyframes) CalculatedDuration() (time.Duration, bool) {
	return k.duration, true
}

// DefaultOffsets spaces n keyframes evenly across [0, 1].
func DefaultOffsets(n int) []float64 {
	if n == 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(n-1)
	}
	return out
}

// Interpolate maps input ranges to output values, mixing each segment with
// the matching easing function. Input is clamped to its first and last
// entries.
func Interpolate(input []float64, output []value.Value, eases []easing.Func) func(float64) value.Value {
	if len(input) == 1 {
		return func(float64) value.Value { return output[0] }
	}
	if len(input) == 2 && output[0].Equal(output[1]) {
		return func(float64) value.Value { return output[1] }
	}

	zeroRange := input[0] == input[1]
	if input[0] > input[len(input)-1] {
		input = reversed(input)
		output = reversed(output)
	}

	mixers := make([]value.MixFunc, len(output)-1)
	for i := range mixers {
		mix := value.Mix(output[i], output[i+1])
		ease := easing.Func(easing.Linear)
		if i < len(eases) && eases[i] != nil {
			ease = eases[i]
		}
		mixers[i] = func(p float64) value.Value { return mix(ease(p)) }
	}

	lo, hi := input[0], input[len(input)-1]
	return func(v float64) value.Value {
		v = min(max(v, lo), hi)
		if zeroRange && v < input[0] {
			return output[0]
		}
		i := 0
		if len(mixers) > 1 {
			for ; i < len(input)-2; i++ {
				if v < input[i+1] {
					break
				}
			}
		}
		return mixers[i](progress(input[i], input[i+1], v))
	}
}

func progress(from, to, v float64) float64 {
	if to == from {
		return 1
	}
	return (v - from) / (to - from)
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
