// Package easing maps linear progress in [0, 1] to eased progress.
//
// Named curves cover the usual CSS set (linear, ease, easeIn, easeOut,
// easeInOut), the circ/back/anticipate family, and every family from
// github.com/fogleman/ease under "<family>In", "<family>Out" and
// "<family>InOut" (quadIn, sineInOut, bounceOut, elasticOut, ...).
package easing

import (
	"math"

	"github.com/fogleman/ease"
)

// Func maps progress to eased progress.
type Func func(p float64) float64

// Linear returns progress unchanged.
func Linear(p float64) float64 { return p }

var (
	Ease      = CubicBezier(0.25, 0.1, 0.25, 1)
	EaseIn    = CubicBezier(0.42, 0, 1, 1)
	EaseOut   = CubicBezier(0, 0, 0.58, 1)
	EaseInOut = CubicBezier(0.42, 0, 0.58, 1)

	CircIn    Func = ease.InCirc
	CircOut   Func = ease.OutCirc
	CircInOut      = Mirror(CircIn)

	BackIn    Func = ease.InBack
	BackOut        = Reverse(BackIn)
	BackInOut      = Mirror(BackIn)
)

// Anticipate pulls back like BackIn for the first half, then shoots to the
// target with an exponential ease out.
func Anticipate(p float64) float64 {
	p *= 2
	if p < 1 {
		return 0.5 * BackIn(p)
	}
	return 0.5 * (2 - math.Pow(2, -10*(p-1)))
}

// Mirror turns an ease-in into an ease-in-out by playing it forward over the
// first half and reflected over the second.
func Mirror(f Func) Func {
	return func(p float64) float64 {
		if p <= 0.5 {
			return f(2*p) / 2
		}
		return (2 - f(2*(1-p))) / 2
	}
}

// Reverse turns an ease-in into an ease-out.
func Reverse(f Func) Func {
	return func(p float64) float64 {
		return 1 - f(1-p)
	}
}

// StepDirection selects where a step jumps.
type StepDirection int

const (
	StepEnd StepDirection = iota
	StepStart
)

// Steps quantises progress into n equal jumps.
func Steps(n int, direction StepDirection) Func {
	return func(p float64) float64 {
		if direction == StepEnd {
			p = math.Min(p, 0.999)
		} else {
			p = math.Max(p, 0.001)
		}
		expanded := p * float64(n)
		var rounded float64
		if direction == StepEnd {
			rounded = math.Floor(expanded)
		} else {
			rounded = math.Ceil(expanded)
		}
		return clampUnit(rounded / float64(n))
	}
}

// CubicBezier returns a cubic-bezier easing function matching CSS cubic-bezier().
// The parameters define the two control points (x1,y1) and (x2,y2) of the curve.
// The curve starts at (0,0) and ends at (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Func {
	if x1 == y1 && x2 == y2 {
		return Linear
	}
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for i := 0; i < 8; i++ {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Fall back to bisection for a stable solution in [0,1].
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for i := 0; i < 12; i++ {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
