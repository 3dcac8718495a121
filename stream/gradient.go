package stream

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledmotion/value"
)

// GradientStop is a hue at a position in [0, 1].
type GradientStop struct {
	Hue float64 `yaml:"hue"`
	Pos float64 `yaml:"pos"`
}

// GradientTable stores a look-up table of colours interpolated by hue.
type GradientTable []GradientStop

// GetColor gets a colour at the specified point on the look-up table.
func (g GradientTable) GetColor(t, s, l float64) colorful.Color {
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			// We are in between c1 and c2. Go blend them!
			h := (((t - c1.Pos) / (c2.Pos - c1.Pos)) * (c2.Hue - c1.Hue)) + c1.Hue
			return colorful.Hcl(h, s, l)
		}
	}

	// Nothing found? Means we're at (or past) the last gradient keypoint.
	return colorful.Hcl(g[len(g)-1].Hue, s, l)
}

// Keyframes samples the gradient into evenly spaced colour keyframes. Hue is
// interpolated here, so keyframe mixing between samples stays close to the
// hue blend.
func (g GradientTable) Keyframes(samples int, s, l float64) ([]value.Value, []float64) {
	samples = max(samples, 2)
	keyframes := make([]value.Value, samples)
	times := make([]float64, samples)
	for i := range keyframes {
		t := float64(i) / float64(samples-1)
		keyframes[i] = value.String(g.GetColor(t, s, l).Clamped().Hex())
		times[i] = t
	}
	return keyframes, times
}

// Rainbow is the default gradient.
var Rainbow = GradientTable{
	{0.0, 0.0},
	{6.0, 0.04},   // Pink
	{87.0, 0.14},  // Red
	{88.0, 0.28},  // Orange
	{98.0, 0.42},  // Yellow
	{180.0, 0.56}, // Green
	{190.0, 0.70}, // Turquiose
	{320.0, 0.84}, // Blue
	{328.0, 0.91}, // Violet
	{360.0, 1.0},  // Pink wrap
}
