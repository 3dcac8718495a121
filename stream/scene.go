package stream

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/stream/stripe"
	"github.com/matt-g-everett/ledmotion/value"
)

// Scene kinds.
const (
	SceneGradient = "gradient"
	SceneTwinkle  = "twinkle"
	SceneStripes  = "stripes"
	SceneSolid    = "solid"
)

// Scene describes what every pixel animates to.
//
// A gradient cycles the gradient along the strip, one trail every Length
// pixels. A twinkle fades Particles random pixels between the two Colors. A
// stripes scene paints random runs of palette Colors, or random hues without a
// palette. A solid scene fades everything to the first colour.
type Scene struct {
	Name       string               `yaml:"name"`
	Kind       string               `yaml:"kind"`
	Colors     []string             `yaml:"colors"`
	Gradient   GradientTable        `yaml:"gradient"`
	Saturation float64              `yaml:"saturation"`
	Luminance  float64              `yaml:"luminance"`
	Samples    int                  `yaml:"samples"`
	Length     int                  `yaml:"length"`
	Particles  int                  `yaml:"particles"`
	StripeMin  int                  `yaml:"stripeMin"`
	StripeMax  int                  `yaml:"stripeMax"`
	Transition animation.Transition `yaml:"transition"`
}

// PixelAnimation is one pixel's part of a scene.
type PixelAnimation struct {
	Keyframes []value.Value
	Options   animation.Options
}

const defaultCycle = 10 * time.Second

// Plan returns an animation for each of n pixels. base carries the timing
// every pixel starts from.
func (s Scene) Plan(n int, base animation.Options, rnd *rand.Rand) ([]PixelAnimation, error) {
	base = s.Transition.Apply(base)
	switch s.Kind {
	case SceneGradient:
		return s.gradient(n, base), nil
	case SceneTwinkle:
		return s.twinkle(n, base, rnd)
	case SceneStripes:
		return s.stripes(n, base, rnd)
	case SceneSolid, "":
		if len(s.Colors) == 0 {
			return nil, fmt.Errorf("stream: scene %q needs a colour", s.Name)
		}
		plan := make([]PixelAnimation, n)
		for i := range plan {
			plan[i] = PixelAnimation{Keyframes: []value.Value{value.String(s.Colors[0])}, Options: base}
		}
		return plan, nil
	}
	return nil, fmt.Errorf("stream: scene %q has unknown kind %q", s.Name, s.Kind)
}

func (s Scene) gradient(n int, base animation.Options) []PixelAnimation {
	gradient := s.Gradient
	if len(gradient) == 0 {
		gradient = Rainbow
	}
	saturation, luminance := s.Saturation, s.Luminance
	if saturation == 0 {
		saturation = 1
	}
	if luminance == 0 {
		luminance = 0.05
	}
	samples := s.Samples
	if samples <= 0 {
		samples = 10
	}
	keyframes, times := gradient.Keyframes(samples, saturation, luminance)

	base.Times = times
	base.Repeat = animation.Infinite
	if base.Duration == 0 {
		base.Duration = defaultCycle
	}
	length := s.Length
	if length <= 0 {
		length = n
	}

	plan := make([]PixelAnimation, n)
	for i := range plan {
		opts := base
		opts.Delay += time.Duration(float64(base.Duration) * float64(i%length) / float64(length))
		plan[i] = PixelAnimation{Keyframes: keyframes, Options: opts}
	}
	return plan
}

func (s Scene) twinkle(n int, base animation.Options, rnd *rand.Rand) ([]PixelAnimation, error) {
	if len(s.Colors) < 2 {
		return nil, fmt.Errorf("stream: twinkle %q needs a background and a foreground colour", s.Name)
	}
	back, fore := value.String(s.Colors[0]), value.String(s.Colors[1])
	if base.Duration == 0 {
		base.Duration = 2 * time.Second
	}

	plan := make([]PixelAnimation, n)
	for i := range plan {
		plan[i] = PixelAnimation{Keyframes: []value.Value{back}, Options: base}
	}
	for i := 0; i < min(s.Particles, n); i++ {
		opts := base
		opts.Repeat = animation.Infinite
		opts.RepeatType = animation.RepeatLoop
		opts.Delay += time.Duration(rnd.Int63n(int64(base.Duration)))
		plan[rnd.Intn(n)] = PixelAnimation{Keyframes: []value.Value{back, fore, back}, Options: opts}
	}
	return plan, nil
}

func (s Scene) stripes(n int, base animation.Options, rnd *rand.Rand) ([]PixelAnimation, error) {
	palette := make([]colorful.Color, 0, len(s.Colors))
	for _, c := range s.Colors {
		parsed, ok := value.ParseColor(c)
		if !ok {
			return nil, fmt.Errorf("stream: stripes %q has bad colour %q", s.Name, c)
		}
		palette = append(palette, parsed.Color)
	}
	g := stripe.NewRandomStripeGenerator(palette, s.StripeMin, s.StripeMax, rnd)

	plan := make([]PixelAnimation, 0, n)
	for len(plan) < n {
		st := g.CreateStripe()
		kf := []value.Value{value.String(st.Colour.Clamped().Hex())}
		for j := 0; j < st.Length && len(plan) < n; j++ {
			plan = append(plan, PixelAnimation{Keyframes: kf, Options: base})
		}
	}
	return plan, nil
}
