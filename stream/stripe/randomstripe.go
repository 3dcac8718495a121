// Package stripe generates runs of colour for striped scenes.
package stripe

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Stripe is a run of Length pixels in one colour.
type Stripe struct {
	Colour colorful.Color
	Length int
}

type RandomStripeGenerator struct {
	palette   []colorful.Color
	rnd       *rand.Rand
	current   int
	stripeMin int
	stripeMax int
}

// NewRandomStripeGenerator picks from palette, or random hues when palette
// is empty. Stripe lengths fall in [stripeMin, stripeMax).
func NewRandomStripeGenerator(palette []colorful.Color, stripeMin, stripeMax int, rnd *rand.Rand) *RandomStripeGenerator {
	g := new(RandomStripeGenerator)
	g.palette = palette
	g.rnd = rnd
	g.current = -1
	g.stripeMin = max(stripeMin, 1)
	g.stripeMax = max(stripeMax, g.stripeMin+1)
	return g
}

func (g *RandomStripeGenerator) CreateStripe() Stripe {
	var colour colorful.Color
	if len(g.palette) == 0 {
		colour = colorful.Hsl(g.rnd.Float64()*360.0, 1.0, 0.2)
	} else {
		// Choose a new colour that's different from the previous colour
		for {
			newCurrent := g.rnd.Intn(len(g.palette))
			if newCurrent != g.current || len(g.palette) == 1 {
				g.current = newCurrent
				break
			}
		}

		colour = g.palette[g.current]
	}

	stripeLength := g.rnd.Intn(g.stripeMax-g.stripeMin) + g.stripeMin
	return Stripe{colour, stripeLength}
}
