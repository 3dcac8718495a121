package stream

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledmotion/cell"
	"github.com/matt-g-everett/ledmotion/value"
)

// Property is the animated pixel property.
const Property = "color"

// Strip is a string of pixels, each held in its own cell. Pixel colours can
// be accelerated onto the device unless the strip is streamed.
type Strip struct {
	name   string
	target *cell.Target
	pixels []*cell.Cell
}

// pixel is the owner of one pixel's cell.
type pixel struct {
	*cell.Target
	index int
}

func (p pixel) Index() int { return p.index }

// NewStrip returns n pixels set to background.
func NewStrip(name string, n int, clock cell.Clock, background value.Value) *Strip {
	s := new(Strip)
	s.name = name
	s.target = cell.NewTarget(Property)
	s.pixels = make([]*cell.Cell, n)
	for i := range s.pixels {
		s.pixels[i] = cell.New(background, clock, pixel{s.target, i})
	}
	return s
}

func (s *Strip) Name() string { return s.name }

func (s *Strip) Len() int { return len(s.pixels) }

func (s *Strip) Pixel(i int) *cell.Cell { return s.pixels[i] }

// SetStreaming switches between streamed frames and device programs.
// Streamed pixels are animated in software.
func (s *Strip) SetStreaming(streaming bool) { s.target.Observe(streaming) }

func (s *Strip) Streaming() bool { return s.target.HasUpdateObserver() }

// SetConnected records whether the device is reachable. Programs are only
// sent to a connected device.
func (s *Strip) SetConnected(connected bool) {
	if connected {
		s.target.Attach()
	} else {
		s.target.Detach()
	}
}

// Frame renders the pixel colours. Alpha darkens towards black.
func (s *Strip) Frame() *Frame {
	f := NewFrame(len(s.pixels))
	for i, c := range s.pixels {
		f.Set(i, toRGB(c.Get()))
	}
	return f
}

func toRGB(v value.Value) colorful.Color {
	c, ok := value.ParseColor(v.Str())
	if !ok {
		return colorful.Color{}
	}
	return colorful.Color{R: c.R * c.Alpha, G: c.G * c.Alpha, B: c.B * c.Alpha}
}
