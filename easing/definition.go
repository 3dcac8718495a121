package easing

import (
	"fmt"
	"time"

	"github.com/fogleman/ease"

	"github.com/matt-g-everett/ledmotion/util"
)

// Definition describes an easing curve declaratively so it can be sent to a
// hardware timeline or turned into a Func. Exactly one field is set; the zero
// Definition means "use the default".
type Definition struct {
	// Name is a named curve such as "easeOut" or "bounceIn".
	Name string
	// Bezier holds cubic-bezier control points x1, y1, x2, y2.
	Bezier []float64
	// Points is a piecewise-linear curve sampled at equal spacing, the form
	// accepted by linear() timing functions.
	Points []float64
	// Func is an arbitrary easing function. Hardware timelines cannot play it
	// directly.
	Func Func
}

// Named returns a definition for a named curve.
func Named(name string) Definition { return Definition{Name: name} }

// Bezier returns a cubic-bezier definition.
func Bezier(x1, y1, x2, y2 float64) Definition {
	return Definition{Bezier: []float64{x1, y1, x2, y2}}
}

// Custom wraps an easing function.
func Custom(f Func) Definition { return Definition{Func: f} }

// IsZero reports whether d is unset.
func (d Definition) IsZero() bool {
	return d.Name == "" && d.Bezier == nil && d.Points == nil && d.Func == nil
}

func (d Definition) String() string {
	switch {
	case d.Name != "":
		return d.Name
	case d.Bezier != nil:
		return fmt.Sprintf("cubic-bezier(%g, %g, %g, %g)", d.Bezier[0], d.Bezier[1], d.Bezier[2], d.Bezier[3])
	case d.Points != nil:
		return fmt.Sprintf("linear(%d points)", len(d.Points))
	case d.Func != nil:
		return "func"
	}
	return "default"
}

var named = map[string]Func{
	"linear":     Linear,
	"ease":       Ease,
	"easeIn":     EaseIn,
	"easeOut":    EaseOut,
	"easeInOut":  EaseInOut,
	"circIn":     CircIn,
	"circOut":    CircOut,
	"circInOut":  CircInOut,
	"backIn":     BackIn,
	"backOut":    BackOut,
	"backInOut":  BackInOut,
	"anticipate": Anticipate,
}

func init() {
	families := map[string][3]ease.Function{
		"quad":    {ease.InQuad, ease.OutQuad, ease.InOutQuad},
		"cubic":   {ease.InCubic, ease.OutCubic, ease.InOutCubic},
		"quart":   {ease.InQuart, ease.OutQuart, ease.InOutQuart},
		"quint":   {ease.InQuint, ease.OutQuint, ease.InOutQuint},
		"sine":    {ease.InSine, ease.OutSine, ease.InOutSine},
		"expo":    {ease.InExpo, ease.OutExpo, ease.InOutExpo},
		"elastic": {ease.InElastic, ease.OutElastic, ease.InOutElastic},
		"bounce":  {ease.InBounce, ease.OutBounce, ease.InOutBounce},
	}
	for family, fs := range families {
		named[family+"In"] = Func(fs[0])
		named[family+"Out"] = Func(fs[1])
		named[family+"InOut"] = Func(fs[2])
	}
}

// nativeBezier lists the named curves a hardware timeline can play as a
// cubic-bezier. Software evaluates exactly the same curves.
var nativeBezier = map[string][]float64{
	"ease":      {0.25, 0.1, 0.25, 1},
	"easeIn":    {0.42, 0, 1, 1},
	"easeOut":   {0, 0, 0.58, 1},
	"easeInOut": {0.42, 0, 0.58, 1},
}

// Function resolves d to an easing function. The zero Definition resolves
// to fallback.
func (d Definition) Function(fallback Func) (Func, error) {
	switch {
	case d.Func != nil:
		return d.Func, nil
	case d.Bezier != nil:
		if len(d.Bezier) != 4 {
			return nil, fmt.Errorf("easing: cubic-bezier needs 4 control points, got %d", len(d.Bezier))
		}
		return CubicBezier(d.Bezier[0], d.Bezier[1], d.Bezier[2], d.Bezier[3]), nil
	case d.Points != nil:
		return linearPoints(d.Points), nil
	case d.Name != "":
		f, ok := named[d.Name]
		if !ok {
			return nil, fmt.Errorf("easing: unknown curve %q", d.Name)
		}
		return f, nil
	}
	return fallback, nil
}

// Native reports whether a hardware timeline can play d. Points, functions
// and named curves without a cubic-bezier form need linear() support.
func (d Definition) Native(supportsLinear bool) bool {
	switch {
	case d.IsZero(), d.Name == "linear", d.Bezier != nil:
		return true
	case d.Points != nil, d.Func != nil:
		return supportsLinear
	case d.Name != "":
		if _, ok := nativeBezier[d.Name]; ok {
			return true
		}
		_, known := named[d.Name]
		return known && supportsLinear
	}
	return false
}

// ToNative converts d to a form a hardware timeline accepts: "linear", a
// cubic-bezier or, when the host supports linear(), sampled points. The
// second result is false when d cannot be expressed.
func (d Definition) ToNative(supportsLinear bool, duration time.Duration) (Definition, bool) {
	switch {
	case d.IsZero():
		return Definition{Bezier: nativeBezier["easeInOut"]}, true
	case d.Name == "linear", d.Bezier != nil:
		return d, true
	case d.Points != nil:
		return d, supportsLinear
	}
	if pts, ok := nativeBezier[d.Name]; ok {
		return Definition{Bezier: pts}, true
	}
	if !supportsLinear {
		return d, false
	}
	f, err := d.Function(nil)
	if err != nil {
		return d, false
	}
	return Definition{Points: GenerateLinear(f, d.Name, duration)}, true
}

// linearResolution is the spacing between linear() points.
const linearResolution = 10 * time.Millisecond

var lutCache = util.NewMemoizer()

// GenerateLinear samples f into evenly spaced points, one every 10ms of
// duration and never fewer than two. Named curves are memoised by name.
func GenerateLinear(f Func, name string, duration time.Duration) []float64 {
	n := int(duration / linearResolution)
	if n < 2 {
		n = 2
	}
	if name == "" {
		return util.GenerateLut(f, n)
	}
	return lutCache.Lut(name, n, f)
}

func linearPoints(points []float64) Func {
	return func(p float64) float64 {
		if len(points) == 0 {
			return p
		}
		if len(points) == 1 || p <= 0 {
			return points[0]
		}
		if p >= 1 {
			return points[len(points)-1]
		}
		scaled := p * float64(len(points)-1)
		i := int(scaled)
		frac := scaled - float64(i)
		return points[i] + (points[i+1]-points[i])*frac
	}
}

// UnmarshalYAML accepts a curve name or a four-element bezier list.
func (d *Definition) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		*d = Named(name)
		return nil
	}
	var pts []float64
	if err := unmarshal(&pts); err != nil {
		return fmt.Errorf("easing: expected a curve name or [x1, y1, x2, y2]: %w", err)
	}
	if len(pts) != 4 {
		return fmt.Errorf("easing: cubic-bezier needs 4 control points, got %d", len(pts))
	}
	*d = Definition{Bezier: pts}
	return nil
}

// List is one definition for every segment, or a single definition shared
// by all segments.
type List []Definition

// UnmarshalYAML accepts a single definition or a list of definitions.
func (l *List) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single Definition
	if err := unmarshal(&single); err == nil {
		*l = List{single}
		return nil
	}
	var many []Definition
	if err := unmarshal(&many); err != nil {
		return err
	}
	*l = many
	return nil
}

// Functions resolves the list to one function per segment. A single
// definition applies to every segment; with several, segments past the end
// of the list are linear.
func (l List) Functions(segments int, fallback Func) ([]Func, error) {
	out := make([]Func, segments)
	if len(l) == 0 {
		for i := range out {
			out[i] = fallback
		}
		return out, nil
	}
	for i := range out {
		d := l[0]
		if len(l) > 1 {
			if i >= len(l) {
				out[i] = Linear
				continue
			}
			d = l[i]
		}
		f, err := d.Function(fallback)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Native reports whether every definition in the list is native.
func (l List) Native(supportsLinear bool) bool {
	for _, d := range l {
		if !d.Native(supportsLinear) {
			return false
		}
	}
	return true
}

// ToNative converts every definition in the list. The second result is false
// if any of them cannot be expressed.
func (l List) ToNative(supportsLinear bool, duration time.Duration) (List, bool) {
	if len(l) == 0 {
		d, _ := Definition{}.ToNative(supportsLinear, duration)
		return List{d}, true
	}
	out := make(List, len(l))
	for i, d := range l {
		n, ok := d.ToNative(supportsLinear, duration)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
