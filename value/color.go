package value

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a parsed colour with alpha.
type Color struct {
	colorful.Color
	Alpha float64
}

var colorFunc = regexp.MustCompile(`^(rgba?|hsla?)\(\s*([^)]*)\)$`)

// ParseColor parses hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb(), rgba(),
// hsl() and hsla() colours.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}

	m := colorFunc.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return Color{}, false
	}
	args := strings.FieldsFunc(m[2], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}

	alpha := 1.0
	if len(args) == 4 {
		a, ok := parseComponent(args[3], 1)
		if !ok {
			return Color{}, false
		}
		alpha = a
	}

	if strings.HasPrefix(m[1], "rgb") {
		var rgb [3]float64
		for i := 0; i < 3; i++ {
			c, ok := parseComponent(args[i], 255)
			if !ok {
				return Color{}, false
			}
			rgb[i] = c / 255
		}
		return Color{colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, alpha}, true
	}

	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return Color{}, false
	}
	sat, ok1 := parseComponent(args[1], 1)
	light, ok2 := parseComponent(args[2], 1)
	if !ok1 || !ok2 {
		return Color{}, false
	}
	return Color{colorful.Hsl(h, sat, light), alpha}, true
}

// parseComponent reads a number or a percentage of scale.
func parseComponent(s string, scale float64) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return f / 100 * scale, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if scale == 1 && f > 1 {
		// hsl() saturation/lightness written without %.
		f /= 100
	}
	return f, true
}

func parseHex(s string) (Color, bool) {
	alpha := 1.0
	switch len(s) {
	case 5:
		a, err := strconv.ParseUint(strings.Repeat(s[4:], 2), 16, 8)
		if err != nil {
			return Color{}, false
		}
		alpha = float64(a) / 255
		s = s[:4]
	case 9:
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, false
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, false
	}
	return Color{c, alpha}, true
}

// String formats the colour as rgba() with rounded channels.
func (c Color) String() string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatNumber(c.Alpha))
}

// IsColor reports whether s parses as a colour.
func IsColor(s string) bool {
	_, ok := ParseColor(s)
	return ok
}

// MixColor blends two colours in linear RGB, which keeps midpoints from
// darkening the way an sRGB blend does.
func MixColor(from, to Color, p float64) Color {
	r1, g1, b1 := from.LinearRgb()
	r2, g2, b2 := to.LinearRgb()
	c := colorful.LinearRgb(
		r1+(r2-r1)*p,
		g1+(g2-g1)*p,
		b1+(b2-b1)*p,
	)
	return Color{c, from.Alpha + (to.Alpha-from.Alpha)*p}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(math.Round(n*1e5)/1e5, 'f', -1, 64)
}
