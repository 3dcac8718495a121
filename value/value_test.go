package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestMixNumbers(t *testing.T) {
	mix := Mix(Number(0), Number(200))
	assert.Equal(t, 0.0, mix(0).Float())
	assert.Equal(t, 50.0, mix(0.25).Float())
	assert.Equal(t, 200.0, mix(1).Float())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		alpha   float64
	}{
		{"#fff", 255, 255, 255, 1},
		{"#ff0000", 255, 0, 0, 1},
		{"#ff000080", 255, 0, 0, 128.0 / 255},
		{"rgb(0, 128, 255)", 0, 128, 255, 1},
		{"rgba(10, 20, 30, 0.5)", 10, 20, 30, 0.5},
		{"hsl(0, 100%, 50%)", 255, 0, 0, 1},
		{"hsla(120, 100%, 50%, 0.25)", 0, 255, 0, 0.25},
	}
	for _, tt := range tests {
		c, ok := ParseColor(tt.in)
		require.True(t, ok, tt.in)
		r, g, b := c.Clamped().RGB255()
		assert.Equal(t, []uint8{tt.r, tt.g, tt.b}, []uint8{r, g, b}, tt.in)
		assert.InDelta(t, tt.alpha, c.Alpha, 1e-9, tt.in)
	}

	_, ok := ParseColor("10px")
	assert.False(t, ok)
}

func TestMixColor(t *testing.T) {
	mix := Mix(String("#000000"), String("#ffffff"))
	assert.Equal(t, "rgba(0, 0, 0, 1)", mix(0).Str())
	assert.Equal(t, "rgba(255, 255, 255, 1)", mix(1).Str())

	// Linear-light blending puts the midpoint well above sRGB 128.
	mid, ok := ParseColor(mix(0.5).Str())
	require.True(t, ok)
	r, _, _ := mid.Clamped().RGB255()
	assert.Greater(t, r, uint8(180))
}

func TestMixComplex(t *testing.T) {
	mix := Mix(String("10px 20px"), String("30px 0px"))
	assert.Equal(t, "20px 10px", mix(0.5).Str())

	shadow := Mix(String("0px 0px 4px #000000"), String("10px 10px 8px #ffffff"))
	assert.Equal(t, "10px 10px 8px rgba(255, 255, 255, 1)", shadow(1).Str())
}

func TestMixMismatchedTemplatesSwitchImmediately(t *testing.T) {
	mix := Mix(String("10px"), String("50%"))
	assert.Equal(t, "10px", mix(0).Str())
	assert.Equal(t, "50%", mix(0.01).Str())

	discrete := Mix(String("block"), String("none"))
	assert.Equal(t, "none", discrete(0.5).Str())
}

func TestAnimatableAndZero(t *testing.T) {
	assert.True(t, Animatable(Number(1)))
	assert.True(t, Animatable(String("#fff")))
	assert.True(t, Animatable(String("10px")))
	assert.False(t, Animatable(String("block")))
	assert.False(t, Animatable(String("url(a.png)")))
	assert.False(t, Animatable(None()))

	assert.Equal(t, Number(0), Zero(Number(42)))
	assert.Equal(t, "0px 0px", Zero(String("10px 20px")).Str())
	assert.Equal(t, "rgba(0, 0, 0, 0)", Zero(String("#ff0000")).Str())
}

func TestUnmarshalYAML(t *testing.T) {
	var kfs []Value
	require.NoError(t, yaml.Unmarshal([]byte(`[null, 1, 2.5, "#fff"]`), &kfs))
	require.Len(t, kfs, 4)
	assert.True(t, kfs[0].IsNone())
	assert.Equal(t, Number(1), kfs[1])
	assert.Equal(t, Number(2.5), kfs[2])
	assert.Equal(t, String("#fff"), kfs[3])
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal([]Value{None(), Number(1.5), String("#fff")})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, 1.5, "#fff"]`, string(data))

	var kfs []Value
	require.NoError(t, json.Unmarshal(data, &kfs))
	assert.True(t, kfs[0].IsNone())
	assert.Equal(t, Number(1.5), kfs[1])
	assert.Equal(t, String("#fff"), kfs[2])
	assert.Error(t, json.Unmarshal([]byte(`[true]`), &kfs))
}
