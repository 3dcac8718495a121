package stream

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/value"
)

func TestFrameMarshalBinary(t *testing.T) {
	f := NewFrame(2)
	f.Set(0, colorful.Color{R: 1, G: 0.5, B: 0})
	f.Set(1, colorful.Color{R: 2, G: -1, B: 1})

	data, err := f.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 8)
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data))
	assert.Equal(t, []byte{255, 128, 0, 255, 0, 255}, data[2:])
}

func TestStripFrame(t *testing.T) {
	loop := frameloop.NewManual()
	s := NewStrip("tree", 3, loop, value.String("#000000"))
	s.Pixel(0).Set(value.String("#ff0000"))
	s.Pixel(1).Set(value.String("rgba(0, 255, 0, 0.5)"))
	s.Pixel(2).Set(value.Number(1))

	f := s.Frame()
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, colorful.Color{R: 1}, f.At(0))
	assert.InDelta(t, 0.5, f.At(1).G, 1e-9)
	assert.Equal(t, colorful.Color{}, f.At(2))
}

func TestGradientKeyframes(t *testing.T) {
	keyframes, times := Rainbow.Keyframes(5, 1, 0.05)
	require.Len(t, keyframes, 5)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, times)
	for i, kf := range keyframes {
		assert.Equal(t, Rainbow.GetColor(times[i], 1, 0.05).Clamped().Hex(), kf.Str())
		assert.True(t, value.IsColor(kf.Str()))
	}

	_, times = Rainbow.Keyframes(0, 1, 0.05)
	assert.Len(t, times, 2)
}

func TestStreamer(t *testing.T) {
	loop := frameloop.NewManual()
	broker := newFakeBroker()
	strip := NewStrip("tree", 2, loop, value.String("#000000"))
	s := NewStreamer(broker, testTopics.Stream, strip, loop, nil)
	s.Start()

	loop.Process(0)
	assert.Empty(t, broker.under(testTopics.Stream), "only streaming strips send frames")

	strip.SetStreaming(true)
	loop.Process(10 * time.Millisecond)
	frames := broker.under(testTopics.Stream)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, frames[0].payload)

	loop.Process(20 * time.Millisecond)
	assert.Len(t, broker.under(testTopics.Stream), 1, "unchanged frames are not resent")

	strip.Pixel(1).Set(value.String("#0000ff"))
	loop.Process(30 * time.Millisecond)
	frames = broker.under(testTopics.Stream)
	require.Len(t, frames, 2)
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 255}, frames[1].payload)

	s.Stop()
	strip.Pixel(1).Set(value.String("#00ff00"))
	loop.Process(40 * time.Millisecond)
	assert.Len(t, broker.under(testTopics.Stream), 2)
}

func TestStreamedAnimation(t *testing.T) {
	loop := frameloop.NewManual()
	broker := newFakeBroker()
	engine := animation.NewEngine(loop, animation.Config{}, nil)
	strip := NewStrip("tree", 1, loop, value.String("#000000"))
	strip.SetStreaming(true)
	device := NewDevice("tree", broker, testTopics, loop, true, nil)
	NewStreamer(broker, testTopics.Stream, strip, loop, nil).Start()

	engine.Animate(strip.Pixel(0), []value.Value{value.String("#ff0000")}, animation.Options{
		Options: generator.Options{Duration: 100 * time.Millisecond, Ease: easing.List{easing.Named("linear")}},
		Name:    Property,
		Host:    device,
	})
	for ts := time.Duration(0); ts <= 100*time.Millisecond; ts += 20 * time.Millisecond {
		loop.Process(ts)
	}

	frames := broker.under(testTopics.Stream)
	assert.Len(t, frames, 6)
	last := frames[len(frames)-1].payload
	assert.Equal(t, []byte{255, 0, 0}, last[2:])
	assert.Empty(t, broker.under(testTopics.Program))
}

func TestScenePlans(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	base := animation.Options{Name: Property}

	plan, err := Scene{Name: "rainbow", Kind: SceneGradient, Length: 4, Samples: 3,
		Transition: animation.Transition{Duration: 8}}.Plan(8, base, rnd)
	require.NoError(t, err)
	require.Len(t, plan, 8)
	assert.Len(t, plan[0].Keyframes, 3)
	assert.Equal(t, []float64{0, 0.5, 1}, plan[0].Options.Times)
	assert.Equal(t, animation.Infinite, plan[0].Options.Repeat)
	assert.Equal(t, time.Duration(0), plan[0].Options.Delay)
	assert.Equal(t, 2*time.Second, plan[1].Options.Delay)
	assert.Equal(t, plan[1].Options.Delay, plan[5].Options.Delay)

	plan, err = Scene{Name: "stars", Kind: SceneTwinkle, Colors: []string{"#000005", "#808080"}, Particles: 3}.Plan(10, base, rnd)
	require.NoError(t, err)
	twinkling := 0
	for _, pa := range plan {
		if len(pa.Keyframes) == 3 {
			twinkling++
			assert.Equal(t, animation.Infinite, pa.Options.Repeat)
			assert.Less(t, pa.Options.Delay, 2*time.Second)
		}
	}
	assert.GreaterOrEqual(t, twinkling, 1)
	assert.LessOrEqual(t, twinkling, 3)

	plan, err = Scene{Name: "candy", Kind: SceneStripes, Colors: []string{"#ff0000", "#ffffff"}, StripeMin: 2, StripeMax: 4}.Plan(20, base, rnd)
	require.NoError(t, err)
	require.Len(t, plan, 20)
	for _, pa := range plan {
		require.Len(t, pa.Keyframes, 1)
		assert.Contains(t, []string{"#ff0000", "#ffffff"}, pa.Keyframes[0].Str())
	}

	plan, err = Scene{Name: "off", Colors: []string{"#000000"}}.Plan(2, base, rnd)
	require.NoError(t, err)
	assert.Equal(t, "#000000", plan[1].Keyframes[0].Str())

	_, err = Scene{Name: "bad", Kind: "fireworks"}.Plan(2, base, rnd)
	assert.Error(t, err)
	_, err = Scene{Name: "bad", Kind: SceneTwinkle}.Plan(2, base, rnd)
	assert.Error(t, err)
	_, err = Scene{Name: "bad", Kind: SceneStripes, Colors: []string{"nope"}}.Plan(2, base, rnd)
	assert.Error(t, err)
}

func TestController(t *testing.T) {
	f := newDeviceFixture()
	scenes := []Scene{
		{Name: "red", Colors: []string{"#ff0000"}},
		{Name: "blue", Colors: []string{"#0000ff"}},
	}
	transitions := animation.Transitions{"default": {Duration: 0.1, Ease: easing.List{easing.Named("linear")}}}
	c := NewController(f.engine, f.strip, f.device, scenes, transitions, time.Minute)
	c.Seed(1)
	assert.Equal(t, -1, c.Current())

	require.NoError(t, c.Next())
	assert.Equal(t, 0, c.Current())
	f.loop.Process(0)
	assert.Len(t, f.broker.under(testTopics.Program), 3)
	f.loop.Process(100 * time.Millisecond)
	for i := 0; i < f.strip.Len(); i++ {
		assert.Equal(t, "#ff0000", f.strip.Pixel(i).Get().Str())
	}

	require.NoError(t, c.Next())
	require.NoError(t, c.Next())
	assert.Equal(t, 0, c.Current())
	assert.Error(t, c.Show(5))
}

const configYAML = `
mqtt:
  url: tcp://broker:1883
  username: tree
  topics:
    program: lights/program
engine:
  fps: 60
  pregenerate:
    sampleDelta: 0.02
device:
  pixels: 100
animationTime: 30
transitions:
  default:
    duration: 2
    ease: [0.25, 0.1, 0.25, 1]
scenes:
  - name: rainbow
    kind: gradient
    length: 50
    gradient:
      - {hue: 0, pos: 0}
      - {hue: 360, pos: 1}
  - name: stars
    kind: twinkle
    colors: ["#000005", "#808080"]
    particles: 40
    transition:
      type: spring
      stiffness: 120
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker:1883", c.Mqtt.URL)
	assert.Equal(t, "ledmotion", c.Mqtt.ClientID)
	assert.Equal(t, "lights/program", c.Mqtt.Topics.Program)
	assert.Equal(t, "home/xmastree/stream", c.Mqtt.Topics.Stream)
	assert.Equal(t, 60, c.Engine.FPS)
	assert.Equal(t, "info", c.Engine.LogLevel)
	assert.Equal(t, 100, c.Device.Pixels)
	assert.Equal(t, "xmastree", c.Device.Name)
	assert.Equal(t, 30*time.Second, c.SceneDuration())
	assert.Equal(t, 20*time.Millisecond, c.EngineConfig().Pregenerate.SampleDelta)

	tr, ok := c.Transitions.For("color")
	require.True(t, ok)
	assert.Equal(t, 2.0, tr.Duration)
	require.Len(t, tr.Ease, 1)
	assert.Equal(t, []float64{0.25, 0.1, 0.25, 1}, tr.Ease[0].Bezier)

	require.Len(t, c.Scenes, 2)
	assert.Equal(t, GradientTable{{0, 0}, {360, 1}}, c.Scenes[0].Gradient)
	assert.Equal(t, generator.TypeSpring, c.Scenes[1].Transition.Type)
	assert.Equal(t, 40, c.Scenes[1].Particles)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
