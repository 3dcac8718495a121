package stream

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/value"
)

type deviceFixture struct {
	loop   *frameloop.Loop
	broker *fakeBroker
	device *Device
	engine *animation.Engine
	strip  *Strip
}

func newDeviceFixture() *deviceFixture {
	f := new(deviceFixture)
	f.loop = frameloop.NewManual()
	f.broker = newFakeBroker()
	f.device = NewDevice("tree", f.broker, testTopics, f.loop, true, nil)
	f.engine = animation.NewEngine(f.loop, animation.Config{}, nil)
	f.strip = NewStrip("tree", 3, f.loop, value.String("#000000"))
	return f
}

func (f *deviceFixture) animate(i int, keyframes []value.Value, g generator.Options) animation.Handle {
	return f.engine.Animate(f.strip.Pixel(i), keyframes, animation.Options{Options: g, Name: Property, Host: f.device})
}

func TestDeviceProgram(t *testing.T) {
	f := newDeviceFixture()
	h := f.animate(1, value.Strings("#000000", "#ff0000"), generator.Options{
		Duration: time.Second,
		Ease:     easing.List{easing.Named("easeOut")},
	})
	require.IsType(t, &animation.Accelerated{}, h)
	f.loop.Process(0)

	programs := f.broker.under(testTopics.Program)
	require.Len(t, programs, 1)
	assert.Equal(t, "tree/program/tree/1/color", programs[0].topic)

	p := decode[Program](t, programs[0])
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, Property, p.Property)
	assert.Equal(t, value.Strings("#000000", "#ff0000"), p.Keyframes)
	assert.Equal(t, 1000.0, p.Duration)
	assert.Equal(t, 1.0, p.Iterations)
	require.Len(t, p.Ease, 1)
	assert.Equal(t, []float64{0, 0, 0.58, 1}, p.Ease[0].Bezier)

	controls := f.broker.under(testTopics.Control)
	require.Len(t, controls, 1)
	assert.Equal(t, "tree/control/tree/1/color", controls[0].topic)
	c := decode[Control](t, controls[0])
	assert.Equal(t, ActionStart, c.Action)
	require.NotNil(t, c.Time)
	assert.Equal(t, 0.0, *c.Time)
	assert.Equal(t, 1, f.device.Active())

	f.loop.Process(500 * time.Millisecond)
	assert.Equal(t, "#000000", f.strip.Pixel(1).Get().Str())
	f.loop.Process(time.Second)
	assert.Equal(t, "#ff0000", f.strip.Pixel(1).Get().Str())
	assert.True(t, isClosed(h.Finished()))
	assert.Equal(t, 0, f.device.Active())
	assert.Len(t, f.broker.under(testTopics.Control), 1, "a finished program is not cancelled on the device")
}

func TestDeviceInfiniteProgram(t *testing.T) {
	f := newDeviceFixture()
	h := f.engine.Animate(f.strip.Pixel(0), value.Strings("#000000", "#ffffff"), animation.Options{
		Options:    generator.Options{Duration: time.Second},
		Name:       Property,
		Host:       f.device,
		Repeat:     animation.Infinite,
		RepeatType: animation.RepeatReverse,
	})
	f.loop.Process(0)

	p := decode[Program](t, f.broker.under(testTopics.Program)[0])
	assert.Equal(t, -1.0, p.Iterations)
	assert.Equal(t, animation.DirectionAlternate, p.Direction)

	h.SetSpeed(2)
	h.SetTime(250 * time.Millisecond)
	h.Pause()
	h.Play()
	h.Cancel()

	var actions []string
	for _, m := range f.broker.under(testTopics.Control) {
		actions = append(actions, decode[Control](t, m).Action)
	}
	assert.Equal(t, []string{ActionStart, ActionRate, ActionSeek, ActionPause, ActionPlay, ActionCancel}, actions)
	assert.Equal(t, 0, f.device.Active())
}

func TestDeviceStatus(t *testing.T) {
	f := newDeviceFixture()
	require.NoError(t, f.device.Listen())
	h := f.animate(0, value.Strings("#000000", "#ffffff"), generator.Options{Duration: 10 * time.Second})
	f.loop.Process(0)

	status, _ := json.Marshal(Status{ID: "1", Event: EventFinished})
	f.broker.deliver("tree/status/tree", status)
	assert.False(t, isClosed(h.Finished()), "status is applied on the frame loop")

	f.loop.Process(16 * time.Millisecond)
	assert.True(t, isClosed(h.Finished()))
	assert.Equal(t, "#ffffff", f.strip.Pixel(0).Get().Str())

	f.broker.deliver("tree/status/tree", []byte("garbage"))
	f.broker.deliver("tree/status/tree", status)
	f.loop.Process(32 * time.Millisecond)
}

func TestDeviceCancelledStatus(t *testing.T) {
	f := newDeviceFixture()
	require.NoError(t, f.device.Listen())
	h := f.animate(0, value.Strings("#000000", "#ffffff"), generator.Options{Duration: time.Second})
	f.loop.Process(0)

	status, _ := json.Marshal(Status{ID: "1", Event: EventCancelled})
	f.broker.deliver("tree/status/tree", status)
	f.loop.Process(16 * time.Millisecond)
	assert.Equal(t, animation.StateIdle, h.State())
	assert.Equal(t, 0, f.device.Active())
}

func TestDevicePublishFailure(t *testing.T) {
	f := newDeviceFixture()
	f.broker.err = errors.New("offline")
	h := f.animate(0, value.Strings("#000000", "#ffffff"), generator.Options{Duration: time.Second})
	f.loop.Process(0)

	assert.EqualError(t, h.Err(), "offline")
	assert.True(t, isClosed(h.Finished()))
	assert.Equal(t, "#000000", f.strip.Pixel(0).Get().Str())
}

func TestDisconnectedStripRunsInSoftware(t *testing.T) {
	f := newDeviceFixture()
	f.strip.SetConnected(false)
	h := f.animate(0, value.Strings("#000000", "#ffffff"), generator.Options{Duration: time.Second})
	require.IsType(t, &animation.MainThread{}, h)

	f.strip.SetConnected(true)
	f.strip.SetStreaming(true)
	h = f.animate(0, value.Strings("#000000", "#ffffff"), generator.Options{Duration: time.Second})
	require.IsType(t, &animation.MainThread{}, h)
	f.loop.Process(0)
	assert.Empty(t, f.broker.under(testTopics.Program))
}

func TestDeviceSpringIsPregenerated(t *testing.T) {
	f := newDeviceFixture()
	f.engine.Animate(f.strip.Pixel(2), value.Strings("#000000", "#ffffff"), animation.Options{
		Name: Property,
		Host: f.device,
		Type: generator.TypeSpring,
	})
	f.loop.Process(0)

	p := decode[Program](t, f.broker.under(testTopics.Program)[0])
	assert.Greater(t, len(p.Keyframes), 2)
	assert.Equal(t, "rgba(255, 255, 255, 1)", p.Keyframes[len(p.Keyframes)-1].Str())
	require.Len(t, p.Ease, 1)
	assert.Equal(t, "linear", p.Ease[0].Name)
	assert.Equal(t, float64(len(p.Keyframes)-1)*10, p.Duration)
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
