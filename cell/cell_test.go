package cell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/driver"
	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/value"
)

func TestVelocity(t *testing.T) {
	loop := frameloop.NewManual()
	c := New(value.Number(0), loop, nil)

	loop.Process(10 * time.Millisecond)
	c.Set(value.Number(1))
	loop.Process(20 * time.Millisecond)
	c.Set(value.Number(2))
	assert.InDelta(t, 100, c.Velocity(), 1e-9)

	loop.Process(60 * time.Millisecond)
	assert.Equal(t, 0.0, c.Velocity(), "stale values have no velocity")
}

func TestSetWithVelocity(t *testing.T) {
	loop := frameloop.NewManual()
	loop.Process(time.Second)
	c := New(value.Number(0), loop, nil)
	c.SetWithVelocity(value.Number(10), value.Number(15), 10*time.Millisecond)
	assert.InDelta(t, 500, c.Velocity(), 1e-9)
	assert.Equal(t, value.Number(15), c.Get())
}

func TestStringVelocity(t *testing.T) {
	loop := frameloop.NewManual()
	c := New(value.String("#000"), loop, nil)
	loop.Process(10 * time.Millisecond)
	c.Set(value.String("#fff"))
	assert.Equal(t, 0.0, c.Velocity())
}

func TestOnChange(t *testing.T) {
	c := New(value.Number(0), frameloop.NewManual(), nil)
	var seen []value.Value
	unsubscribe := c.OnChange(func(v value.Value) { seen = append(seen, v) })
	c.Set(value.Number(1))
	unsubscribe()
	c.Set(value.Number(2))
	assert.Equal(t, value.Numbers(1), seen)
}

func TestLookup(t *testing.T) {
	c := New(value.None(), frameloop.NewManual(), nil)
	c.Define("accent", value.String("#f00"))
	v, ok := c.Lookup("accent")
	assert.True(t, ok)
	assert.Equal(t, "#f00", v.Str())
}

func TestTarget(t *testing.T) {
	target := NewTarget("color")
	c := New(value.None(), frameloop.NewManual(), target)
	require.NotNil(t, c.Owner())
	assert.True(t, c.Owner().SupportsAcceleratedProperty("color"))
	assert.False(t, c.Owner().SupportsAcceleratedProperty("x"))
	target.Detach()
	assert.False(t, c.Owner().HasLiveOwner())
	target.Attach()
	assert.True(t, c.Owner().HasLiveOwner())
	target.Observe(true)
	assert.True(t, c.Owner().HasUpdateObserver())
	assert.Nil(t, New(value.None(), frameloop.NewManual(), nil).Owner())
}

func TestOneAnimationAtATime(t *testing.T) {
	loop := frameloop.NewManual()
	engine := animation.NewEngine(loop, animation.Config{}, nil)
	c := New(value.Number(0), loop, nil)

	opts := animation.Options{
		Options: generator.Options{Duration: time.Second, Ease: easing.List{easing.Named("linear")}},
		Driver:  driver.FrameLoop(loop),
	}
	first := engine.Animate(c, value.Numbers(100), opts)
	loop.Process(0)
	loop.Process(100 * time.Millisecond)
	assert.InDelta(t, 10, c.Get().Float(), 1e-6)
	assert.True(t, c.IsAnimating())

	second := engine.Animate(c, value.Numbers(-100), opts)
	assert.Equal(t, animation.StateIdle, first.State(), "previous animation is stopped")
	loop.Process(200 * time.Millisecond)
	loop.Process(300 * time.Millisecond)
	assert.Same(t, second, c.Animation())
	assert.Less(t, c.Get().Float(), 10.0)

	c.Stop()
	assert.False(t, c.IsAnimating())

	third := engine.Animate(c, value.Numbers(0), opts)
	loop.Process(400 * time.Millisecond)
	assert.True(t, c.IsAnimating())
	third.Stop()
	assert.Equal(t, animation.StateIdle, third.State())
	assert.False(t, c.IsAnimating(), "a handle stopped directly no longer drives the cell")
}
