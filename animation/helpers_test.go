package animation_test

import (
	"testing"
	"time"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/cell"
	"github.com/matt-g-everett/ledmotion/driver"
	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/timeline"
	"github.com/matt-g-everett/ledmotion/value"
)

type fixture struct {
	loop   *frameloop.Loop
	engine *animation.Engine
	host   *timeline.Host
	target *cell.Target
}

func newFixture(t *testing.T, cfg animation.Config) *fixture {
	t.Helper()
	f := new(fixture)
	f.loop = frameloop.NewManual()
	f.engine = animation.NewEngine(f.loop, cfg, nil)
	f.host = timeline.NewHost(f.loop, true)
	f.target = cell.NewTarget("x", "opacity", "color")
	return f
}

func (f *fixture) cell(v value.Value) *cell.Cell {
	return cell.New(v, f.loop, f.target)
}

// frames processes a frame every step up to and including until.
func (f *fixture) frames(until, step time.Duration) {
	for ts := f.loop.Frame().Timestamp + step; ts <= until; ts += step {
		f.loop.Process(ts)
	}
}

func (f *fixture) lastPlayback(t *testing.T) *timeline.Playback {
	t.Helper()
	pbs := f.host.Playbacks()
	if len(pbs) == 0 {
		t.Fatal("no playback created")
	}
	return pbs[len(pbs)-1]
}

// recorder collects every value written through OnUpdate.
type recorder struct {
	values []value.Value
}

func (r *recorder) update(v value.Value) { r.values = append(r.values, v) }

func (r *recorder) floats() []float64 {
	out := make([]float64, len(r.values))
	for i, v := range r.values {
		out[i] = v.Float()
	}
	return out
}

func linear(d time.Duration) generator.Options {
	return generator.Options{Duration: d, Ease: easing.List{easing.Named("linear")}}
}

func syncDriver(f *fixture) driver.Driver {
	return driver.Sync(f.loop, 10*time.Millisecond)
}

type endless struct{}

func (endless) Next(t time.Duration) generator.State {
	return generator.State{Value: value.Number(t.Seconds())}
}

func (endless) CalculatedDuration() (time.Duration, bool) { return 0, false }

func endlessFactory(generator.Options) (generator.Generator, error) { return endless{}, nil }

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
