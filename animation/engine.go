package animation

import (
	"time"

	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/internal/logger"
	"github.com/matt-g-everett/ledmotion/metrics"
	"github.com/matt-g-everett/ledmotion/resolve"
	"github.com/matt-g-everett/ledmotion/value"
)

var log = logger.New("animation")

// Engine creates animations that share a frame loop and a resolution batch.
type Engine struct {
	loop    *frameloop.Loop
	batch   *resolve.Batch
	cfg     Config
	metrics *metrics.Metrics
}

// NewEngine returns an engine on loop. m may be nil.
func NewEngine(loop *frameloop.Loop, cfg Config, m *metrics.Metrics) *Engine {
	e := new(Engine)
	e.loop = loop
	e.batch = resolve.NewBatch(loop)
	e.cfg = cfg
	e.metrics = m
	return e
}

// Loop returns the engine's frame loop.
func (e *Engine) Loop() *frameloop.Loop { return e.loop }

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.cfg }

// New creates an animation, choosing an accelerated one when the options
// allow it. The choice is made once.
func (e *Engine) New(opts Options) Handle {
	if opts.Duration == 0 && opts.Generator == nil &&
		(opts.Type == "" || opts.Type == generator.TypeKeyframes || opts.Type == generator.TypeTween) {
		opts.Duration = DefaultDuration
	}
	if SupportsAcceleration(opts) {
		log.Debug("Accelerating %q on the host timeline", opts.Name)
		return newAccelerated(e, opts)
	}
	return newMainThread(e, opts)
}

// Animate animates subject through keyframes. A single keyframe animates
// from the subject's current value. Missing timing comes from
// DefaultTransition, and the subject's velocity carries into the new
// animation. Subjects implementing Starter have their running animation
// stopped first.
func (e *Engine) Animate(subject Subject, keyframes []value.Value, opts Options) Handle {
	if len(keyframes) == 1 {
		keyframes = []value.Value{value.None(), keyframes[0]}
	}
	opts.Subject = subject
	opts.Keyframes = keyframes
	opts = DefaultTransition(opts)

	if e.cfg.SkipAnimations {
		final := resolve.FinalKeyframe(keyframes, opts.Repeat, opts.alternate())
		if final.IsNone() {
			final = subject.Get()
		}
		if !final.IsNone() {
			subject.Set(final)
			if opts.OnUpdate != nil {
				opts.OnUpdate(final)
			}
			if opts.OnComplete != nil {
				opts.OnComplete()
			}
			return finishedHandle{}
		}
	}

	start := func() Handle {
		if vr, ok := subject.(VelocityReader); ok && opts.Velocity == 0 {
			opts.Velocity = vr.Velocity()
		}
		return e.New(opts)
	}
	if s, ok := subject.(Starter); ok {
		return s.Start(start)
	}
	return start()
}

var closed = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// finishedHandle is returned when there is nothing left to play.
type finishedHandle struct{}

func (finishedHandle) Play()                     {}
func (finishedHandle) Pause()                    {}
func (finishedHandle) Stop()                     {}
func (finishedHandle) Cancel()                   {}
func (finishedHandle) Complete()                 {}
func (finishedHandle) Time() time.Duration       { return 0 }
func (finishedHandle) SetTime(time.Duration)     {}
func (finishedHandle) Speed() float64            { return 1 }
func (finishedHandle) SetSpeed(float64)          {}
func (finishedHandle) Duration() time.Duration   { return 0 }
func (finishedHandle) State() State              { return StateFinished }
func (finishedHandle) Finished() <-chan struct{} { return closed }
func (finishedHandle) AttachTimeline(Timeline)   {}
func (finishedHandle) Err() error                { return nil }
