package animation

import (
	"time"

	"github.com/matt-g-everett/ledmotion/resolve"
	"github.com/matt-g-everett/ledmotion/value"
)

// maxResolveDelay is how long resolution may take before an animation starts
// from the resolution time instead of its creation time.
const maxResolveDelay = 40 * time.Millisecond

// base holds what both animators share: the resolver, the completion
// channel and the start time bookkeeping.
type base struct {
	engine *Engine
	opts   Options
	kind   string

	resolver   *resolve.Resolver
	createdAt  time.Duration
	resolvedAt time.Duration
	attempted  bool
	stopped    bool
	err        error
	state      State

	finished chan struct{}
	settled  bool
	active   bool
}

func (b *base) init(e *Engine, opts Options, kind string) {
	b.engine = e
	b.opts = opts
	b.kind = kind
	b.createdAt = e.loop.Now()
	b.finished = make(chan struct{})
}

// scheduleResolve starts keyframe resolution on the engine's batch.
func (b *base) scheduleResolve(onResolved func(resolve.Resolved)) {
	b.resolver = resolve.New(b.engine.batch, resolve.Request{
		Keyframes: b.opts.Keyframes,
		Subject:   b.opts.Subject,
		Repeat:    b.opts.Repeat,
		Alternate: b.opts.alternate(),
	}, func(r resolve.Resolved, err error) {
		if b.admit(r, err) {
			onResolved(r)
		}
	})
	b.resolver.ScheduleResolve()
}

// flush forces resolution when nothing has been resolved yet, so getters
// called straight after creation see real values.
func (b *base) flush() {
	if !b.attempted && b.resolver != nil && !b.resolver.Complete() {
		b.engine.batch.Flush()
	}
}

// admit records the resolution and reports whether playback should be
// initialised. Failures and animations with nothing to animate settle here.
func (b *base) admit(r resolve.Resolved, err error) bool {
	b.resolvedAt = b.engine.loop.Now()
	b.attempted = true

	if err != nil {
		b.fail(err, "resolve")
		return false
	}

	if !b.opts.sampler && !canAnimate(r.Keyframes, b.opts) {
		if b.engine.cfg.SkipAnimations || b.opts.Delay == 0 {
			b.write(r.Final)
			b.state = StateFinished
			if b.opts.OnComplete != nil {
				b.opts.OnComplete()
			}
			b.settle()
			return false
		}
		b.opts.Duration = 0
	}
	return true
}

func (b *base) fail(err error, reason string) {
	b.err = err
	b.state = StateFinished
	log.Warn("%s animation of %q failed: %v", b.kind, b.opts.Name, err)
	b.engine.metrics.Failed(b.kind, reason)
	b.settle()
}

// write sends v to the subject and the update callback.
func (b *base) write(v value.Value) {
	if b.opts.Subject != nil {
		b.opts.Subject.Set(v)
	}
	if b.opts.OnUpdate != nil {
		b.opts.OnUpdate(v)
	}
}

func (b *base) calcStartTime() time.Duration {
	if !b.attempted {
		return b.createdAt
	}
	if b.resolvedAt-b.createdAt > maxResolveDelay {
		return b.resolvedAt
	}
	return b.createdAt
}

func (b *base) startTime() time.Duration {
	if b.opts.StartTime != nil {
		return *b.opts.StartTime
	}
	return b.calcStartTime()
}

func (b *base) settle() {
	if !b.settled {
		b.settled = true
		close(b.finished)
	}
}

func (b *base) renew() {
	if b.settled {
		b.settled = false
		b.finished = make(chan struct{})
	}
}

func (b *base) Finished() <-chan struct{} { return b.finished }

func (b *base) Err() error { return b.err }

func (b *base) markStarted() {
	if !b.active {
		b.active = true
		b.engine.metrics.Started(b.kind)
	}
}

func (b *base) markEnded(record func(kind string)) {
	if b.active {
		b.active = false
		record(b.kind)
	}
}

// canAnimate reports whether keyframes describe any motion: both ends must be
// animatable and something must change, unless a spring has velocity to
// spend.
func canAnimate(keyframes []value.Value, opts Options) bool {
	if len(keyframes) == 0 || keyframes[0].IsNone() {
		return false
	}
	if !value.Animatable(keyframes[0]) || !value.Animatable(keyframes[len(keyframes)-1]) {
		return false
	}
	for _, kf := range keyframes[1:] {
		if !kf.Equal(keyframes[0]) {
			return true
		}
	}
	return (opts.isSpring() || opts.Generator != nil) && opts.Velocity != 0
}
