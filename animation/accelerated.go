package animation

import (
	"fmt"
	"time"

	"github.com/matt-g-everett/ledmotion/easing"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/metrics"
	"github.com/matt-g-everett/ledmotion/resolve"
	"github.com/matt-g-everett/ledmotion/value"
)

// Accelerated plays an animation on a Host timeline.
type Accelerated struct {
	base
	resolved *accelResolved

	// deferred holds actions requested before the playback existed. They
	// are replayed once, in order, when it is created.
	deferred         []func(*accelResolved)
	timelineAttached bool
}

type accelResolved struct {
	playback  Playback
	keyframes []value.Value
	final     value.Value
	duration  time.Duration
	times     []float64
	ease      easing.List
	// pregenerated is true when keyframes were sampled from a generator.
	pregenerated bool
}

// SupportsAcceleration reports whether opts can run on a host timeline.
func SupportsAcceleration(opts Options) bool {
	if opts.Host == nil || opts.Subject == nil {
		return false
	}
	owner := ownerOf(opts.Subject)
	if owner == nil || !owner.HasLiveOwner() {
		return false
	}
	return opts.Name != "" &&
		owner.SupportsAcceleratedProperty(opts.Name) &&
		!owner.HasUpdateObserver() &&
		opts.OnUpdate == nil &&
		opts.RepeatDelay == 0 &&
		opts.RepeatType != RepeatMirror &&
		(opts.Damping == nil || *opts.Damping != 0) &&
		opts.Type != generator.TypeInertia
}

func newAccelerated(e *Engine, opts Options) *Accelerated {
	a := new(Accelerated)
	a.init(e, opts, metrics.KindAccelerated)
	a.scheduleResolve(a.onResolved)
	return a
}

// requiresPregeneration reports whether the host cannot play opts as is.
func requiresPregeneration(opts Options, supportsLinear bool) bool {
	return opts.Generator != nil ||
		opts.Type == generator.TypeSpring ||
		opts.Type == generator.TypeInertia ||
		!opts.Ease.Native(supportsLinear)
}

func (a *Accelerated) onResolved(r resolve.Resolved) {
	owner := ownerOf(a.opts.Subject)
	if owner == nil || !owner.HasLiveOwner() {
		a.deferred = nil
		a.fail(ErrSubjectDetached, "detached")
		return
	}

	host := a.opts.Host
	supportsLinear := host.SupportsLinearEasing()
	res := &accelResolved{
		keyframes: r.Keyframes,
		final:     r.Final,
		duration:  a.opts.Duration,
		times:     a.opts.Times,
		ease:      a.opts.Ease,
	}

	if requiresPregeneration(a.opts, supportsLinear) {
		if err := a.pregenerate(res); err != nil {
			a.deferred = nil
			a.fail(err, "pregenerate")
			return
		}
	}
	if len(res.keyframes) == 1 {
		res.keyframes = append(res.keyframes, res.keyframes[0])
	}

	ease, ok := res.ease.ToNative(supportsLinear, res.duration)
	if !ok {
		a.deferred = nil
		a.fail(fmt.Errorf("animation: ease %v cannot run on the host", res.ease), "ease")
		return
	}
	res.ease = ease

	timing := Timing{
		Delay:      a.opts.Delay,
		Duration:   res.duration,
		Ease:       res.ease,
		Times:      res.times,
		Iterations: a.opts.iterations(),
		Direction:  DirectionNormal,
	}
	if a.opts.RepeatType == RepeatReverse {
		timing.Direction = DirectionAlternate
	}

	pb, err := host.Create(owner, a.opts.Name, res.keyframes, timing)
	if err != nil {
		a.deferred = nil
		a.fail(err, "host")
		return
	}
	pb.SetStartTime(a.startTime())
	if a.opts.Paused {
		pb.Pause()
	}
	if !a.timelineAttached {
		pb.OnFinish(a.onFinish)
	}
	res.playback = pb
	a.resolved = res
	a.markStarted()

	deferred := a.deferred
	a.deferred = nil
	for _, fn := range deferred {
		fn(res)
	}
}

// pregenerate samples a software animation into linear keyframes.
func (a *Accelerated) pregenerate(res *accelResolved) error {
	cfg := a.engine.cfg.Pregenerate.withDefaults()

	opts := a.opts
	opts.Keyframes = res.keyframes
	opts.Repeat = 0
	opts.Delay = 0
	sampler, err := newSampler(a.engine, opts)
	if err != nil {
		return err
	}

	var keyframes []value.Value
	state := generator.State{}
	var t time.Duration
	for !state.Done && t < cfg.MaxDuration {
		state = sampler.sample(t)
		keyframes = append(keyframes, state.Value)
		t += cfg.SampleDelta
	}
	duration := t - cfg.SampleDelta
	if !state.Done {
		log.Warn("Pregenerating %q stopped at %v before the animation settled", a.opts.Name, cfg.MaxDuration)
		a.engine.metrics.PregenerationOverflow()
		keyframes = append(keyframes, keyframes[len(keyframes)-1])
		duration = t
	}

	res.keyframes = keyframes
	res.duration = duration
	res.times = nil
	res.ease = easing.List{easing.Named("linear")}
	res.pregenerated = true
	return nil
}

func (a *Accelerated) onFinish() {
	a.write(a.resolved.final)
	if a.opts.OnComplete != nil {
		a.opts.OnComplete()
	}
	a.resolved.playback.Cancel()
	a.state = StateFinished
	a.markEnded(a.engine.metrics.Finished)
	a.settle()
}

func (a *Accelerated) resolvedNow() *accelResolved {
	if a.resolved == nil {
		a.flush()
	}
	return a.resolved
}

// whenReady runs fn now if the playback exists, otherwise after it is
// created.
func (a *Accelerated) whenReady(fn func(*accelResolved)) {
	if a.resolved != nil {
		fn(a.resolved)
		return
	}
	if a.state == StateFinished || a.state == StateCancelled {
		return
	}
	a.deferred = append(a.deferred, fn)
}

func (a *Accelerated) Play() {
	if a.stopped {
		return
	}
	a.whenReady(func(r *accelResolved) {
		if a.state == StateFinished || a.state == StateCancelled {
			a.renew()
			a.state = StateIdle
			a.markStarted()
		}
		r.playback.Play()
	})
}

func (a *Accelerated) Pause() {
	a.whenReady(func(r *accelResolved) { r.playback.Pause() })
}

func (a *Accelerated) Complete() {
	a.whenReady(func(r *accelResolved) { r.playback.Finish() })
}

func (a *Accelerated) Cancel() {
	if a.stopped || a.state == StateFinished || a.state == StateCancelled {
		return
	}
	if a.resolved == nil {
		if a.resolver != nil {
			a.resolver.Cancel()
		}
		a.deferred = nil
	} else {
		a.resolved.playback.Cancel()
	}
	a.state = StateCancelled
	a.markEnded(a.engine.metrics.Cancelled)
	a.settle()
	a.renew()
}

// Stop cancels the host timeline after writing its current value and
// velocity to the subject, sampled from a software copy of the animation.
func (a *Accelerated) Stop() {
	if a.resolver != nil {
		a.resolver.Cancel()
	}
	a.stopped = true
	if a.State() == StateIdle {
		a.settle()
		return
	}
	a.settle()

	r := a.resolved
	if r == nil {
		return
	}
	if ps := r.playback.PlayState(); ps == StateIdle || ps == StateFinished {
		return
	}

	if t := r.playback.CurrentTime(); t != 0 {
		a.writeVelocity(r, t)
	}
	if a.opts.OnStop != nil {
		a.opts.OnStop()
	}
	r.playback.Cancel()
	a.state = StateIdle
	a.markEnded(a.engine.metrics.Stopped)
}

func (a *Accelerated) writeVelocity(r *accelResolved, t time.Duration) {
	delta := a.engine.cfg.Pregenerate.withDefaults().SampleDelta

	opts := a.opts
	opts.Keyframes = r.keyframes
	opts.Duration = r.duration
	opts.Ease = r.ease
	opts.Times = r.times
	if r.pregenerated {
		opts.Type = generator.TypeKeyframes
		opts.Generator = nil
	}
	sampler, err := newSampler(a.engine, opts)
	if err != nil {
		log.Warn("Sampling %q for velocity failed: %v", a.opts.Name, err)
		return
	}

	// Near the start the earlier sample would clamp to zero, so measure
	// over the time actually elapsed.
	from := max(t-delta, 0)
	prev := sampler.sample(from).Value
	current := sampler.sample(t).Value
	if vs, ok := a.opts.Subject.(VelocitySetter); ok {
		vs.SetWithVelocity(prev, current, t-from)
		return
	}
	a.opts.Subject.Set(current)
}

func (a *Accelerated) Time() time.Duration {
	if r := a.resolvedNow(); r != nil {
		return r.playback.CurrentTime()
	}
	return 0
}

func (a *Accelerated) SetTime(t time.Duration) {
	a.whenReady(func(r *accelResolved) { r.playback.SetCurrentTime(t) })
}

func (a *Accelerated) Speed() float64 {
	if r := a.resolvedNow(); r != nil {
		return r.playback.PlaybackRate()
	}
	return 1
}

func (a *Accelerated) SetSpeed(speed float64) {
	a.whenReady(func(r *accelResolved) { r.playback.SetPlaybackRate(speed) })
}

// Duration is the length of one iteration as played by the host.
func (a *Accelerated) Duration() time.Duration {
	if r := a.resolvedNow(); r != nil {
		return r.duration
	}
	return 0
}

func (a *Accelerated) State() State {
	if a.state == StateFinished || a.state == StateCancelled {
		return a.state
	}
	r := a.resolvedNow()
	if a.state == StateFinished || a.state == StateCancelled {
		return a.state
	}
	if r == nil {
		return StateIdle
	}
	return r.playback.PlayState()
}

// AttachTimeline hands the playback to tl. Natural completion is no longer
// reported once a timeline is attached before the playback is created.
func (a *Accelerated) AttachTimeline(tl Timeline) {
	if a.resolved == nil {
		a.timelineAttached = true
	}
	a.whenReady(func(r *accelResolved) { r.playback.AttachTimeline(tl) })
}
