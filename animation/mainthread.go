package animation

import (
	"math"
	"time"

	"github.com/matt-g-everett/ledmotion/driver"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/generator"
	"github.com/matt-g-everett/ledmotion/metrics"
	"github.com/matt-g-everett/ledmotion/resolve"
	"github.com/matt-g-everett/ledmotion/value"
)

// MainThread samples its generator on every driver tick and writes the value
// to the subject.
type MainThread struct {
	base
	resolved *mainResolved

	pendingState State
	speed        float64
	currentTime  time.Duration
	startTime    time.Duration
	hasStart     bool
	holdTime     time.Duration
	hasHold      bool
	cancelTime   time.Duration
	hasCancel    bool

	driver      driver.Driver
	stopDriver  func()
	timelineJob *frameloop.Job
}

type mainResolved struct {
	keyframes []value.Value
	final     value.Value
	gen       generator.Generator
	mirrored  generator.Generator
	// percent maps a physics generator's 0..100 output onto string
	// keyframes.
	percent value.MixFunc

	calculated time.Duration
	resolved   time.Duration
	total      time.Duration
}

func newMainThread(e *Engine, opts Options) *MainThread {
	m := new(MainThread)
	m.init(e, opts, metrics.KindMainThread)
	m.speed = 1
	m.pendingState = StateRunning
	m.scheduleResolve(m.onResolved)
	return m
}

// newSampler returns an idle animation over keyframes that are already
// resolved. It never writes to a subject and is only used through sample.
func newSampler(e *Engine, opts Options) (*MainThread, error) {
	opts.sampler = true
	opts.Subject = nil
	opts.OnUpdate = nil
	opts.OnComplete = nil
	m := new(MainThread)
	m.init(e, opts, metrics.KindMainThread)
	m.speed = 1
	m.attempted = true
	final := resolve.FinalKeyframe(opts.Keyframes, opts.Repeat, opts.alternate())
	r, err := m.initPlayback(opts.Keyframes, final)
	if err != nil {
		return nil, err
	}
	m.resolved = r
	return m, nil
}

func (m *MainThread) onResolved(r resolve.Resolved) {
	if m.stopped {
		return
	}
	res, err := m.initPlayback(r.Keyframes, r.Final)
	if err != nil {
		m.fail(err, "generator")
		return
	}
	m.resolved = res

	m.Play()
	if m.pendingState == StatePaused || m.opts.Paused {
		m.Pause()
	} else {
		m.state = m.pendingState
	}
}

func (m *MainThread) initPlayback(keyframes []value.Value, final value.Value) (*mainResolved, error) {
	factory, err := m.opts.factory()
	if err != nil {
		return nil, err
	}

	r := &mainResolved{keyframes: keyframes, final: final}
	gopts := m.opts.Options
	gopts.Keyframes = keyframes

	physics := m.opts.Generator != nil || (m.opts.Type != "" && m.opts.Type != generator.TypeKeyframes && m.opts.Type != generator.TypeTween)
	if physics && !keyframes[0].IsNumber() {
		mix := value.Mix(keyframes[0], keyframes[len(keyframes)-1])
		r.percent = mix
		gopts.Keyframes = value.Numbers(0, 100)
	}

	if r.gen, err = factory(gopts); err != nil {
		return nil, err
	}
	if m.opts.RepeatType == RepeatMirror {
		mirrored := gopts
		mirrored.Keyframes = reversedValues(gopts.Keyframes)
		mirrored.Velocity = -gopts.Velocity
		if r.mirrored, err = factory(mirrored); err != nil {
			return nil, err
		}
	}

	r.calculated = generator.CalcDuration(r.gen)
	r.resolved = addDuration(r.calculated, m.opts.RepeatDelay)
	switch {
	case r.resolved == generator.Infinite, m.opts.Repeat == Infinite:
		r.total = generator.Infinite
	default:
		r.total = r.resolved*time.Duration(m.opts.Repeat+1) - m.opts.RepeatDelay
	}
	return r, nil
}

func (m *MainThread) resolvedNow() *mainResolved {
	if m.resolved == nil {
		m.flush()
	}
	return m.resolved
}

// tick advances to timestamp. With sample set, timestamp is used as the
// elapsed time directly.
func (m *MainThread) tick(timestamp time.Duration, sample bool) generator.State {
	r := m.resolvedNow()
	if r == nil {
		kf := m.opts.Keyframes
		return generator.State{Value: kf[len(kf)-1], Done: true}
	}
	if !m.hasStart {
		return r.gen.Next(0)
	}

	if m.speed > 0 {
		m.startTime = min(m.startTime, timestamp)
	} else if m.speed < 0 && r.total != generator.Infinite {
		m.startTime = min(timestamp-scale(r.total, 1/m.speed), m.startTime)
	}

	switch {
	case sample:
		m.currentTime = timestamp
	case m.hasHold:
		m.currentTime = m.holdTime
	default:
		m.currentTime = scale((timestamp - m.startTime).Round(time.Millisecond), m.speed)
	}

	delay := m.opts.Delay
	if m.speed < 0 {
		delay = -delay
	}
	withoutDelay := m.currentTime - delay
	inDelay := withoutDelay < 0
	if m.speed < 0 {
		inDelay = withoutDelay > r.total
	}
	m.currentTime = max(withoutDelay, 0)

	if m.state == StateFinished && !m.hasHold {
		m.currentTime = r.total
	}

	elapsed := m.currentTime
	gen := r.gen
	if m.opts.Repeat != 0 && r.resolved != generator.Infinite && r.resolved > 0 {
		progress := float64(min(m.currentTime, r.total)) / float64(r.resolved)
		iteration := math.Floor(progress)
		iterationProgress := math.Mod(progress, 1)
		if iterationProgress == 0 && progress >= 1 {
			iterationProgress = 1
		}
		if iterationProgress == 1 {
			iteration--
		}
		if m.opts.Repeat != Infinite {
			iteration = min(iteration, float64(m.opts.Repeat+1))
		}
		if int64(iteration)%2 == 1 {
			switch m.opts.RepeatType {
			case RepeatReverse:
				iterationProgress = 1 - iterationProgress
				if m.opts.RepeatDelay > 0 {
					iterationProgress -= float64(m.opts.RepeatDelay) / float64(r.resolved)
				}
			case RepeatMirror:
				gen = r.mirrored
			}
		}
		elapsed = time.Duration(min(max(iterationProgress, 0), 1) * float64(r.resolved))
	}

	var state generator.State
	if inDelay {
		state = generator.State{Value: r.keyframes[0]}
	} else {
		state = gen.Next(elapsed)
	}
	if r.percent != nil {
		p := state.Value.Float() / 100
		if inDelay {
			p = 0
		}
		state.Value = r.percent(p)
	}

	if !inDelay {
		if m.speed >= 0 {
			state.Done = m.currentTime >= r.total
		} else {
			state.Done = m.currentTime <= 0
		}
	}

	finished := !m.hasHold && (m.state == StateFinished || (m.state == StateRunning && state.Done))
	if finished {
		state.Value = r.final
	}
	m.write(state.Value)
	if finished {
		m.finish()
	}
	return state
}

// sample returns the state at elapsed time t without side effects on a
// subject.
func (m *MainThread) sample(t time.Duration) generator.State {
	m.startTime = 0
	m.hasStart = true
	return m.tick(t, true)
}

func (m *MainThread) Play() {
	if m.stopped {
		return
	}
	if m.resolver != nil && !m.resolver.Complete() {
		m.resolver.Resume()
	}
	if m.resolved == nil {
		m.pendingState = StateRunning
		return
	}

	if m.driver == nil {
		m.driver = m.opts.Driver
		if m.driver == nil {
			m.driver = driver.FrameLoop(m.engine.loop)
		}
	}
	if m.opts.OnPlay != nil {
		m.opts.OnPlay()
	}

	now := m.driver.Now()
	switch {
	case m.hasHold:
		m.startTime = now - m.holdTime
	case m.state == StateFinished, m.state == StateCancelled:
		m.startTime = now
	case !m.hasStart:
		m.startTime = m.base.startTime()
	}
	m.hasStart = true
	if m.state == StateFinished || m.state == StateCancelled {
		m.renew()
	}

	m.cancelTime = m.startTime
	m.hasCancel = true
	m.hasHold = false
	m.state = StateRunning
	m.markStarted()
	if m.stopDriver == nil {
		m.stopDriver = m.driver.Start(func(ts time.Duration) { m.tick(ts, false) })
	}
}

func (m *MainThread) Pause() {
	if m.resolved == nil {
		m.pendingState = StatePaused
		return
	}
	m.state = StatePaused
	m.holdTime = m.currentTime
	m.hasHold = true
}

func (m *MainThread) Complete() {
	if m.state != StateRunning {
		m.Play()
	}
	m.pendingState = StateFinished
	m.state = StateFinished
	m.hasHold = false
}

func (m *MainThread) finish() {
	m.teardown()
	m.state = StateFinished
	m.markEnded(m.engine.metrics.Finished)
	if m.opts.OnComplete != nil {
		m.opts.OnComplete()
	}
	m.settle()
}

// Cancel rewinds the subject to the first sample and discards the animation.
func (m *MainThread) Cancel() {
	if m.stopped || m.state == StateFinished || m.state == StateCancelled {
		return
	}
	if m.hasCancel {
		m.tick(m.cancelTime, false)
	}
	m.teardown()
	m.state = StateCancelled
	m.markEnded(m.engine.metrics.Cancelled)
	m.settle()
	m.renew()
}

// Stop halts the animation where it is.
func (m *MainThread) Stop() {
	if m.resolver != nil {
		m.resolver.Cancel()
	}
	m.stopped = true
	if m.state == StateIdle {
		m.settle()
		return
	}
	m.teardown()
	m.markEnded(m.engine.metrics.Stopped)
	m.settle()
	if m.opts.OnStop != nil {
		m.opts.OnStop()
	}
}

func (m *MainThread) teardown() {
	m.state = StateIdle
	if m.stopDriver != nil {
		m.stopDriver()
		m.stopDriver = nil
	}
	if m.timelineJob != nil {
		m.engine.loop.Cancel(m.timelineJob)
		m.timelineJob = nil
	}
	m.hasStart = false
	m.hasCancel = false
	if m.resolver != nil {
		m.resolver.Cancel()
	}
}

func (m *MainThread) Time() time.Duration { return m.currentTime }

func (m *MainThread) SetTime(t time.Duration) {
	m.currentTime = t
	if m.hasHold || m.speed == 0 {
		m.holdTime = t
		m.hasHold = true
	} else if m.driver != nil {
		m.startTime = m.driver.Now() - scale(t, 1/m.speed)
		m.hasStart = true
	}
}

func (m *MainThread) Speed() float64 { return m.speed }

func (m *MainThread) SetSpeed(speed float64) {
	changed := m.speed != speed
	m.speed = speed
	if changed {
		m.SetTime(m.currentTime)
	}
}

// Duration is the length of one iteration.
func (m *MainThread) Duration() time.Duration {
	if r := m.resolvedNow(); r != nil {
		return r.calculated
	}
	return 0
}

func (m *MainThread) State() State { return m.state }

// AttachTimeline pauses the animation and sets its time from tl's progress
// on every frame.
func (m *MainThread) AttachTimeline(tl Timeline) {
	m.Pause()
	if m.timelineJob != nil {
		m.engine.loop.Cancel(m.timelineJob)
	}
	m.timelineJob = m.engine.loop.Schedule(frameloop.Update, func(frameloop.FrameData) {
		m.SetTime(scale(m.Duration(), tl.Progress()))
	}, true)
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}

func addDuration(a, b time.Duration) time.Duration {
	if a == generator.Infinite || b == generator.Infinite || a > generator.Infinite-b {
		return generator.Infinite
	}
	return a + b
}

func reversedValues(in []value.Value) []value.Value {
	out := make([]value.Value, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
