// Package frameloop batches per-frame work into ordered steps.
//
// Every frame runs the steps in order: Read, ResolveKeyframes, Update,
// PreRender, Render, PostRender. A job scheduled into a later step while an
// earlier step is running still runs in the same frame; a job scheduled into
// a step that has already run (or is running) waits for the next frame.
package frameloop

import (
	"context"
	"sync"
	"time"

	"github.com/matt-g-everett/ledmotion/internal/logger"
)

var log = logger.New("frameloop")

// Step is a phase of a frame.
type Step int

const (
	Read Step = iota
	ResolveKeyframes
	Update
	PreRender
	Render
	PostRender
	numSteps
)

func (s Step) String() string {
	return [...]string{"read", "resolveKeyframes", "update", "preRender", "render", "postRender"}[s]
}

const (
	minDelta = time.Millisecond
	maxDelta = 40 * time.Millisecond
)

// FrameData describes the frame being processed.
type FrameData struct {
	// Delta is the time since the previous frame, clamped to [1ms, 40ms].
	Delta        time.Duration
	Timestamp    time.Duration
	IsProcessing bool
}

// Job is a scheduled callback.
type Job struct {
	step      Step
	fn        func(FrameData)
	keepAlive bool
	cancelled bool
}

type queue struct {
	next []*Job
}

// Loop is a frame scheduler. It is safe to schedule and cancel from any
// goroutine; jobs run on the goroutine calling Process or Run.
type Loop struct {
	mu       sync.Mutex
	steps    [numSteps]queue
	frame    FrameData
	started  time.Time
	manual   bool
	fps      int
	hasFrame bool
}

// New returns a loop driven by the wall clock at fps frames per second.
func New(fps int) *Loop {
	l := new(Loop)
	l.fps = fps
	if l.fps <= 0 {
		l.fps = 60
	}
	l.started = time.Now()
	return l
}

// NewManual returns a loop that only advances when Process or Advance is
// called. Now reports the last processed timestamp.
func NewManual() *Loop {
	l := New(60)
	l.manual = true
	return l
}

// Schedule queues fn for step. Keep-alive jobs are re-queued every frame
// until cancelled.
func (l *Loop) Schedule(step Step, fn func(FrameData), keepAlive bool) *Job {
	job := &Job{step: step, fn: fn, keepAlive: keepAlive}
	l.mu.Lock()
	l.steps[step].next = append(l.steps[step].next, job)
	l.mu.Unlock()
	return job
}

// Cancel removes job from the loop. Cancelling twice is a no-op.
func (l *Loop) Cancel(job *Job) {
	if job == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	job.cancelled = true
	q := &l.steps[job.step]
	for i, j := range q.next {
		if j == job {
			q.next = append(q.next[:i], q.next[i+1:]...)
			break
		}
	}
}

// Now is the loop's synchronised time. While a frame is processing every
// caller sees that frame's timestamp, so work started in one frame shares a
// start time.
func (l *Loop) Now() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frame.IsProcessing || l.manual {
		return l.frame.Timestamp
	}
	return time.Since(l.started)
}

// Frame returns the most recent frame data.
func (l *Loop) Frame() FrameData {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Pending reports whether any job is queued.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, q := range l.steps {
		if len(q.next) > 0 {
			return true
		}
	}
	return false
}

// Process runs one frame at timestamp.
func (l *Loop) Process(timestamp time.Duration) {
	l.mu.Lock()
	if l.hasFrame {
		l.frame.Delta = min(max(timestamp-l.frame.Timestamp, minDelta), maxDelta)
	} else {
		l.frame.Delta = time.Second / time.Duration(l.fps)
	}
	l.hasFrame = true
	l.frame.Timestamp = timestamp
	l.frame.IsProcessing = true
	l.mu.Unlock()

	for s := Read; s < numSteps; s++ {
		l.process(s)
	}

	l.mu.Lock()
	l.frame.IsProcessing = false
	l.mu.Unlock()
}

// Advance processes a frame d after the previous one.
func (l *Loop) Advance(d time.Duration) {
	l.Process(l.Frame().Timestamp + d)
}

func (l *Loop) process(s Step) {
	l.mu.Lock()
	jobs := l.steps[s].next
	l.steps[s].next = nil
	frame := l.frame
	l.mu.Unlock()

	for _, job := range jobs {
		l.mu.Lock()
		cancelled := job.cancelled
		if !cancelled && job.keepAlive {
			l.steps[s].next = append(l.steps[s].next, job)
		}
		l.mu.Unlock()
		if cancelled {
			continue
		}
		job.fn(frame)
	}
}

// Run processes frames at the loop's rate until ctx is done. Frames are
// skipped while nothing is scheduled.
func (l *Loop) Run(ctx context.Context) error {
	log.Info("Frame loop running at %d fps", l.fps)
	ticker := time.NewTicker(time.Second / time.Duration(l.fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Pending() {
				l.Process(time.Since(l.started))
			}
		}
	}
}
