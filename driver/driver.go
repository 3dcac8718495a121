// Package driver provides tick sources for software animations.
package driver

import (
	"time"

	"github.com/matt-g-everett/ledmotion/frameloop"
)

// Driver calls update with a timestamp once per tick until stopped.
type Driver interface {
	Start(update func(timestamp time.Duration)) (stop func())
	Now() time.Duration
}

type frameLoop struct {
	loop *frameloop.Loop
}

// FrameLoop ticks on every frame's update step with the frame timestamp.
func FrameLoop(loop *frameloop.Loop) Driver {
	return &frameLoop{loop: loop}
}

func (d *frameLoop) Start(update func(time.Duration)) func() {
	job := d.loop.Schedule(frameloop.Update, func(f frameloop.FrameData) {
		update(f.Timestamp)
	}, true)
	return func() { d.loop.Cancel(job) }
}

func (d *frameLoop) Now() time.Duration {
	return d.loop.Now()
}

type syncDriver struct {
	loop     *frameloop.Loop
	interval time.Duration
	elapsed  time.Duration
}

// Sync is a deterministic driver for tests and offline rendering. After the
// next frame's post-render step it calls update(0) and then keeps calling it
// in fixed interval steps, synchronously, until stopped.
func Sync(loop *frameloop.Loop, interval time.Duration) Driver {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &syncDriver{loop: loop, interval: interval}
}

func (d *syncDriver) Start(update func(time.Duration)) func() {
	running := true
	job := d.loop.Schedule(frameloop.PostRender, func(frameloop.FrameData) {
		update(d.elapsed)
		for running {
			d.elapsed += d.interval
			update(d.elapsed)
		}
	}, false)
	return func() {
		running = false
		d.loop.Cancel(job)
	}
}

func (d *syncDriver) Now() time.Duration {
	return d.elapsed
}
