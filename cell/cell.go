// Package cell provides the value cell animations write to.
package cell

import (
	"sync"
	"time"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/value"
)

// maxVelocityDelta is how stale the last update may be before velocity is
// reported as zero.
const maxVelocityDelta = 30 * time.Millisecond

// Clock reports the current synchronised time. *frameloop.Loop satisfies it.
type Clock interface {
	Now() time.Duration
}

// Cell holds one animatable value, tracks its velocity and allows one
// animation at a time.
type Cell struct {
	mu            sync.Mutex
	current       value.Value
	prev          value.Value
	updatedAt     time.Duration
	prevUpdatedAt time.Duration

	clock     Clock
	owner     animation.Owner
	vars      map[string]value.Value
	listeners map[int]func(value.Value)
	nextID    int

	anim animation.Handle
}

// New returns a cell holding initial. owner may be nil for cells that are
// not attached to a render target.
func New(initial value.Value, clock Clock, owner animation.Owner) *Cell {
	c := new(Cell)
	c.current = initial
	c.clock = clock
	c.owner = owner
	c.vars = make(map[string]value.Value)
	c.listeners = make(map[int]func(value.Value))
	c.updatedAt = clock.Now()
	return c
}

func (c *Cell) Get() value.Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set updates the value. Several sets within one frame keep the value from
// before the frame as the velocity reference.
func (c *Cell) Set(v value.Value) {
	now := c.clock.Now()
	c.mu.Lock()
	if c.updatedAt != now {
		c.prev = c.current
		c.prevUpdatedAt = c.updatedAt
	}
	c.current = v
	c.updatedAt = now
	listeners := c.snapshot()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// SetWithVelocity sets current and records prev as the value delta earlier.
func (c *Cell) SetWithVelocity(prev, current value.Value, delta time.Duration) {
	c.Set(current)
	c.mu.Lock()
	c.prev = prev
	c.prevUpdatedAt = c.updatedAt - delta
	c.mu.Unlock()
}

// Velocity is the rate of change in units per second. It is zero for
// strings and when the value has not changed in the last 30ms.
func (c *Cell) Velocity() float64 {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current.IsNumber() || !c.prev.IsNumber() || now-c.updatedAt > maxVelocityDelta {
		return 0
	}
	delta := min(c.updatedAt-c.prevUpdatedAt, maxVelocityDelta)
	if delta <= 0 {
		return 0
	}
	return (c.current.Float() - c.prev.Float()) / delta.Seconds()
}

// OnChange calls fn after every Set until the returned function is called.
func (c *Cell) OnChange(fn func(value.Value)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cell) snapshot() []func(value.Value) {
	out := make([]func(value.Value), 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Owner returns the cell's render target, or nil.
func (c *Cell) Owner() animation.Owner {
	return c.owner
}

// Define sets a symbol that var(--name) keyframes resolve to.
func (c *Cell) Define(name string, v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars[name] = v
}

func (c *Cell) Lookup(name string) (value.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vars[name]
	return v, ok
}

// Start stops the running animation and keeps the one start returns.
func (c *Cell) Start(start func() animation.Handle) animation.Handle {
	c.Stop()
	h := start()
	c.mu.Lock()
	c.anim = h
	c.mu.Unlock()
	return h
}

// Stop interrupts the running animation, if any.
func (c *Cell) Stop() {
	c.mu.Lock()
	h := c.anim
	c.anim = nil
	c.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

// Animation returns the animation driving the cell, or nil once it has
// ended or been stopped.
func (c *Cell) Animation() animation.Handle {
	c.mu.Lock()
	h := c.anim
	c.mu.Unlock()
	if h == nil {
		return nil
	}
	switch h.State() {
	case animation.StateFinished, animation.StateCancelled:
		return nil
	}
	select {
	case <-h.Finished():
		// Stopped.
		return nil
	default:
	}
	return h
}

// IsAnimating reports whether an animation is driving the cell.
func (c *Cell) IsAnimating() bool {
	return c.Animation() != nil
}
