package stream

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/frameloop"
)

// Controller that cycles the strip through scenes.
type Controller struct {
	engine      *animation.Engine
	strip       *Strip
	host        animation.Host
	scenes      []Scene
	transitions animation.Transitions
	sceneTime   time.Duration
	rnd         *rand.Rand

	current int
}

// NewController creates an instance of a Controller. Scenes play for
// sceneTime each, in order.
func NewController(engine *animation.Engine, strip *Strip, host animation.Host, scenes []Scene,
	transitions animation.Transitions, sceneTime time.Duration) *Controller {

	c := new(Controller)
	c.engine = engine
	c.strip = strip
	c.host = host
	c.scenes = scenes
	c.transitions = transitions
	c.sceneTime = sceneTime
	c.rnd = rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
	c.current = -1
	return c
}

// Seed makes scene plans repeatable.
func (c *Controller) Seed(seed int64) {
	c.rnd = rand.New(rand.NewSource(seed))
}

// Current is the index of the scene on show, or -1.
func (c *Controller) Current() int { return c.current }

// Show animates every pixel into scene i. It must run on the frame loop's
// goroutine.
func (c *Controller) Show(i int) error {
	if i < 0 || i >= len(c.scenes) {
		return fmt.Errorf("stream: no scene %d", i)
	}
	scene := c.scenes[i]

	base := animation.Options{Name: Property, Host: c.host}
	if t, ok := c.transitions.For(Property); ok {
		base = t.Apply(base)
	}
	plan, err := scene.Plan(c.strip.Len(), base, c.rnd)
	if err != nil {
		return err
	}

	log.Info("Showing scene %q (%s)", scene.Name, scene.Kind)
	c.current = i
	for p, pa := range plan {
		c.engine.Animate(c.strip.Pixel(p), pa.Keyframes, pa.Options)
	}
	return nil
}

// Next shows the scene after the current one.
func (c *Controller) Next() error {
	if len(c.scenes) == 0 {
		return nil
	}
	return c.Show((c.current + 1) % len(c.scenes))
}

// Run shows the first scene and moves on every scene time until ctx is
// done.
func (c *Controller) Run(ctx context.Context) error {
	loop := c.engine.Loop()
	next := func(frameloop.FrameData) {
		if err := c.Next(); err != nil {
			log.Error("Changing scene: %v", err)
		}
	}
	loop.Schedule(frameloop.Update, next, false)

	publishTimer := time.NewTicker(c.sceneTime)
	defer publishTimer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-publishTimer.C:
			loop.Schedule(frameloop.Update, next, false)
		}
	}
}
