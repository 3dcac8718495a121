package stream

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/matt-g-everett/ledmotion/animation"
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/internal/logger"
	"github.com/matt-g-everett/ledmotion/metrics"
	"github.com/matt-g-everett/ledmotion/timeline"
	"github.com/matt-g-everett/ledmotion/value"
)

var log = logger.New("stream")

// indexed is implemented by owners that address a single pixel.
type indexed interface {
	Index() int
}

// Device is an animation.Host that plays programs on an LED controller. It
// keeps a local clock for every program so times and completion are known
// without waiting on the device.
type Device struct {
	name    string
	broker  Broker
	topics  Topics
	loop    *frameloop.Loop
	clocks  *timeline.Host
	metrics *metrics.Metrics

	mu        sync.Mutex
	nextID    int
	playbacks map[string]*DevicePlayback
}

// NewDevice returns the host for the device called name. m may be nil.
func NewDevice(name string, broker Broker, topics Topics, loop *frameloop.Loop, linearEasing bool, m *metrics.Metrics) *Device {
	d := new(Device)
	d.name = name
	d.broker = broker
	d.topics = topics
	d.loop = loop
	d.clocks = timeline.NewHost(loop, linearEasing)
	d.metrics = m
	d.playbacks = make(map[string]*DevicePlayback)
	return d
}

func (d *Device) SupportsLinearEasing() bool { return d.clocks.SupportsLinearEasing() }

// Create publishes a program to <program>/<device>[/<pixel>]/<property>.
func (d *Device) Create(owner animation.Owner, property string, keyframes []value.Value, timing animation.Timing) (animation.Playback, error) {
	target := d.name
	if p, ok := owner.(indexed); ok {
		target = path.Join(d.name, strconv.Itoa(p.Index()))
	}

	d.mu.Lock()
	d.nextID++
	id := strconv.Itoa(d.nextID)
	d.mu.Unlock()

	payload, err := json.Marshal(newProgram(id, property, keyframes, timing))
	if err != nil {
		return nil, fmt.Errorf("stream: encoding program: %w", err)
	}
	if err := d.publish(path.Join(d.topics.Program, target, property), payload, "program"); err != nil {
		return nil, err
	}

	p := new(DevicePlayback)
	p.device = d
	p.id = id
	p.topic = path.Join(d.topics.Control, target, property)
	p.clock = d.clocks.NewPlayback(property, keyframes, timing)

	d.mu.Lock()
	d.playbacks[id] = p
	d.mu.Unlock()
	return p, nil
}

// Active reports how many programs the device is playing.
func (d *Device) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.playbacks)
}

// Listen subscribes to the device's status topic.
func (d *Device) Listen() error {
	return d.broker.Subscribe(path.Join(d.topics.Status, d.name), d.handleStatus)
}

// handleStatus runs on the broker's goroutine, so it hands the update to the
// frame loop.
func (d *Device) handleStatus(topic string, payload []byte) {
	var s Status
	if err := json.Unmarshal(payload, &s); err != nil {
		log.Warn("Ignoring status on %s: %v", topic, err)
		return
	}

	d.mu.Lock()
	p, ok := d.playbacks[s.ID]
	d.mu.Unlock()
	if !ok {
		log.Debug("Status %s for unknown program %s", s.Event, s.ID)
		return
	}

	d.loop.Schedule(frameloop.Update, func(frameloop.FrameData) {
		switch s.Event {
		case EventFinished:
			if p.clock.PlayState() == animation.StateRunning {
				p.clock.Finish()
			}
		case EventCancelled:
			p.clock.Cancel()
			d.forget(p.id)
		default:
			log.Warn("Unknown status event %q for program %s", s.Event, s.ID)
		}
	}, false)
}

func (d *Device) forget(id string) {
	d.mu.Lock()
	delete(d.playbacks, id)
	d.mu.Unlock()
}

func (d *Device) publish(topic string, payload []byte, kind string) error {
	if err := d.broker.Publish(topic, payload); err != nil {
		return err
	}
	d.metrics.Published(kind)
	return nil
}

// DevicePlayback mirrors every control call to the device and answers
// queries from its local clock.
type DevicePlayback struct {
	device *Device
	id     string
	topic  string
	clock  *timeline.Playback
}

func (p *DevicePlayback) control(action string, t *time.Duration, rate *float64) {
	c := Control{ID: p.id, Action: action, Rate: rate}
	if t != nil {
		ms := millis(*t)
		c.Time = &ms
	}
	payload, err := json.Marshal(c)
	if err == nil {
		err = p.device.publish(p.topic, payload, "control")
	}
	if err != nil {
		log.Error("Sending %s for program %s: %v", action, p.id, err)
	}
}

func (p *DevicePlayback) Play() {
	p.control(ActionPlay, nil, nil)
	p.clock.Play()
}

func (p *DevicePlayback) Pause() {
	p.control(ActionPause, nil, nil)
	p.clock.Pause()
}

// Cancel stops the program. A program that already finished on its own is
// only forgotten.
func (p *DevicePlayback) Cancel() {
	if p.clock.PlayState() != animation.StateFinished {
		p.control(ActionCancel, nil, nil)
	}
	p.clock.Cancel()
	p.device.forget(p.id)
}

func (p *DevicePlayback) Finish() {
	p.control(ActionFinish, nil, nil)
	p.clock.Finish()
}

func (p *DevicePlayback) CurrentTime() time.Duration { return p.clock.CurrentTime() }

func (p *DevicePlayback) SetCurrentTime(t time.Duration) {
	p.control(ActionSeek, &t, nil)
	p.clock.SetCurrentTime(t)
}

func (p *DevicePlayback) PlaybackRate() float64 { return p.clock.PlaybackRate() }

func (p *DevicePlayback) SetPlaybackRate(rate float64) {
	p.control(ActionRate, nil, &rate)
	p.clock.SetPlaybackRate(rate)
}

// SetStartTime sends the start as a time on the engine clock.
func (p *DevicePlayback) SetStartTime(t time.Duration) {
	p.control(ActionStart, &t, nil)
	p.clock.SetStartTime(t)
}

func (p *DevicePlayback) PlayState() animation.State { return p.clock.PlayState() }

func (p *DevicePlayback) OnFinish(fn func()) { p.clock.OnFinish(fn) }

// AttachTimeline drives the local clock from tl. The device is seeked every
// frame the progress changes.
func (p *DevicePlayback) AttachTimeline(tl animation.Timeline) {
	p.clock.AttachTimeline(tl)
	last := -1.0
	p.device.loop.Schedule(frameloop.PostRender, func(f frameloop.FrameData) {
		p.syncTimeline(tl, &last)
	}, false)
}

func (p *DevicePlayback) syncTimeline(tl animation.Timeline, last *float64) {
	if p.clock.PlayState() == animation.StateIdle {
		return
	}
	if progress := tl.Progress(); progress != *last {
		*last = progress
		t := p.clock.CurrentTime()
		p.control(ActionSeek, &t, nil)
	}
	p.device.loop.Schedule(frameloop.PostRender, func(frameloop.FrameData) {
		p.syncTimeline(tl, last)
	}, false)
}
