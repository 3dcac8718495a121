package stream

import (
	"github.com/matt-g-everett/ledmotion/frameloop"
	"github.com/matt-g-everett/ledmotion/metrics"
	"github.com/matt-g-everett/ledmotion/value"
)

// Streamer that streams RGB data frames to an ledrx device. Frames are only
// sent while the strip is streaming and a pixel changed since the last one.
type Streamer struct {
	broker  Broker
	topic   string
	strip   *Strip
	loop    *frameloop.Loop
	metrics *metrics.Metrics

	dirty  bool
	job    *frameloop.Job
	unsubs []func()
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(broker Broker, topic string, strip *Strip, loop *frameloop.Loop, m *metrics.Metrics) *Streamer {
	s := new(Streamer)
	s.broker = broker
	s.topic = topic
	s.strip = strip
	s.loop = loop
	s.metrics = m
	return s
}

// Start sends frames from the render step of every frame until Stop.
func (s *Streamer) Start() {
	if s.job != nil {
		return
	}
	s.dirty = true
	for i := 0; i < s.strip.Len(); i++ {
		s.unsubs = append(s.unsubs, s.strip.Pixel(i).OnChange(func(value.Value) { s.dirty = true }))
	}
	s.job = s.loop.Schedule(frameloop.Render, func(frameloop.FrameData) {
		if !s.dirty || !s.strip.Streaming() {
			return
		}
		if err := s.SendFrame(); err != nil {
			log.Warn("Dropped frame: %v", err)
		}
	}, true)
}

func (s *Streamer) Stop() {
	s.loop.Cancel(s.job)
	s.job = nil
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}

// SendFrame sends the strip as binary over MQTT to an ledrx device.
func (s *Streamer) SendFrame() error {
	s.dirty = false
	b, _ := s.strip.Frame().MarshalBinary()
	if err := s.broker.Publish(s.topic, b); err != nil {
		return err
	}
	s.metrics.Published("frame")
	return nil
}
