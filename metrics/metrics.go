// Package metrics records animation lifecycle events in Prometheus
// collectors. A nil *Metrics records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Animator kinds used as label values.
const (
	KindMainThread  = "main_thread"
	KindAccelerated = "accelerated"
)

// Metrics holds the engine's collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	started   *prometheus.CounterVec
	finished  *prometheus.CounterVec
	stopped   *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	failed    *prometheus.CounterVec
	overflow  prometheus.Counter
	active    *prometheus.GaugeVec
	published *prometheus.CounterVec
}

func New() *Metrics {
	m := new(Metrics)
	m.registry = prometheus.NewRegistry()

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledmotion",
			Name:      name,
			Help:      help,
		}, labels)
		m.registry.MustRegister(c)
		return c
	}

	m.started = counter("animations_started_total", "Animations that began playback.", "kind")
	m.finished = counter("animations_finished_total", "Animations that completed naturally.", "kind")
	m.stopped = counter("animations_stopped_total", "Animations interrupted with Stop.", "kind")
	m.cancelled = counter("animations_cancelled_total", "Animations cancelled.", "kind")
	m.failed = counter("animations_failed_total", "Animations that failed to initialise.", "kind", "reason")
	m.published = counter("device_messages_total", "Messages published to LED devices.", "type")

	m.overflow = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ledmotion",
		Name:      "pregeneration_overflow_total",
		Help:      "Pregenerated animations truncated at the sampling ceiling.",
	})
	m.registry.MustRegister(m.overflow)

	m.active = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ledmotion",
		Name:      "animations_active",
		Help:      "Animations currently playing.",
	}, []string{"kind"})
	m.registry.MustRegister(m.active)
	return m
}

// Registry exposes the collectors for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Started(kind string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(kind).Inc()
	m.active.WithLabelValues(kind).Inc()
}

func (m *Metrics) Finished(kind string) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(kind).Inc()
	m.active.WithLabelValues(kind).Dec()
}

func (m *Metrics) Stopped(kind string) {
	if m == nil {
		return
	}
	m.stopped.WithLabelValues(kind).Inc()
	m.active.WithLabelValues(kind).Dec()
}

func (m *Metrics) Cancelled(kind string) {
	if m == nil {
		return
	}
	m.cancelled.WithLabelValues(kind).Inc()
	m.active.WithLabelValues(kind).Dec()
}

func (m *Metrics) Failed(kind, reason string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) PregenerationOverflow() {
	if m == nil {
		return
	}
	m.overflow.Inc()
}

func (m *Metrics) Published(messageType string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(messageType).Inc()
}
