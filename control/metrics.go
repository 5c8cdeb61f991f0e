// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for reactor-level monitoring.
// All methods are safe on a nil *Metrics, which disables collection.

package control

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cio"

// Metrics holds the reactor counters and gauges.
type Metrics struct {
	polls         prometheus.Counter
	pollErrors    prometheus.Counter
	interrupted   prometheus.Counter
	idleSleeps    prometheus.Counter
	events        *prometheus.CounterVec
	registrations prometheus.Gauge
	idle          prometheus.Gauge
}

// NewMetrics creates the reactor metric set and registers it on reg.
// A nil reg leaves the collectors unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reactor",
			Name:      "polls_total",
			Help:      "Number of completed poll cycles.",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reactor",
			Name:      "poll_errors_total",
			Help:      "Number of poll cycles that failed on the readiness query.",
		}),
		interrupted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reactor",
			Name:      "poll_interrupted_total",
			Help:      "Number of poll cycles cut short by a signal.",
		}),
		idleSleeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reactor",
			Name:      "idle_sleeps_total",
			Help:      "Number of empty cycles that slept for backoff.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reactor",
			Name:      "events_total",
			Help:      "Number of readiness events queued, by readiness bit.",
		}, []string{"kind"}),
		registrations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reactor",
			Name:      "registrations",
			Help:      "Number of registered descriptors.",
		}),
		idle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reactor",
			Name:      "idle_seconds",
			Help:      "Current idle backoff duration.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.polls, m.pollErrors, m.interrupted, m.idleSleeps,
		m.events, m.registrations, m.idle,
	}
}

// ObservePoll counts a finished poll cycle.
func (m *Metrics) ObservePoll() {
	if m == nil {
		return
	}
	m.polls.Inc()
}

// ObservePollError counts a fatal readiness-query failure.
func (m *Metrics) ObservePollError() {
	if m == nil {
		return
	}
	m.pollErrors.Inc()
}

// ObserveInterrupted counts a poll cut short by EINTR.
func (m *Metrics) ObserveInterrupted() {
	if m == nil {
		return
	}
	m.interrupted.Inc()
}

// ObserveEvent counts one queued event per asserted readiness bit.
func (m *Metrics) ObserveEvent(readable, writable bool) {
	if m == nil {
		return
	}
	if readable {
		m.events.WithLabelValues("readable").Inc()
	}
	if writable {
		m.events.WithLabelValues("writable").Inc()
	}
}

// ObserveIdle records the backoff state after a cycle.
func (m *Metrics) ObserveIdle(slept bool, next time.Duration) {
	if m == nil {
		return
	}
	if slept {
		m.idleSleeps.Inc()
	}
	m.idle.Set(next.Seconds())
}

// SetRegistrations publishes the current registration count.
func (m *Metrics) SetRegistrations(n int) {
	if m == nil {
		return
	}
	m.registrations.Set(float64(n))
}
