// File: reactor/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options for Reactor construction.

package reactor

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/momentics/hioload-cio/control"
)

type config struct {
	clock            clock.Clock
	logger           *zap.Logger
	metrics          *control.Metrics
	selector         Selector
	maxRegistrations int
}

func defaultConfig() config {
	return config{
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
}

// Option customizes reactor initialization.
type Option func(*config)

// WithClock sets the clock used for idle sleeps and event timestamps.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithLogger attaches a debug logger. The reactor never logs above Debug.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMetrics publishes poll statistics to m.
func WithMetrics(m *control.Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}

// WithSelector replaces the platform readiness query.
func WithSelector(s Selector) Option {
	return func(cfg *config) {
		cfg.selector = s
	}
}

// WithMaxRegistrations caps the number of registered descriptors.
// Zero, the default, means unbounded.
func WithMaxRegistrations(n int) Option {
	return func(cfg *config) {
		cfg.maxRegistrations = n
	}
}
