// File: transport/options.go
// Author: momentics <momentics@gmail.com>
//
// Functional options for Connect and Bind.

package transport

import "go.uber.org/zap"

// DefaultBacklog is the listen(2) backlog used unless WithBacklog is given.
const DefaultBacklog = 1000

type config struct {
	logger  *zap.Logger
	backlog int
}

// Option customizes stream and listener construction.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		logger:  zap.NewNop(),
		backlog: DefaultBacklog,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger attaches a debug logger to the created object and to the
// construction path. Nothing is logged above Debug.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithBacklog overrides the listen backlog for Bind.
func WithBacklog(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.backlog = n
		}
	}
}
