// File: transport/transport.go
// Author: momentics <momentics@gmail.com>
//
// Scheme dispatch for Connect and Bind.

package transport

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-cio/api"
)

// Connect opens a stream to addr: tcp://host:port, unix://path or
// com://device[?params]. On failure no descriptor is left open.
func Connect(addr string, opts ...Option) (*Stream, error) {
	cfg := newConfig(opts)
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	var c *conn
	switch a.Scheme {
	case SchemeTCP:
		c, err = tcpConnect(a.Endpoint)
	case SchemeUnix:
		c, err = unixConnect(a.Endpoint)
	case SchemeSerial:
		var sc SerialConfig
		if sc, err = ParseSerialConfig(a.Params); err == nil {
			c, err = serialConnect(a.Endpoint, sc)
		}
	}
	if err != nil {
		cfg.logger.Debug("connect failed", zap.String("addr", addr), zap.Error(err))
		return nil, err
	}

	c.logger = cfg.logger
	cfg.logger.Debug("connected", zap.String("addr", addr), zap.Int("fd", c.fd))
	return &Stream{c: c}, nil
}

// Bind creates a listener on addr: tcp://host:port or unix://path. An
// existing socket file at a Unix path is replaced.
func Bind(addr string, opts ...Option) (*Listener, error) {
	cfg := newConfig(opts)
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	var c *conn
	switch a.Scheme {
	case SchemeTCP:
		c, err = tcpBind(a.Endpoint, cfg.backlog)
	case SchemeUnix:
		c, err = unixBind(a.Endpoint, cfg.backlog)
	default:
		err = api.NewError(api.ErrCodeNotSupported, "transport: scheme cannot listen").
			WithContext("addr", addr)
	}
	if err != nil {
		cfg.logger.Debug("bind failed", zap.String("addr", addr), zap.Error(err))
		return nil, err
	}

	c.logger = cfg.logger
	cfg.logger.Debug("listening", zap.String("addr", addr), zap.Int("fd", c.fd))
	return &Listener{c: c}, nil
}
