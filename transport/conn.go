// File: transport/conn.go
// Author: momentics <momentics@gmail.com>
//
// Kind-tagged descriptor object dispatched through a per-variant
// operation table, and the public Stream and Listener wrappers.

package transport

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/hioload-cio/api"
)

// Kind tells how a transport object came to be.
type Kind byte

const (
	KindListen  Kind = 'l'
	KindAccept  Kind = 'a'
	KindConnect Kind = 'c'
)

func (k Kind) String() string {
	switch k {
	case KindListen:
		return "listen"
	case KindAccept:
		return "accept"
	case KindConnect:
		return "connect"
	}
	return "unknown"
}

// operations is the capability table of one transport variant. A nil entry
// means the variant does not support the operation.
type operations struct {
	name   string
	close  func(c *conn) error
	send   func(c *conn, p []byte) (int, error)
	recv   func(c *conn, p []byte) (int, error)
	accept func(c *conn) (*conn, error)
}

type conn struct {
	fd     int
	addr   string
	kind   Kind
	ops    *operations
	logger *zap.Logger
	closed bool
}

func (c *conn) send(p []byte) (int, error) {
	if c.closed {
		return -1, api.ErrClosed
	}
	if c.kind == KindListen || c.ops.send == nil {
		return -1, c.unsupported("send")
	}
	return c.ops.send(c, p)
}

func (c *conn) recv(p []byte) (int, error) {
	if c.closed {
		return -1, api.ErrClosed
	}
	if c.kind == KindListen || c.ops.recv == nil {
		return -1, c.unsupported("recv")
	}
	return c.ops.recv(c, p)
}

func (c *conn) accept() (*conn, error) {
	if c.closed {
		return nil, api.ErrClosed
	}
	if c.kind != KindListen || c.ops.accept == nil {
		return nil, c.unsupported("accept")
	}
	nc, err := c.ops.accept(c)
	if err != nil {
		return nil, err
	}
	nc.logger = c.logger
	c.logger.Debug("accepted", zap.String("transport", c.ops.name), zap.Int("listener", c.fd), zap.Int("fd", nc.fd))
	return nc, nil
}

func (c *conn) close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.ops.close(c)
	c.logger.Debug("closed", zap.String("transport", c.ops.name), zap.Int("fd", c.fd), zap.Error(err))
	return err
}

func (c *conn) descriptor() int {
	if c.closed {
		return -1
	}
	return c.fd
}

func (c *conn) unsupported(op string) error {
	return fmt.Errorf("transport: %s on %s %s: %w", op, c.kind, c.ops.name, api.ErrNotSupported)
}

// Stream is a connected or accepted endpoint carrying data.
type Stream struct {
	c *conn
}

var _ api.Stream = (*Stream)(nil)

// Fd returns the descriptor, or -1 after Close.
func (s *Stream) Fd() int { return s.c.descriptor() }

// Addr returns the endpoint the stream was created from. Accepted streams
// report their listener's endpoint.
func (s *Stream) Addr() string { return s.c.addr }

// Kind is KindConnect or KindAccept.
func (s *Stream) Kind() Kind { return s.c.kind }

// Send performs one write and returns its result as is.
func (s *Stream) Send(p []byte) (int, error) { return s.c.send(p) }

// Recv performs one read. 0 with a nil error means the peer shut down.
func (s *Stream) Recv(p []byte) (int, error) { return s.c.recv(p) }

// Close closes the descriptor. Calling it again is a no-op.
func (s *Stream) Close() error { return s.c.close() }

// Listener is a bound endpoint producing Streams.
type Listener struct {
	c *conn
}

var _ api.Descriptor = (*Listener)(nil)

// Fd returns the descriptor, or -1 after Close.
func (l *Listener) Fd() int { return l.c.descriptor() }

// Addr returns the endpoint the listener was bound to.
func (l *Listener) Addr() string { return l.c.addr }

// Kind is always KindListen.
func (l *Listener) Kind() Kind { return l.c.kind }

// Accept takes one pending connection. The listener is non-blocking, so
// without a pending connection the OS would-block error is returned.
func (l *Listener) Accept() (*Stream, error) {
	nc, err := l.c.accept()
	if err != nil {
		return nil, err
	}
	return &Stream{c: nc}, nil
}

// Close closes the descriptor; a Unix-domain listener also removes its
// socket file.
func (l *Listener) Close() error { return l.c.close() }

// LocalAddr returns the address the OS bound, resolving a requested port 0
// to the actual port.
func (l *Listener) LocalAddr() (string, error) {
	if l.c.closed {
		return "", api.ErrClosed
	}
	return localAddr(l.c.fd)
}
