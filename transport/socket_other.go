//go:build !(linux || darwin)

// File: transport/socket_other.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package transport

import (
	"fmt"

	"github.com/momentics/hioload-cio/api"
)

func notSupported(what string) error {
	return fmt.Errorf("transport: %s on this platform: %w", what, api.ErrNotSupported)
}

func tcpConnect(string) (*conn, error)    { return nil, notSupported("tcp") }
func tcpBind(string, int) (*conn, error)  { return nil, notSupported("tcp") }
func unixConnect(string) (*conn, error)   { return nil, notSupported("unix") }
func unixBind(string, int) (*conn, error) { return nil, notSupported("unix") }
func localAddr(int) (string, error)       { return "", notSupported("getsockname") }
