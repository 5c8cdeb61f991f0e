//go:build !linux

// File: transport/serial_other.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"

	"github.com/momentics/hioload-cio/api"
)

func serialConnect(device string, _ SerialConfig) (*conn, error) {
	return nil, fmt.Errorf("transport: serial %s: %w", device, api.ErrNotSupported)
}
