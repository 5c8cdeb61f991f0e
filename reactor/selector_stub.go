//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

// File: reactor/selector_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-cio/api"
)

type unsupportedSelector struct{}

// NewSelector returns a Selector that always fails on this platform.
// Supply a working one with WithSelector.
func NewSelector() Selector {
	return unsupportedSelector{}
}

func (unsupportedSelector) Select([]int, Flags) (map[int]struct{}, error) {
	return nil, fmt.Errorf("reactor: this platform is not supported: %w", api.ErrNotSupported)
}
