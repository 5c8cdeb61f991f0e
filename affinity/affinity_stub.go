//go:build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-cio/api"
)

func setAffinityPlatform(cpuID int) error {
	return fmt.Errorf("affinity: cpu %d: %w", cpuID, api.ErrNotSupported)
}
