// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.
//
// A reactor loop runs on one locked OS thread; pinning that thread keeps
// the loop on one core.

package affinity

import "fmt"

// SetAffinity pins the calling OS thread to a logical CPU. The caller must
// hold the thread with runtime.LockOSThread, otherwise the pin applies to
// whatever goroutine happens to run there next.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return fmt.Errorf("affinity: cpu %d out of range", cpuID)
	}
	return setAffinityPlatform(cpuID)
}
