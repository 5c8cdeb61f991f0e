// File: internal/testutil/testutil.go
// Author: momentics <momentics@gmail.com>
//
// Shared helpers for descriptor-level tests.

package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/momentics/hioload-cio/reactor"
)

// OpenFDs returns the number of descriptors currently open in the process,
// skipping the test where the platform does not expose them.
func OpenFDs(t testing.TB) int {
	t.Helper()
	for _, dir := range []string{"/proc/self/fd", "/dev/fd"} {
		if entries, err := os.ReadDir(dir); err == nil {
			return len(entries)
		}
	}
	t.Skip("descriptor listing unavailable")
	return 0
}

// PollUntil polls r with a short budget until a cycle yields events and
// returns that cycle's events. It fails the test after timeout.
func PollUntil[W any](t testing.TB, r *reactor.Reactor[W], timeout time.Duration) []*reactor.Event[W] {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := r.Poll(time.Millisecond); err != nil {
			t.Fatalf("poll: %v", err)
		}
		if evs := Drain(r); len(evs) > 0 {
			return evs
		}
	}
	t.Fatalf("no events within %v", timeout)
	return nil
}

// Drain returns every undelivered event of the current cycle.
func Drain[W any](r *reactor.Reactor[W]) []*reactor.Event[W] {
	var out []*reactor.Event[W]
	for ev, ok := r.Next(); ok; ev, ok = r.Next() {
		out = append(out, ev)
	}
	return out
}
