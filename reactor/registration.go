// File: reactor/registration.go
// Author: momentics <momentics@gmail.com>

package reactor

// registration is the per-descriptor bookkeeping record. The wrapper is
// owned by the caller.
type registration[W any] struct {
	id      uint64
	fd      int
	token   int
	flags   Flags
	wrapper W
	ready   Readiness
}
