// File: reactor/event.go
// Author: momentics <momentics@gmail.com>
//
// One-shot readiness notification produced by Poll.

package reactor

import "time"

// Event is a copy of a registration's identity and readiness taken when the
// event was created. Re-registering the descriptor afterwards does not
// change an event already handed out.
type Event[W any] struct {
	fd      int
	token   int
	wrapper W
	ready   Readiness
	ts      time.Time

	// regID identifies the originating registration for dedup only.
	regID    uint64
	consumed bool
	dropped  bool
}

// Readable reports whether the descriptor was read-ready.
func (e *Event[W]) Readable() bool { return e.ready.Readable }

// Writable reports whether the descriptor was write-ready.
func (e *Event[W]) Writable() bool { return e.ready.Writable }

// Readiness returns the full snapshot.
func (e *Event[W]) Readiness() Readiness { return e.ready }

// Token returns the caller-defined token of the registration.
func (e *Event[W]) Token() int { return e.token }

// Fd returns the descriptor.
func (e *Event[W]) Fd() int { return e.fd }

// Wrapper returns the caller-owned value attached at registration.
func (e *Event[W]) Wrapper() W { return e.wrapper }

// Timestamp returns when the event was created.
func (e *Event[W]) Timestamp() time.Time { return e.ts }

// TimestampMicros returns the creation time in microseconds since the epoch.
func (e *Event[W]) TimestampMicros() uint64 { return uint64(e.ts.UnixMicro()) }

// pending reports whether Next may still return the event.
func (e *Event[W]) pending() bool { return !e.consumed && !e.dropped }
