// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the descriptor-backed transport abstraction shared by the
// reactor and the transport package.

package api

// Descriptor is anything backed by a single OS-level file descriptor that
// can be handed to a reactor for readiness notification.
type Descriptor interface {
	// Fd returns the underlying OS file descriptor.
	Fd() int

	// Addr returns the textual endpoint the object was created from.
	Addr() string

	// Close releases the descriptor.
	Close() error
}

// Stream is a connected or accepted data-carrying endpoint.
//
// Send and Recv return the OS transfer result verbatim: a non-negative byte
// count with a nil error, 0 from Recv on orderly peer shutdown, or -1 and
// the OS error. Would-block conditions surface as errors; retrying is the
// caller's job.
type Stream interface {
	Descriptor

	Send(p []byte) (int, error)
	Recv(p []byte) (int, error)
}
