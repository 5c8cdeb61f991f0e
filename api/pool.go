// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for buffer and object reuse.

package api

// BytePool provides reusable []byte buffers for receive loops.
type BytePool interface {
	// Get returns a buffer of the pool's fixed size.
	Get() []byte

	// Put returns a buffer to the pool.
	Put(buf []byte)
}

// ObjectPool provides generic pooling of Go objects allocated transiently.
type ObjectPool[T any] interface {
	// Get returns an available instance from pool
	Get() T

	// Put returns an instance for reuse
	Put(obj T)
}
